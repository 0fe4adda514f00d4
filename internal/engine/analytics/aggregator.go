package analytics

import (
	"sort"

	"deskcore/internal/platform/models"
)

type EndpointStats struct {
	Endpoint          string  `json:"endpoint"` // "METHOD path"
	Count             int     `json:"count"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	ErrorRate         float64 `json:"error_rate"` // percent of status >= 400
}

type UsageSummary struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	AvgResponseTimeMs  float64 `json:"avg_response_time_ms"`
	P95ResponseTimeMs  int64   `json:"p95_response_time_ms"`
}

// AggregateByEndpoint groups raw request logs by "METHOD path" and
// computes per-group counts, mean latency, and error rate. Groups come
// back sorted by count, busiest first.
func AggregateByEndpoint(logs []*models.RequestLog) []EndpointStats {
	type bucket struct {
		count   int
		totalMs int64
		errors  int
	}

	buckets := make(map[string]*bucket)
	for _, l := range logs {
		key := l.Method + " " + l.Path
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.totalMs += l.ResponseTimeMs
		if l.StatusCode >= 400 {
			b.errors++
		}
	}

	stats := make([]EndpointStats, 0, len(buckets))
	for key, b := range buckets {
		stats = append(stats, EndpointStats{
			Endpoint:          key,
			Count:             b.count,
			AvgResponseTimeMs: float64(b.totalMs) / float64(b.count),
			ErrorRate:         float64(b.errors) / float64(b.count) * 100,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Summarize computes overall usage numbers. An empty log set yields a
// zero summary, never an error.
func Summarize(logs []*models.RequestLog) UsageSummary {
	summary := UsageSummary{TotalRequests: len(logs)}
	if len(logs) == 0 {
		return summary
	}

	times := make([]int64, 0, len(logs))
	var total int64
	for _, l := range logs {
		if l.StatusCode >= 400 {
			summary.FailedRequests++
		} else {
			summary.SuccessfulRequests++
		}
		total += l.ResponseTimeMs
		times = append(times, l.ResponseTimeMs)
	}

	summary.AvgResponseTimeMs = float64(total) / float64(len(logs))

	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	idx := int(float64(len(times)) * 0.95)
	if idx >= len(times) {
		idx = len(times) - 1
	}
	summary.P95ResponseTimeMs = times[idx]

	return summary
}

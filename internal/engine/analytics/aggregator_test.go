package analytics

import (
	"testing"

	"deskcore/internal/platform/models"
)

func reqLog(method, path string, status int, ms int64) *models.RequestLog {
	return &models.RequestLog{Method: method, Path: path, StatusCode: status, ResponseTimeMs: ms}
}

func TestAggregateByEndpoint(t *testing.T) {
	logs := []*models.RequestLog{
		reqLog("GET", "/api/v1/clients", 200, 100),
		reqLog("GET", "/api/v1/clients", 200, 200),
		reqLog("GET", "/api/v1/clients", 500, 300),
		reqLog("POST", "/api/v1/events", 202, 50),
	}

	stats := AggregateByEndpoint(logs)
	if len(stats) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(stats))
	}

	// Busiest group first
	clients := stats[0]
	if clients.Endpoint != "GET /api/v1/clients" {
		t.Errorf("Endpoint = %q", clients.Endpoint)
	}
	if clients.Count != 3 {
		t.Errorf("Count = %d, want 3", clients.Count)
	}
	if clients.AvgResponseTimeMs != 200 {
		t.Errorf("Avg = %v, want 200", clients.AvgResponseTimeMs)
	}
	if clients.ErrorRate < 33.3 || clients.ErrorRate > 33.4 {
		t.Errorf("ErrorRate = %v, want ~33.33", clients.ErrorRate)
	}

	events := stats[1]
	if events.Count != 1 || events.ErrorRate != 0 {
		t.Errorf("Unexpected events group: %+v", events)
	}
}

func TestAggregateByEndpointEmpty(t *testing.T) {
	if stats := AggregateByEndpoint(nil); len(stats) != 0 {
		t.Errorf("Expected no groups, got %v", stats)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary != (UsageSummary{}) {
		t.Errorf("Empty logs should yield the zero summary, got %+v", summary)
	}
}

func TestSummarize(t *testing.T) {
	logs := []*models.RequestLog{
		reqLog("GET", "/a", 200, 10),
		reqLog("GET", "/a", 201, 20),
		reqLog("GET", "/a", 404, 30),
		reqLog("GET", "/a", 500, 40),
	}

	summary := Summarize(logs)
	if summary.TotalRequests != 4 {
		t.Errorf("Total = %d, want 4", summary.TotalRequests)
	}
	if summary.SuccessfulRequests != 2 || summary.FailedRequests != 2 {
		t.Errorf("Success/Failed = %d/%d, want 2/2", summary.SuccessfulRequests, summary.FailedRequests)
	}
	if summary.AvgResponseTimeMs != 25 {
		t.Errorf("Avg = %v, want 25", summary.AvgResponseTimeMs)
	}
}

func TestSummarizeP95AtSortedIndex(t *testing.T) {
	// 100 known response times 0..99: floor(100*0.95) = index 95
	logs := make([]*models.RequestLog, 0, 100)
	for i := 99; i >= 0; i-- {
		logs = append(logs, reqLog("GET", "/a", 200, int64(i)))
	}

	summary := Summarize(logs)
	if summary.P95ResponseTimeMs != 95 {
		t.Errorf("P95 = %d, want 95", summary.P95ResponseTimeMs)
	}
}

func TestSummarizeP95SmallN(t *testing.T) {
	// floor(3*0.95) = 2, already the last index
	logs := []*models.RequestLog{
		reqLog("GET", "/a", 200, 5),
		reqLog("GET", "/a", 200, 9),
		reqLog("GET", "/a", 200, 7),
	}

	summary := Summarize(logs)
	if summary.P95ResponseTimeMs != 9 {
		t.Errorf("P95 = %d, want the largest value for small n", summary.P95ResponseTimeMs)
	}

	one := Summarize(logs[:1])
	if one.P95ResponseTimeMs != 5 {
		t.Errorf("P95 of a single log = %d, want 5", one.P95ResponseTimeMs)
	}
}

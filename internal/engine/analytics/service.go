package analytics

import "time"

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetEndpointStats groups the firm's recent request logs by endpoint.
func (s *Service) GetEndpointStats(firmID string, since time.Time) ([]EndpointStats, error) {
	logs, err := s.repo.ListSince(firmID, since.Unix())
	if err != nil {
		return nil, err
	}
	return AggregateByEndpoint(logs), nil
}

// GetUsageSummary computes the firm's overall usage numbers.
func (s *Service) GetUsageSummary(firmID string, since time.Time) (UsageSummary, error) {
	logs, err := s.repo.ListSince(firmID, since.Unix())
	if err != nil {
		return UsageSummary{}, err
	}
	return Summarize(logs), nil
}

package diagnostics

import (
	"context"
	"time"
)

// Pinger is the minimal health probe every backing system exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Target struct {
	Name   string
	Pinger Pinger
}

type CheckResult struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type Service struct {
	targets []Target
	timeout time.Duration
	now     func() time.Time
}

func NewService(targets []Target, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		targets: targets,
		timeout: timeout,
		now:     time.Now,
	}
}

// Check probes every registered target sequentially. It never returns an
// error: an unreachable dependency is a result, not a failure of the check.
func (s *Service) Check(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(s.targets))

	for _, target := range s.targets {
		if target.Pinger == nil {
			continue
		}
		results = append(results, s.probe(ctx, target))
	}

	return results
}

// Healthy reports whether every target answered its last probe.
func (s *Service) Healthy(ctx context.Context) bool {
	for _, result := range s.Check(ctx) {
		if !result.Healthy {
			return false
		}
	}
	return true
}

func (s *Service) probe(ctx context.Context, target Target) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := s.now()
	err := target.Pinger.Ping(ctx)
	elapsed := s.now().Sub(started)

	result := CheckResult{
		Name:      target.Name,
		Healthy:   err == nil,
		LatencyMS: elapsed.Milliseconds(),
		CheckedAt: started.UTC(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

package probe

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Fleet outcome classifications.
const (
	OutcomeHealthy       = "healthy"
	OutcomeUnhealthy     = "unhealthy"
	OutcomeNoHealthCheck = "no_health_check"
)

// Target is one resource to probe in a fleet check. A non-empty Err marks
// the target as failed before probing (e.g. unreadable stored headers); it
// is recorded unhealthy without being fetched.
type Target struct {
	ID      int64
	Name    string
	URL     string
	Headers map[string]string
	Err     string
}

// FleetResult is the per-resource outcome of a fleet check.
type FleetResult struct {
	ResourceID   int64  `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	Outcome      string `json:"outcome"`
	StatusCode   int    `json:"statusCode,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// FleetReport aggregates a fleet check under a single run id.
type FleetReport struct {
	RunID     string        `json:"runId"`
	Total     int           `json:"total"`
	Healthy   int           `json:"healthy"`
	Unhealthy int           `json:"unhealthy"`
	Skipped   int           `json:"skipped"`
	Results   []FleetResult `json:"results"`
}

// CheckFleet probes every target concurrently, bounded by the fleet limit.
// One failing endpoint never aborts the rest: failures are recorded as
// unhealthy outcomes. Results keep the input order regardless of which probe
// finished first.
func (p *Prober) CheckFleet(ctx context.Context, targets []Target) FleetReport {
	report := FleetReport{
		RunID:   uuid.NewString(),
		Total:   len(targets),
		Results: make([]FleetResult, len(targets)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fleetLimit)

	for i, t := range targets {
		i, t := i, t
		if t.Err != "" {
			report.Results[i] = FleetResult{
				ResourceID:   t.ID,
				ResourceName: t.Name,
				Outcome:      OutcomeUnhealthy,
				Detail:       t.Err,
			}
			continue
		}
		if t.URL == "" {
			report.Results[i] = FleetResult{
				ResourceID:   t.ID,
				ResourceName: t.Name,
				Outcome:      OutcomeNoHealthCheck,
				Detail:       "resource has no health check URL configured",
			}
			continue
		}
		g.Go(func() error {
			res := p.Health(ctx, t.URL, t.Headers)
			out := FleetResult{
				ResourceID:   t.ID,
				ResourceName: t.Name,
				StatusCode:   res.StatusCode,
			}
			if res.Healthy {
				out.Outcome = OutcomeHealthy
			} else {
				out.Outcome = OutcomeUnhealthy
				out.Detail = res.Error
			}
			report.Results[i] = out
			return nil
		})
	}
	g.Wait()

	for _, r := range report.Results {
		switch r.Outcome {
		case OutcomeHealthy:
			report.Healthy++
		case OutcomeUnhealthy:
			report.Unhealthy++
		case OutcomeNoHealthCheck:
			report.Skipped++
		}
	}
	return report
}

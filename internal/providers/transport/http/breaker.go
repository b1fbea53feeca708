package http

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/faults"
)

const breakerName = "pugvideo-api"

// newBreaker returns nil when the config leaves the breaker off. Only
// transport failures count against it; API answers such as 404 or 422 mean
// the server is healthy.
func newBreaker(settings *config.CircuitBreaker, t *HTTPTransport) *gobreaker.CircuitBreaker[[]byte] {
	if settings == nil || settings.MaxFailures == 0 {
		return nil
	}

	maxFailures := settings.MaxFailures
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			t.logger.WithName("http").Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			t.metrics.breakerState(to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !faults.IsCategory(err, faults.TransportError)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
}

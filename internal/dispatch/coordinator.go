// Package dispatch executes the outbound request plan for one analytics
// event and reduces however many requests it contains to a single outcome.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/outboundhq/courier/internal/classify"
	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/metrics"
	"github.com/outboundhq/courier/internal/transport"
)

// Sender sends one outbound request. The transport client satisfies this;
// tests substitute fakes.
type Sender interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// Plan is the ordered set of requests one event produced. Primary is the
// request whose outcome represents the logical event (for an order, the
// transaction-level request); Items are sibling requests (one per line
// item) whose failures surface only when the primary succeeded.
type Plan struct {
	Vendor   string
	Primary  transport.Request
	Items    []transport.Request
	Classify classify.Func
}

// CoordinatorOption configures the coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator issues a plan's requests concurrently and joins them into
// one outcome. It never re-issues a request; retry is the sender's job.
type Coordinator struct {
	sender Sender
	logger *slog.Logger
}

// New creates a coordinator backed by the given sender.
func New(sender Sender, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		sender: sender,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch sends every request in the plan and waits for all of them to
// settle before reducing. A failed item does not cancel its siblings, and
// the reduction is deterministic in plan order: the primary outcome wins,
// then the first failed item, then success.
func (c *Coordinator) Dispatch(ctx context.Context, plan Plan) domain.Outcome {
	requests := make([]transport.Request, 0, len(plan.Items)+1)
	requests = append(requests, plan.Primary)
	requests = append(requests, plan.Items...)

	metrics.FanoutSize.Observe(float64(len(requests)))

	outcomes := make([]domain.Outcome, len(requests))
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = c.send(ctx, plan, &requests[i])
		}(i)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		metrics.DeliveriesTotal.WithLabelValues(plan.Vendor, string(outcome.Kind)).Inc()
	}

	for i, outcome := range outcomes {
		if !outcome.OK() {
			if i > 0 {
				c.logger.Warn("line item delivery failed",
					slog.String("vendor", plan.Vendor),
					slog.Int("item", i-1),
					slog.String("error", outcome.Err.Error()),
				)
			}
			return outcome
		}
	}
	return domain.Success()
}

func (c *Coordinator) send(ctx context.Context, plan Plan, req *transport.Request) domain.Outcome {
	resp, err := c.sender.Do(ctx, req)
	if err != nil {
		return domain.Transport(plan.Vendor, err)
	}
	return plan.Classify(resp)
}

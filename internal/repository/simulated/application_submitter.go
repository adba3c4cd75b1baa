package simulated

import (
	"context"
	"time"

	"kqs-apply/internal/domain"
	"kqs-apply/pkg/clock"
	"kqs-apply/pkg/logger"

	"github.com/google/uuid"
)

// DefaultLatency stands in for a backend round trip
const DefaultLatency = 2 * time.Second

// ApplicationSubmitter accepts every application after a fixed delay without
// sending it anywhere. It is the placeholder until a backend exists.
type ApplicationSubmitter struct {
	latency time.Duration
	clock   clock.Clock
}

var _ domain.ApplicationSubmitter = (*ApplicationSubmitter)(nil)

// NewApplicationSubmitter creates a stub collaborator; latency <= 0 uses DefaultLatency
func NewApplicationSubmitter(latency time.Duration, clk clock.Clock) *ApplicationSubmitter {
	if latency <= 0 {
		latency = DefaultLatency
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &ApplicationSubmitter{latency: latency, clock: clk}
}

func (s *ApplicationSubmitter) SubmitApplication(ctx context.Context, form domain.ApplicationForm) (*domain.SubmissionReceipt, error) {
	done := make(chan struct{})
	timer := s.clock.AfterFunc(s.latency, func() { close(done) })

	select {
	case <-done:
	case <-ctx.Done():
		timer.Stop()
		return nil, ctx.Err()
	}

	receipt := &domain.SubmissionReceipt{ReferenceID: uuid.NewString()}
	logger.Log.Info("Form submitted",
		"reference_id", receipt.ReferenceID,
		"name", form.Name,
		"subject", form.Subject,
		"has_cv", form.Attachment != nil,
	)
	return receipt, nil
}

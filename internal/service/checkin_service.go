package service

import (
	"context"
	"slices"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/checkin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/metrics"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// CheckInRequest is an attested arrival presented at the venue
type CheckInRequest struct {
	EventID   uint64
	Holder    string
	Timestamp uint64
	Signature []byte
}

// CheckInService records attested check-ins
type CheckInService interface {
	// CheckIn verifies the attestation and records it once; operators only
	CheckIn(ctx context.Context, req *CheckInRequest, caller string) (*domain.CheckInRecord, error)
}

type checkInService struct {
	*core
	verifier *checkin.Verifier
	window   time.Duration
}

// NewCheckInService creates a new check-in service
func NewCheckInService(deps *Dependencies, cfg *EngineConfig) (CheckInService, error) {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	verifier, err := checkin.NewVerifier(cfg.CheckInSigner)
	if err != nil {
		return nil, err
	}
	return &checkInService{
		core:     newCore(deps, cfg),
		verifier: verifier,
		window:   cfg.CheckInWindow,
	}, nil
}

// CheckIn rejects a bad signature, a timestamp outside the window around the
// event date, a repeat check-in and a holder without tickets, in that order.
func (s *checkInService) CheckIn(ctx context.Context, req *CheckInRequest, caller string) (*domain.CheckInRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkin.check_in")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(req.EventID)), attribute.Int64("timestamp", int64(req.Timestamp)))

	holderAddr, holder, err := checkin.ParseAddress(req.Holder)
	if err != nil {
		return nil, fail(ctx, span, "checkin", err)
	}
	span.SetAttributes(attribute.String("holder", holder))

	var record domain.CheckInRecord
	err = s.transact(ctx, "checkin", req.EventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if state.Event.IsCancelled {
			return nil, domain.ErrEventCancelled
		}
		if err := s.verifier.Verify(req.EventID, holderAddr, req.Timestamp, req.Signature); err != nil {
			return nil, err
		}
		if err := state.Event.EnsureCheckInWindow(req.Timestamp, s.window); err != nil {
			return nil, err
		}
		r := &domain.CheckInRecord{
			Holder:     holder,
			Timestamp:  req.Timestamp,
			Validator:  domain.NormalizeAccount(caller),
			Signature:  slices.Clone(req.Signature),
			IsValid:    true,
			RecordedAt: now,
		}
		if err := state.RecordCheckIn(r); err != nil {
			return nil, err
		}
		record = *r
		return nil, nil
	})
	metrics.RecordCheckIn(ctx, req.EventID, err == nil)
	if err != nil {
		return nil, fail(ctx, span, "checkin", err)
	}

	s.publish(ctx, domain.EngineEventCheckedIn, req.EventID, record.Validator, record)
	return &record, nil
}

package metrics

import (
	"context"
	"sync"

	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Sales counters
	TicketsSold   *telemetry.Counter
	RevenueTotal  *telemetry.Counter
	ResaleVolume  *telemetry.Counter
	ResaleFees    *telemetry.Counter
	WaitlistFills *telemetry.Counter

	// Payout counters
	RefundsPaid     *telemetry.Counter
	InsurancePaid   *telemetry.Counter
	PaymentRollback *telemetry.Counter
	Compensations   *telemetry.Counter

	// Check-in counters
	CheckIns        *telemetry.Counter
	CheckInRejected *telemetry.Counter

	// Failures by operation and error code
	OperationsFailed *telemetry.Counter

	// Histograms
	SettlementDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all engine metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	counters := []struct {
		target *(*telemetry.Counter)
		opts   telemetry.MetricOpts
	}{
		{&TicketsSold, telemetry.MetricOpts{Name: "engine_tickets_sold_total", Description: "Tickets sold on the primary market", Unit: "1"}},
		{&RevenueTotal, telemetry.MetricOpts{Name: "engine_revenue_total", Description: "Primary sale revenue in token units", Unit: "1"}},
		{&ResaleVolume, telemetry.MetricOpts{Name: "engine_resale_volume_total", Description: "Resale volume in token units", Unit: "1"}},
		{&ResaleFees, telemetry.MetricOpts{Name: "engine_resale_fees_total", Description: "Resale fees collected in token units", Unit: "1"}},
		{&WaitlistFills, telemetry.MetricOpts{Name: "engine_waitlist_fills_total", Description: "Tickets settled from the waitlist", Unit: "1"}},
		{&RefundsPaid, telemetry.MetricOpts{Name: "engine_refunds_paid_total", Description: "Refunds paid in token units", Unit: "1"}},
		{&InsurancePaid, telemetry.MetricOpts{Name: "engine_insurance_paid_total", Description: "Insurance claims paid in token units", Unit: "1"}},
		{&PaymentRollback, telemetry.MetricOpts{Name: "engine_payment_rollbacks_total", Description: "Settlements rolled back after a ledger failure", Unit: "1"}},
		{&Compensations, telemetry.MetricOpts{Name: "engine_compensations_total", Description: "Committed transfers undone after a storage failure", Unit: "1"}},
		{&CheckIns, telemetry.MetricOpts{Name: "engine_checkins_total", Description: "Accepted check-ins", Unit: "1"}},
		{&CheckInRejected, telemetry.MetricOpts{Name: "engine_checkins_rejected_total", Description: "Rejected check-in attempts", Unit: "1"}},
		{&OperationsFailed, telemetry.MetricOpts{Name: "engine_operation_failures_total", Description: "Rejected operations by error code", Unit: "1"}},
	}
	for _, c := range counters {
		counter, err := telemetry.NewCounter(c.opts)
		if err != nil {
			return err
		}
		*c.target = counter
	}

	var err error
	SettlementDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "engine_settlement_duration_seconds",
		Description: "Time to settle a purchase including ledger transfers",
		Unit:        "s",
	})
	return err
}

// RecordSale records a settled primary sale
func RecordSale(ctx context.Context, eventID uint64, tier int, quantity, amount int64, durationSeconds float64) {
	attrs := []attribute.KeyValue{telemetry.EventIDAttr(eventID), telemetry.TierAttr(tier)}
	if TicketsSold != nil {
		TicketsSold.Add(ctx, quantity, attrs...)
	}
	if RevenueTotal != nil {
		RevenueTotal.Add(ctx, amount, attrs...)
	}
	if SettlementDuration != nil {
		SettlementDuration.Record(ctx, durationSeconds, attrs...)
	}
}

// RecordWaitlistFill records tickets settled from the waitlist
func RecordWaitlistFill(ctx context.Context, eventID uint64, quantity int64) {
	if WaitlistFills != nil {
		WaitlistFills.Add(ctx, quantity, telemetry.EventIDAttr(eventID))
	}
}

// RecordResale records a filled listing
func RecordResale(ctx context.Context, eventID uint64, total, fee int64) {
	if ResaleVolume != nil {
		ResaleVolume.Add(ctx, total, telemetry.EventIDAttr(eventID))
	}
	if ResaleFees != nil && fee > 0 {
		ResaleFees.Add(ctx, fee, telemetry.EventIDAttr(eventID))
	}
}

// RecordRefund records a refund payout
func RecordRefund(ctx context.Context, eventID uint64, amount int64) {
	if RefundsPaid != nil {
		RefundsPaid.Add(ctx, amount, telemetry.EventIDAttr(eventID))
	}
}

// RecordInsuranceClaim records an insurance payout
func RecordInsuranceClaim(ctx context.Context, eventID uint64, amount int64) {
	if InsurancePaid != nil {
		InsurancePaid.Add(ctx, amount, telemetry.EventIDAttr(eventID))
	}
}

// RecordPaymentRollback records a settlement whose ledger transfers were undone
func RecordPaymentRollback(ctx context.Context, eventID uint64, operation string) {
	if PaymentRollback != nil {
		PaymentRollback.Inc(ctx, telemetry.EventIDAttr(eventID), telemetry.OperationAttr(operation))
	}
}

// RecordCompensation records a committed saga undone after the storage transaction failed
func RecordCompensation(ctx context.Context, eventID uint64, operation string, ok bool) {
	if Compensations != nil {
		outcome := "compensated"
		if !ok {
			outcome = "stuck"
		}
		Compensations.Inc(ctx, telemetry.EventIDAttr(eventID), telemetry.OperationAttr(operation), telemetry.OutcomeAttr(outcome))
	}
}

// RecordCheckIn records a check-in attempt
func RecordCheckIn(ctx context.Context, eventID uint64, accepted bool) {
	if accepted {
		if CheckIns != nil {
			CheckIns.Inc(ctx, telemetry.EventIDAttr(eventID))
		}
		return
	}
	if CheckInRejected != nil {
		CheckInRejected.Inc(ctx, telemetry.EventIDAttr(eventID))
	}
}

// RecordFailure records a rejected operation
func RecordFailure(ctx context.Context, operation, code string) {
	if OperationsFailed != nil {
		OperationsFailed.Inc(ctx, telemetry.OperationAttr(operation), attribute.String("error.code", code))
	}
}

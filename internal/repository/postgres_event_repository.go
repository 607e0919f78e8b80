package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/database"
	"github.com/mahimasingh04/OpenEvent/pkg/retry"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository stores event state in normalized tables.
// Update locks the event row for the whole transaction.
type PostgresEventRepository struct {
	pool  *pgxpool.Pool
	retry *retry.Config
}

// NewPostgresEventRepository creates a repository retrying serialization failures and deadlocks
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	cfg := retry.DefaultConfig()
	cfg.ShouldRetry = database.IsRetryable
	return &PostgresEventRepository{pool: pool, retry: cfg}
}

// Create persists a new event with its tiers
func (r *PostgresEventRepository) Create(ctx context.Context, state *domain.EventState) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(state.Event.ID)))

	err := database.WithTx(ctx, r.pool, func(ctx context.Context) error {
		return save(ctx, database.Conn(ctx, r.pool), state)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if database.IsUniqueViolation(err) {
			return ErrEventExists
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// Get loads the event's state from a consistent snapshot
func (r *PostgresEventRepository) Get(ctx context.Context, id uint64) (*domain.EventState, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(id)))

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	state, err := load(ctx, tx, id, false)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return state, nil
}

// Update locks the event row, runs fn on the loaded state and writes it back before commit
func (r *PostgresEventRepository) Update(ctx context.Context, id uint64, fn UpdateFunc) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(id)))

	result := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return database.WithTx(ctx, r.pool, func(ctx context.Context) error {
			q := database.Conn(ctx, r.pool)
			state, err := load(ctx, q, id, true)
			if err != nil {
				if errors.Is(err, domain.ErrEventNotFound) {
					return retry.Permanent(err)
				}
				return err
			}
			if err := fn(ctx, state); err != nil {
				// a ledger deadlock inside fn aborts this attempt as a whole
				if database.IsRetryable(err) {
					return err
				}
				return retry.Permanent(err)
			}
			return save(ctx, q, state)
		})
	})
	span.SetAttributes(attribute.Int("attempts", result.Attempts))
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}
	return result.Err
}

// EventIDForListing resolves a listing id
func (r *PostgresEventRepository) EventIDForListing(ctx context.Context, listingID uint64) (uint64, error) {
	var eventID int64
	err := r.pool.QueryRow(ctx, `SELECT event_id FROM resale_listings WHERE id = $1`, int64(listingID)).Scan(&eventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrListingNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve listing: %w", err)
	}
	return uint64(eventID), nil
}

func load(ctx context.Context, q database.Querier, id uint64, forUpdate bool) (*domain.EventState, error) {
	query := `
SELECT id, name, description, venue, event_date, original_date, rescheduled, organizer,
       organizer_share_percent, max_capacity, current_capacity, is_active, is_cancelled,
       total_revenue, total_sales, created_at
FROM events WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		ev       domain.Event
		rawID    int64
		original *time.Time
	)
	err := q.QueryRow(ctx, query, int64(id)).Scan(
		&rawID, &ev.Name, &ev.Description, &ev.Venue, &ev.EventDate, &original, &ev.Rescheduled, &ev.Organizer,
		&ev.OrganizerSharePercent, &ev.MaxCapacity, &ev.CurrentCapacity, &ev.IsActive, &ev.IsCancelled,
		&ev.TotalRevenue, &ev.TotalSales, &ev.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	ev.ID = uint64(rawID)
	ev.OriginalDate = derefTime(original)

	state := domain.NewEmptyState(ev)
	loaders := []func(context.Context, database.Querier, *domain.EventState) error{
		loadTiers, loadHoldings, loadListings, loadWaitlist, loadPromotions, loadPolicies, loadCheckIns,
	}
	for _, fn := range loaders {
		if err := fn(ctx, q, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func loadTiers(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `
SELECT name, base_price, quantity, remaining, is_active, early_bird_price, early_bird_end_time,
       early_bird_quantity, early_bird_remaining, demand_multiplier, last_price_update, perks
FROM ticket_tiers WHERE event_id = $1 ORDER BY tier_index`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t          domain.TicketTier
			ebEnd      *time.Time
			lastUpdate *time.Time
		)
		if err := rows.Scan(&t.Name, &t.BasePrice, &t.Quantity, &t.Remaining, &t.IsActive, &t.EarlyBirdPrice, &ebEnd,
			&t.EarlyBirdQuantity, &t.EarlyBirdRemaining, &t.DemandMultiplier, &lastUpdate, &t.Perks); err != nil {
			return fmt.Errorf("failed to scan tier: %w", err)
		}
		t.EarlyBirdEndTime = derefTime(ebEnd)
		t.LastPriceUpdate = derefTime(lastUpdate)
		s.Tiers = append(s.Tiers, &t)
	}
	return rows.Err()
}

func loadHoldings(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `SELECT holder, tier_index, quantity, cost_basis FROM holdings WHERE event_id = $1`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load holdings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.Holder, &h.Tier, &h.Quantity, &h.CostBasis); err != nil {
			return fmt.Errorf("failed to scan holding: %w", err)
		}
		s.Holdings[domain.HoldingKey{Holder: h.Holder, Tier: h.Tier}] = &h
	}
	return rows.Err()
}

func loadListings(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `
SELECT id, seller, tier_index, quantity, ask_price, is_active, buyer, created_at
FROM resale_listings WHERE event_id = $1`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l     domain.ResaleListing
			rawID int64
		)
		if err := rows.Scan(&rawID, &l.Seller, &l.Tier, &l.Quantity, &l.AskPrice, &l.IsActive, &l.Buyer, &l.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan listing: %w", err)
		}
		l.ID = uint64(rawID)
		l.EventID = s.Event.ID
		s.Listings[l.ID] = &l
	}
	return rows.Err()
}

func loadWaitlist(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `SELECT holder, tier_index, quantity, joined_at, is_active FROM waitlist_entries WHERE event_id = $1`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load waitlist: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w domain.WaitlistEntry
		if err := rows.Scan(&w.Holder, &w.Tier, &w.Quantity, &w.JoinedAt, &w.IsActive); err != nil {
			return fmt.Errorf("failed to scan waitlist entry: %w", err)
		}
		s.Waitlist[w.Holder] = &w
	}
	return rows.Err()
}

func loadPromotions(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `
SELECT code, discount_percent, max_uses, used_count, start_time, end_time, is_active
FROM promotions WHERE event_id = $1`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load promotions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Promotion
		if err := rows.Scan(&p.Code, &p.DiscountPercent, &p.MaxUses, &p.UsedCount, &p.StartTime, &p.EndTime, &p.IsActive); err != nil {
			return fmt.Errorf("failed to scan promotion: %w", err)
		}
		s.Promotions[p.Code] = &p
	}
	return rows.Err()
}

func loadPolicies(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `
SELECT holder, coverage_amount, premium, claim_deadline, is_claimed, purchased_at
FROM insurance_policies WHERE event_id = $1`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load insurance policies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.InsurancePolicy
		if err := rows.Scan(&p.Holder, &p.CoverageAmount, &p.Premium, &p.ClaimDeadline, &p.IsClaimed, &p.PurchasedAt); err != nil {
			return fmt.Errorf("failed to scan insurance policy: %w", err)
		}
		s.Policies[p.Holder] = &p
	}
	return rows.Err()
}

func loadCheckIns(ctx context.Context, q database.Querier, s *domain.EventState) error {
	rows, err := q.Query(ctx, `
SELECT holder, attested_at, validator, signature, is_valid, recorded_at
FROM checkins WHERE event_id = $1`, int64(s.Event.ID))
	if err != nil {
		return fmt.Errorf("failed to load check-ins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c  domain.CheckInRecord
			ts int64
		)
		if err := rows.Scan(&c.Holder, &ts, &c.Validator, &c.Signature, &c.IsValid, &c.RecordedAt); err != nil {
			return fmt.Errorf("failed to scan check-in: %w", err)
		}
		c.Timestamp = uint64(ts)
		s.CheckIns[c.Holder] = &c
	}
	return rows.Err()
}

// save writes the whole event state back in one batch
func save(ctx context.Context, q database.Querier, s *domain.EventState) error {
	id := int64(s.Event.ID)
	ev := s.Event
	b := &pgx.Batch{}

	b.Queue(`
INSERT INTO events (id, name, description, venue, event_date, original_date, rescheduled, organizer,
                    organizer_share_percent, max_capacity, current_capacity, is_active, is_cancelled,
                    total_revenue, total_sales, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name, description = EXCLUDED.description, venue = EXCLUDED.venue,
    event_date = EXCLUDED.event_date, original_date = EXCLUDED.original_date, rescheduled = EXCLUDED.rescheduled,
    current_capacity = EXCLUDED.current_capacity, is_active = EXCLUDED.is_active,
    is_cancelled = EXCLUDED.is_cancelled, total_revenue = EXCLUDED.total_revenue, total_sales = EXCLUDED.total_sales`,
		id, ev.Name, ev.Description, ev.Venue, ev.EventDate, nullTime(ev.OriginalDate), ev.Rescheduled, ev.Organizer,
		ev.OrganizerSharePercent, ev.MaxCapacity, ev.CurrentCapacity, ev.IsActive, ev.IsCancelled,
		ev.TotalRevenue, ev.TotalSales, ev.CreatedAt)

	for i, t := range s.Tiers {
		b.Queue(`
INSERT INTO ticket_tiers (event_id, tier_index, name, base_price, quantity, remaining, is_active, early_bird_price,
                          early_bird_end_time, early_bird_quantity, early_bird_remaining, demand_multiplier,
                          last_price_update, perks)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (event_id, tier_index) DO UPDATE SET
    base_price = EXCLUDED.base_price, remaining = EXCLUDED.remaining, is_active = EXCLUDED.is_active,
    early_bird_remaining = EXCLUDED.early_bird_remaining, demand_multiplier = EXCLUDED.demand_multiplier,
    last_price_update = EXCLUDED.last_price_update, perks = EXCLUDED.perks`,
			id, i, t.Name, t.BasePrice, t.Quantity, t.Remaining, t.IsActive, t.EarlyBirdPrice,
			nullTime(t.EarlyBirdEndTime), t.EarlyBirdQuantity, t.EarlyBirdRemaining, t.DemandMultiplier,
			nullTime(t.LastPriceUpdate), nonNil(t.Perks))
	}

	for _, h := range s.Holdings {
		b.Queue(`
INSERT INTO holdings (event_id, holder, tier_index, quantity, cost_basis) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (event_id, holder, tier_index) DO UPDATE SET quantity = EXCLUDED.quantity, cost_basis = EXCLUDED.cost_basis`,
			id, h.Holder, h.Tier, h.Quantity, h.CostBasis)
	}
	b.Queue(`DELETE FROM holdings WHERE event_id = $1 AND quantity = 0`, id)

	for _, l := range s.Listings {
		b.Queue(`
INSERT INTO resale_listings (id, event_id, seller, tier_index, quantity, ask_price, is_active, buyer, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET is_active = EXCLUDED.is_active, buyer = EXCLUDED.buyer`,
			int64(l.ID), id, l.Seller, l.Tier, l.Quantity, l.AskPrice, l.IsActive, l.Buyer, l.CreatedAt)
	}

	for _, w := range s.Waitlist {
		b.Queue(`
INSERT INTO waitlist_entries (event_id, holder, tier_index, quantity, joined_at, is_active) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (event_id, holder) DO UPDATE SET
    tier_index = EXCLUDED.tier_index, quantity = EXCLUDED.quantity, joined_at = EXCLUDED.joined_at, is_active = EXCLUDED.is_active`,
			id, w.Holder, w.Tier, w.Quantity, w.JoinedAt, w.IsActive)
	}

	for _, p := range s.Promotions {
		b.Queue(`
INSERT INTO promotions (event_id, code, discount_percent, max_uses, used_count, start_time, end_time, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (event_id, code) DO UPDATE SET
    discount_percent = EXCLUDED.discount_percent, max_uses = EXCLUDED.max_uses, used_count = EXCLUDED.used_count,
    start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, is_active = EXCLUDED.is_active`,
			id, p.Code, p.DiscountPercent, p.MaxUses, p.UsedCount, p.StartTime, p.EndTime, p.IsActive)
	}

	for _, p := range s.Policies {
		b.Queue(`
INSERT INTO insurance_policies (event_id, holder, coverage_amount, premium, claim_deadline, is_claimed, purchased_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (event_id, holder) DO UPDATE SET is_claimed = EXCLUDED.is_claimed, claim_deadline = EXCLUDED.claim_deadline`,
			id, p.Holder, p.CoverageAmount, p.Premium, p.ClaimDeadline, p.IsClaimed, p.PurchasedAt)
	}

	// check-in records are immutable once written
	for _, c := range s.CheckIns {
		b.Queue(`
INSERT INTO checkins (event_id, holder, attested_at, validator, signature, is_valid, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (event_id, holder) DO NOTHING`,
			id, c.Holder, int64(c.Timestamp), c.Validator, c.Signature, c.IsValid, c.RecordedAt)
	}

	br := q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to save event state: %w", err)
		}
	}
	return br.Close()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

// PostgresSequencer hands out ids from database sequences
type PostgresSequencer struct {
	pool *pgxpool.Pool
}

// NewPostgresSequencer creates a sequencer over event_id_seq and listing_id_seq
func NewPostgresSequencer(pool *pgxpool.Pool) *PostgresSequencer {
	return &PostgresSequencer{pool: pool}
}

// NextEventID returns the next event id
func (s *PostgresSequencer) NextEventID(ctx context.Context) (uint64, error) {
	return s.next(ctx, "event_id_seq")
}

// NextListingID returns the next listing id
func (s *PostgresSequencer) NextListingID(ctx context.Context) (uint64, error) {
	return s.next(ctx, "listing_id_seq")
}

func (s *PostgresSequencer) next(ctx context.Context, seq string) (uint64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval($1::regclass)`, seq).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", seq, err)
	}
	return uint64(id), nil
}

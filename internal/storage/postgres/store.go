// Package postgres implements ports.DataStore on PostgreSQL. The store is
// pure I/O: scoring, escalation rules and retry accounting live in the
// services.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

const uniqueViolation = "23505"

// distanceSQL is the haversine great-circle distance in km between the row's
// latitude/longitude and the point ($lat, $lon).
const distanceSQL = `6371 * 2 * ASIN(SQRT(LEAST(1,
	POWER(SIN(RADIANS(%[1]s - latitude) / 2), 2) +
	COS(RADIANS(latitude)) * COS(RADIANS(%[1]s)) * POWER(SIN(RADIANS(%[2]s - longitude) / 2), 2))))`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists the blood matching data model in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// conn returns the transaction carried by ctx, or the pool.
func (s *Store) conn(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// RunInTx runs fn in one transaction; store calls made with fn's context use
// it. A context that already carries a transaction is joined.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.Run(ctx, s.db, fn)
}

// Ping satisfies the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Donors

const donorColumns = `id, name, contact, blood_type, latitude, longitude, is_available,
	available_until, last_donation_date, eligibility_status, total_donations`

func (s *Store) GetAvailableDonors(ctx context.Context, bloodType id.BloodType, location domain.Location, radiusKm float64) ([]domain.DonorCandidate, error) {
	query := fmt.Sprintf(`
		SELECT * FROM (
			SELECT %s, %s AS distance_km
			FROM donors
			WHERE blood_type = $3
			  AND is_available
			  AND (available_until IS NULL OR available_until > $4)
			  AND eligibility_status <> 'ineligible'
		) d
		WHERE distance_km <= $5
		ORDER BY distance_km, id
	`, donorColumns, fmt.Sprintf(distanceSQL, "$1", "$2"))

	rows, err := s.conn(ctx).QueryContext(ctx, query,
		location.Latitude, location.Longitude, string(bloodType), requestcontext.Now(ctx), radiusKm)
	if err != nil {
		return nil, fmt.Errorf("get available donors: %w", err)
	}
	defer rows.Close()

	var out []domain.DonorCandidate
	for rows.Next() {
		var c domain.DonorCandidate
		if err := scanDonor(rows, &c.Donor, &c.DistanceKm); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return out, nil
}

func (s *Store) GetDonorByID(ctx context.Context, donorID id.DonorID) (*domain.Donor, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE id = $1`, uuid.UUID(donorID))
	var d domain.Donor
	if err := scanDonor(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get donor by id: %w", err)
	}
	return &d, nil
}

// AddDonor inserts or replaces a donor row.
func (s *Store) AddDonor(ctx context.Context, d *domain.Donor) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO donors (`+donorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			contact = EXCLUDED.contact,
			blood_type = EXCLUDED.blood_type,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			is_available = EXCLUDED.is_available,
			available_until = EXCLUDED.available_until,
			last_donation_date = EXCLUDED.last_donation_date,
			eligibility_status = EXCLUDED.eligibility_status,
			total_donations = EXCLUDED.total_donations
	`,
		uuid.UUID(d.ID), d.Name, d.Contact, string(d.BloodType), d.Location.Latitude, d.Location.Longitude,
		d.IsAvailable, d.AvailableUntil, d.LastDonationDate, string(d.EligibilityStatus), d.TotalDonations,
	)
	if err != nil {
		return fmt.Errorf("add donor: %w", err)
	}
	return nil
}

// Requests

const requestColumns = `id, hospital_id, blood_type, urgency, units_needed, latitude, longitude,
	deadline, status, priority_score, escalation_state, escalation_reason, escalated_at,
	match_generation, notes, created_at, updated_at`

func (s *Store) GetBloodRequestByID(ctx context.Context, requestID id.RequestID) (*domain.BloodRequest, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests WHERE id = $1`, uuid.UUID(requestID))
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blood request by id: %w", err)
	}
	return r, nil
}

// AddRequest inserts a blood request row.
func (s *Store) AddRequest(ctx context.Context, r *domain.BloodRequest) error {
	state := r.EscalationState
	if state == "" {
		state = domain.EscalationNone
	}
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO blood_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		uuid.UUID(r.ID), uuid.UUID(r.HospitalID), string(r.BloodType), string(r.Urgency), r.UnitsNeeded,
		r.Location.Latitude, r.Location.Longitude, nullTime(r.Deadline), string(r.Status), r.PriorityScore,
		string(state), nullString(string(r.EscalationReason)), r.EscalatedAt, r.MatchGeneration, r.Notes,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return translateWriteErr("add blood request", err)
	}
	return nil
}

func (s *Store) UpdateBloodRequestStatus(ctx context.Context, requestID id.RequestID, status domain.RequestStatus, notes string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE blood_requests
		SET status = $2,
		    notes = CASE WHEN $3 = '' THEN notes ELSE $3 END,
		    updated_at = $4
		WHERE id = $1
	`, uuid.UUID(requestID), string(status), notes, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update blood request status: %w", err)
	}
	return requireRow(res, "update blood request status")
}

func (s *Store) GetPendingRequestsByBloodType(ctx context.Context, bloodType id.BloodType, now time.Time) ([]*domain.BloodRequest, error) {
	return s.queryRequests(ctx, "get pending requests", `
		SELECT `+requestColumns+`
		FROM blood_requests
		WHERE blood_type = $1
		  AND status = ANY($2)
		  AND (deadline IS NULL OR deadline > $3)
		ORDER BY created_at, id
	`, string(bloodType), pq.Array([]string{string(domain.RequestStatusPending)}), now)
}

func (s *Store) GetOverdueCriticalRequests(ctx context.Context, cutoff time.Time) ([]*domain.BloodRequest, error) {
	return s.queryRequests(ctx, "get overdue critical requests", `
		SELECT `+requestColumns+`
		FROM blood_requests
		WHERE urgency = $1
		  AND status = $2
		  AND escalation_state = $3
		  AND created_at < $4
		ORDER BY created_at, id
	`, string(id.UrgencyCritical), string(domain.RequestStatusPending), string(domain.EscalationNone), cutoff)
}

// MarkRequestEscalated is a conditional UPDATE so concurrent escalations of
// the same request resolve to exactly one winner.
func (s *Store) MarkRequestEscalated(ctx context.Context, requestID id.RequestID, reason domain.EscalationReason, at time.Time) (bool, error) {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE blood_requests
		SET escalation_state = $2, escalation_reason = $3, escalated_at = $4, updated_at = $4
		WHERE id = $1 AND escalation_state = $5
	`, uuid.UUID(requestID), string(domain.EscalationEscalated), string(reason), at, string(domain.EscalationNone))
	if err != nil {
		return false, fmt.Errorf("mark request escalated: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark request escalated rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	var exists bool
	if err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blood_requests WHERE id = $1)`, uuid.UUID(requestID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("mark request escalated lookup: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *Store) AdvanceMatchGeneration(ctx context.Context, requestID id.RequestID, gen int64) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE blood_requests SET match_generation = GREATEST(match_generation, $2) WHERE id = $1
	`, uuid.UUID(requestID), gen)
	if err != nil {
		return fmt.Errorf("advance match generation: %w", err)
	}
	return requireRow(res, "advance match generation")
}

func (s *Store) queryRequests(ctx context.Context, op, query string, args ...any) ([]*domain.BloodRequest, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.BloodRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return out, nil
}

// Matches

const matchColumns = `id, request_id, donor_id, score, distance_km, generation, response, responded_at, created_at`

func (s *Store) CreateDonorMatch(ctx context.Context, match *domain.DonorMatch) error {
	if match.CreatedAt.IsZero() {
		match.CreatedAt = requestcontext.Now(ctx)
	}
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO donor_matches (id, request_id, donor_id, score, distance_km, generation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(match.ID), uuid.UUID(match.RequestID), uuid.UUID(match.DonorID),
		match.Score, match.DistanceKm, match.Generation, match.CreatedAt)
	if err != nil {
		return translateWriteErr("create donor match", err)
	}
	return nil
}

func (s *Store) GetDonorMatches(ctx context.Context, requestID id.RequestID) ([]*domain.DonorMatch, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+matchColumns+` FROM donor_matches WHERE request_id = $1 ORDER BY seq`, uuid.UUID(requestID))
	if err != nil {
		return nil, fmt.Errorf("get donor matches: %w", err)
	}
	defer rows.Close()

	out := []*domain.DonorMatch{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donor matches: %w", err)
	}
	return out, nil
}

func (s *Store) GetDonorMatchByID(ctx context.Context, matchID id.MatchID) (*domain.DonorMatch, error) {
	m, err := scanMatch(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM donor_matches WHERE id = $1`, uuid.UUID(matchID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get donor match by id: %w", err)
	}
	return m, nil
}

func (s *Store) RecordDonorResponse(ctx context.Context, matchID id.MatchID, response domain.DonorResponse, at time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE donor_matches SET response = $2, responded_at = $3
		WHERE id = $1 AND response IS NULL
	`, uuid.UUID(matchID), string(response), at)
	if err != nil {
		return fmt.Errorf("record donor response: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record donor response rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	existing, err := s.GetDonorMatchByID(ctx, matchID)
	if err != nil {
		return err
	}
	if existing == nil {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrAlreadyUsed
}

// Banks

func (s *Store) GetAllBloodBanks(ctx context.Context) ([]*domain.BloodBank, error) {
	return s.queryBanks(ctx, "get all blood banks",
		`SELECT id, name, contact, latitude, longitude FROM blood_banks ORDER BY name, id`)
}

func (s *Store) GetNearbyBloodBanks(ctx context.Context, location domain.Location, radiusKm float64) ([]*domain.BloodBank, error) {
	query := fmt.Sprintf(`
		SELECT id, name, contact, latitude, longitude FROM (
			SELECT id, name, contact, latitude, longitude, %s AS distance_km FROM blood_banks
		) b
		WHERE distance_km <= $3
		ORDER BY distance_km, id
	`, fmt.Sprintf(distanceSQL, "$1", "$2"))
	return s.queryBanks(ctx, "get nearby blood banks", query, location.Latitude, location.Longitude, radiusKm)
}

// AddBank inserts a blood bank row.
func (s *Store) AddBank(ctx context.Context, b *domain.BloodBank) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO blood_banks (id, name, contact, latitude, longitude) VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(b.ID), b.Name, b.Contact, b.Location.Latitude, b.Location.Longitude)
	if err != nil {
		return translateWriteErr("add blood bank", err)
	}
	return nil
}

func (s *Store) queryBanks(ctx context.Context, op, query string, args ...any) ([]*domain.BloodBank, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.BloodBank
	for rows.Next() {
		var (
			b   domain.BloodBank
			bid uuid.UUID
		)
		if err := rows.Scan(&bid, &b.Name, &b.Contact, &b.Location.Latitude, &b.Location.Longitude); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		b.ID = id.BankID(bid)
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return out, nil
}

func (s *Store) GetBloodInventory(ctx context.Context, bankID id.BankID, bloodType *id.BloodType) ([]domain.InventoryRecord, error) {
	types := []string{}
	if bloodType != nil {
		types = []string{string(*bloodType)}
	}
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT bank_id, blood_type, units, status, expiration_date
		FROM blood_inventory
		WHERE bank_id = $1 AND (cardinality($2::text[]) = 0 OR blood_type = ANY($2))
		ORDER BY id
	`, uuid.UUID(bankID), pq.Array(types))
	if err != nil {
		return nil, fmt.Errorf("get blood inventory: %w", err)
	}
	defer rows.Close()

	var out []domain.InventoryRecord
	for rows.Next() {
		var (
			rec     domain.InventoryRecord
			bid     uuid.UUID
			bt      string
			status  string
			expires sql.NullTime
		)
		if err := rows.Scan(&bid, &bt, &rec.Units, &status, &expires); err != nil {
			return nil, fmt.Errorf("scan blood inventory: %w", err)
		}
		rec.BankID = id.BankID(bid)
		rec.BloodType = id.BloodType(bt)
		rec.Status = domain.InventoryStatus(status)
		if expires.Valid {
			rec.ExpirationDate = expires.Time
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood inventory: %w", err)
	}
	return out, nil
}

// AddInventory inserts one inventory batch.
func (s *Store) AddInventory(ctx context.Context, rec domain.InventoryRecord) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO blood_inventory (bank_id, blood_type, units, status, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(rec.BankID), string(rec.BloodType), rec.Units, string(rec.Status), nullTime(rec.ExpirationDate))
	if err != nil {
		return fmt.Errorf("add blood inventory: %w", err)
	}
	return nil
}

// Notifications

const notificationColumns = `id, request_id, recipient_type, recipient_id, contact, message,
	status, attempts, last_error, created_at, updated_at`

func (s *Store) CreateEmergencyNotification(ctx context.Context, n *domain.EmergencyNotification) error {
	now := requestcontext.Now(ctx)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	if n.Status == "" {
		n.Status = domain.NotificationPending
	}
	var requestID any
	if n.RequestID != nil {
		requestID = uuid.UUID(*n.RequestID)
	}
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO emergency_notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, uuid.UUID(n.ID), requestID, string(n.RecipientType), n.RecipientID, n.Contact, n.Message,
		string(n.Status), n.Attempts, n.LastError, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return translateWriteErr("create emergency notification", err)
	}
	return nil
}

func (s *Store) GetPendingNotifications(ctx context.Context, limit int) ([]*domain.EmergencyNotification, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM emergency_notifications
		WHERE status = $1
		ORDER BY seq
		LIMIT $2
	`, string(domain.NotificationPending), limit)
	if err != nil {
		return nil, fmt.Errorf("get pending notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.EmergencyNotification
	for rows.Next() {
		var (
			n         domain.EmergencyNotification
			nid       uuid.UUID
			requestID uuid.NullUUID
			rtype     string
			status    string
		)
		if err := rows.Scan(&nid, &requestID, &rtype, &n.RecipientID, &n.Contact, &n.Message,
			&status, &n.Attempts, &n.LastError, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan emergency notification: %w", err)
		}
		n.ID = id.NotificationID(nid)
		if requestID.Valid {
			rid := id.RequestID(requestID.UUID)
			n.RequestID = &rid
		}
		n.RecipientType = domain.RecipientType(rtype)
		n.Status = domain.NotificationStatus(status)
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emergency notifications: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateNotificationStatus(ctx context.Context, notificationID id.NotificationID, status domain.NotificationStatus, attempts int, lastError string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE emergency_notifications
		SET status = $2, attempts = $3, last_error = $4, updated_at = $5
		WHERE id = $1
	`, uuid.UUID(notificationID), string(status), attempts, lastError, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	return requireRow(res, "update notification status")
}

// scanning

type scanner interface {
	Scan(dest ...any) error
}

func scanDonor(row scanner, d *domain.Donor, extra ...any) error {
	var (
		did         uuid.UUID
		bt          string
		eligibility string
		until       sql.NullTime
		lastDonated sql.NullTime
	)
	dest := []any{&did, &d.Name, &d.Contact, &bt, &d.Location.Latitude, &d.Location.Longitude,
		&d.IsAvailable, &until, &lastDonated, &eligibility, &d.TotalDonations}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	d.ID = id.DonorID(did)
	d.BloodType = id.BloodType(bt)
	d.EligibilityStatus = domain.EligibilityStatus(eligibility)
	d.AvailableUntil = timePtr(until)
	d.LastDonationDate = timePtr(lastDonated)
	return nil
}

func scanRequest(row scanner) (*domain.BloodRequest, error) {
	var (
		r           domain.BloodRequest
		rid, hid    uuid.UUID
		bt, urgency string
		status      string
		state       string
		reason      sql.NullString
		deadline    sql.NullTime
		escalatedAt sql.NullTime
	)
	if err := row.Scan(&rid, &hid, &bt, &urgency, &r.UnitsNeeded, &r.Location.Latitude, &r.Location.Longitude,
		&deadline, &status, &r.PriorityScore, &state, &reason, &escalatedAt,
		&r.MatchGeneration, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.RequestID(rid)
	r.HospitalID = id.HospitalID(hid)
	r.BloodType = id.BloodType(bt)
	r.Urgency = id.Urgency(urgency)
	r.Status = domain.RequestStatus(status)
	r.EscalationState = domain.EscalationState(state)
	r.EscalationReason = domain.EscalationReason(reason.String)
	r.EscalatedAt = timePtr(escalatedAt)
	if deadline.Valid {
		r.Deadline = deadline.Time
	}
	return &r, nil
}

func scanMatch(row scanner) (*domain.DonorMatch, error) {
	var (
		m             domain.DonorMatch
		mid, rid, did uuid.UUID
		response      sql.NullString
		respondedAt   sql.NullTime
	)
	if err := row.Scan(&mid, &rid, &did, &m.Score, &m.DistanceKm, &m.Generation,
		&response, &respondedAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.ID = id.MatchID(mid)
	m.RequestID = id.RequestID(rid)
	m.DonorID = id.DonorID(did)
	if response.Valid {
		r := domain.DonorResponse(response.String)
		m.Response = &r
	}
	m.RespondedAt = timePtr(respondedAt)
	return &m, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func translateWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

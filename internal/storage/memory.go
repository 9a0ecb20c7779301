// Package storage provides the in-memory implementation of ports.DataStore.
// It backs local development and the service tests; the postgres package
// implements the same interface for production.
package storage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

// InMemoryStore keeps every entity in maps guarded by one RWMutex. Reads
// return copies so callers cannot mutate stored state.
type InMemoryStore struct {
	mu            sync.RWMutex
	donors        map[id.DonorID]*domain.Donor
	requests      map[id.RequestID]*domain.BloodRequest
	matches       map[id.MatchID]*domain.DonorMatch
	matchOrder    map[id.RequestID][]id.MatchID
	banks         map[id.BankID]*domain.BloodBank
	inventory     map[id.BankID][]domain.InventoryRecord
	notifications map[id.NotificationID]*domain.EmergencyNotification
	notifyOrder   []id.NotificationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		donors:        make(map[id.DonorID]*domain.Donor),
		requests:      make(map[id.RequestID]*domain.BloodRequest),
		matches:       make(map[id.MatchID]*domain.DonorMatch),
		matchOrder:    make(map[id.RequestID][]id.MatchID),
		banks:         make(map[id.BankID]*domain.BloodBank),
		inventory:     make(map[id.BankID][]domain.InventoryRecord),
		notifications: make(map[id.NotificationID]*domain.EmergencyNotification),
	}
}

type undoKey struct{}

// undoLog collects compensating steps for writes made inside RunInTx. Steps
// run with s.mu held.
type undoLog struct {
	steps []func()
}

func recordUndo(ctx context.Context, step func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.steps = append(log.steps, step)
	}
}

// RunInTx runs fn and, when it fails, reverts the match and generation
// writes fn made. A context already inside RunInTx is joined.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		s.mu.Lock()
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// Seeding helpers. Donors, requests, banks and inventory are owned by the
// surrounding system; these stand in for its write paths.

func (s *InMemoryStore) AddDonor(d *domain.Donor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.donors[d.ID] = &cp
}

func (s *InMemoryStore) AddRequest(r *domain.BloodRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	if cp.EscalationState == "" {
		cp.EscalationState = domain.EscalationNone
	}
	s.requests[r.ID] = &cp
}

func (s *InMemoryStore) AddBank(b *domain.BloodBank) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.banks[b.ID] = &cp
}

func (s *InMemoryStore) AddInventory(rec domain.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[rec.BankID] = append(s.inventory[rec.BankID], rec)
}

// Donors

func (s *InMemoryStore) GetAvailableDonors(ctx context.Context, bloodType id.BloodType, location domain.Location, radiusKm float64) ([]domain.DonorCandidate, error) {
	now := requestcontext.Now(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DonorCandidate
	for _, d := range s.donors {
		if d.BloodType != bloodType || !d.AvailableAt(now) {
			continue
		}
		if d.EligibilityStatus == domain.EligibilityIneligible {
			continue
		}
		dist := location.DistanceKm(d.Location)
		if dist > radiusKm {
			continue
		}
		out = append(out, domain.DonorCandidate{Donor: *d, DistanceKm: dist})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryStore) GetDonorByID(_ context.Context, donorID id.DonorID) (*domain.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donors[donorID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// Requests

func (s *InMemoryStore) GetBloodRequestByID(_ context.Context, requestID id.RequestID) (*domain.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) UpdateBloodRequestStatus(ctx context.Context, requestID id.RequestID, status domain.RequestStatus, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	if notes != "" {
		r.Notes = notes
	}
	r.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *InMemoryStore) GetPendingRequestsByBloodType(_ context.Context, bloodType id.BloodType, now time.Time) ([]*domain.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.BloodRequest
	for _, r := range s.requests {
		if r.BloodType != bloodType || !r.IsPending() || r.IsExpired(now) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sortRequestsByCreation(out)
	return out, nil
}

func (s *InMemoryStore) GetOverdueCriticalRequests(_ context.Context, cutoff time.Time) ([]*domain.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.BloodRequest
	for _, r := range s.requests {
		if !r.IsCritical() || !r.IsPending() || r.IsEscalated() {
			continue
		}
		if !r.CreatedAt.Before(cutoff) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sortRequestsByCreation(out)
	return out, nil
}

func (s *InMemoryStore) MarkRequestEscalated(_ context.Context, requestID id.RequestID, reason domain.EscalationReason, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if r.IsEscalated() {
		return false, nil
	}
	escalatedAt := at
	r.EscalationState = domain.EscalationEscalated
	r.EscalationReason = reason
	r.EscalatedAt = &escalatedAt
	r.UpdatedAt = at
	return true, nil
}

func (s *InMemoryStore) AdvanceMatchGeneration(ctx context.Context, requestID id.RequestID, gen int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if gen > r.MatchGeneration {
		prev := r.MatchGeneration
		recordUndo(ctx, func() { r.MatchGeneration = prev })
		r.MatchGeneration = gen
	}
	return nil
}

// Matches

func (s *InMemoryStore) CreateDonorMatch(ctx context.Context, match *domain.DonorMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matches[match.ID]; exists {
		return sentinel.ErrConflict
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = requestcontext.Now(ctx)
	}
	cp := *match
	s.matches[match.ID] = &cp
	s.matchOrder[match.RequestID] = append(s.matchOrder[match.RequestID], match.ID)
	recordUndo(ctx, func() {
		delete(s.matches, cp.ID)
		s.matchOrder[cp.RequestID] = slices.DeleteFunc(s.matchOrder[cp.RequestID], func(m id.MatchID) bool {
			return m == cp.ID
		})
	})
	return nil
}

func (s *InMemoryStore) GetDonorMatches(_ context.Context, requestID id.RequestID) ([]*domain.DonorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.matchOrder[requestID]
	out := make([]*domain.DonorMatch, 0, len(ids))
	for _, matchID := range ids {
		out = append(out, copyMatch(s.matches[matchID]))
	}
	return out, nil
}

func (s *InMemoryStore) GetDonorMatchByID(_ context.Context, matchID id.MatchID) (*domain.DonorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, nil
	}
	return copyMatch(m), nil
}

func (s *InMemoryStore) RecordDonorResponse(_ context.Context, matchID id.MatchID, response domain.DonorResponse, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if m.HasResponse() {
		return sentinel.ErrAlreadyUsed
	}
	resp := response
	respondedAt := at
	m.Response = &resp
	m.RespondedAt = &respondedAt
	return nil
}

// Banks

func (s *InMemoryStore) GetAllBloodBanks(_ context.Context) ([]*domain.BloodBank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.BloodBank, 0, len(s.banks))
	for _, b := range s.banks {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) GetNearbyBloodBanks(_ context.Context, location domain.Location, radiusKm float64) ([]*domain.BloodBank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type ranked struct {
		bank *domain.BloodBank
		dist float64
	}
	var hits []ranked
	for _, b := range s.banks {
		if dist := location.DistanceKm(b.Location); dist <= radiusKm {
			cp := *b
			hits = append(hits, ranked{bank: &cp, dist: dist})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]*domain.BloodBank, len(hits))
	for i, h := range hits {
		out[i] = h.bank
	}
	return out, nil
}

func (s *InMemoryStore) GetBloodInventory(_ context.Context, bankID id.BankID, bloodType *id.BloodType) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.InventoryRecord
	for _, rec := range s.inventory[bankID] {
		if bloodType != nil && rec.BloodType != *bloodType {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Notifications

func (s *InMemoryStore) CreateEmergencyNotification(ctx context.Context, n *domain.EmergencyNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notifications[n.ID]; exists {
		return sentinel.ErrConflict
	}
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
	cp := *n
	s.notifications[n.ID] = &cp
	s.notifyOrder = append(s.notifyOrder, n.ID)
	return nil
}

func (s *InMemoryStore) GetPendingNotifications(_ context.Context, limit int) ([]*domain.EmergencyNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.EmergencyNotification
	for _, nid := range s.notifyOrder {
		if limit > 0 && len(out) >= limit {
			break
		}
		n := s.notifications[nid]
		if n.Status != domain.NotificationPending {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) UpdateNotificationStatus(ctx context.Context, notificationID id.NotificationID, status domain.NotificationStatus, attempts int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Status = status
	n.Attempts = attempts
	n.LastError = lastError
	n.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

// Notifications returns every stored notification in creation order.
func (s *InMemoryStore) Notifications() []*domain.EmergencyNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.EmergencyNotification, 0, len(s.notifyOrder))
	for _, nid := range s.notifyOrder {
		cp := *s.notifications[nid]
		out = append(out, &cp)
	}
	return out
}

// Ping satisfies the readiness probe.
func (s *InMemoryStore) Ping(context.Context) error { return nil }

func copyMatch(m *domain.DonorMatch) *domain.DonorMatch {
	cp := *m
	if m.Response != nil {
		r := *m.Response
		cp.Response = &r
	}
	if m.RespondedAt != nil {
		t := *m.RespondedAt
		cp.RespondedAt = &t
	}
	return &cp
}

func sortRequestsByCreation(rs []*domain.BloodRequest) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		return rs[i].ID.String() < rs[j].ID.String()
	})
}

package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memDiscountRepo struct {
	mu         sync.Mutex
	rows       map[string]DiscountCode
	upsertErrs []error
	expireErr  error
}

func newMemDiscountRepo() *memDiscountRepo {
	return &memDiscountRepo{rows: make(map[string]DiscountCode)}
}

func (r *memDiscountRepo) UpsertByCode(_ context.Context, d DiscountCode) (DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.upsertErrs) > 0 {
		err := r.upsertErrs[0]
		r.upsertErrs = r.upsertErrs[1:]
		if err != nil {
			return DiscountCode{}, err
		}
	}

	existing, ok := r.rows[d.Code]
	if !ok {
		r.rows[d.Code] = d
		return d, nil
	}
	existing.Type = d.Type
	existing.Value = d.Value
	existing.ValidFrom = d.ValidFrom
	existing.ValidTo = d.ValidTo
	existing.UsageLimit = nil
	existing.Active = true
	existing.Archived = false
	existing.UpdatedAt = d.UpdatedAt
	r.rows[d.Code] = existing
	return existing, nil
}

func (r *memDiscountRepo) GetByCode(_ context.Context, code string) (DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[code]
	if !ok {
		return DiscountCode{}, ErrDiscountNotFound
	}
	return d, nil
}

func (r *memDiscountRepo) List(_ context.Context, includeArchived bool) ([]DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []DiscountCode
	for _, d := range r.rows {
		if d.Archived && !includeArchived {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memDiscountRepo) ExpireCodes(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.expireErr != nil {
		return 0, r.expireErr
	}
	var n int64
	for k, d := range r.rows {
		if !d.Archived && d.ValidTo.Before(before) {
			d.Archived = true
			r.rows[k] = d
			n++
		}
	}
	return n, nil
}

type memPolicyRepo struct {
	mu        sync.Mutex
	rows      map[string]Policy
	seq       int
	createErr error
}

func newMemPolicyRepo() *memPolicyRepo {
	return &memPolicyRepo{rows: make(map[string]Policy)}
}

func (r *memPolicyRepo) Create(_ context.Context, p Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.rows {
		if existing.OrderRef == p.OrderRef {
			return ErrPolicyExists
		}
	}
	r.rows[p.ID] = p
	return nil
}

func (r *memPolicyRepo) Get(_ context.Context, id string) (Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return Policy{}, ErrPolicyNotFound
	}
	return p, nil
}

func (r *memPolicyRepo) find(match func(Policy) bool) (Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if match(p) {
			return p, nil
		}
	}
	return Policy{}, ErrPolicyNotFound
}

func (r *memPolicyRepo) GetByNumber(_ context.Context, number string) (Policy, error) {
	return r.find(func(p Policy) bool { return p.Number == number })
}

func (r *memPolicyRepo) GetByOrderRef(_ context.Context, orderRef string) (Policy, error) {
	return r.find(func(p Policy) bool { return p.OrderRef == orderRef })
}

func (r *memPolicyRepo) ListByCustomer(_ context.Context, email string, limit, offset int) ([]Policy, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []Policy
	for _, p := range r.rows {
		if p.Customer.Email == email {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IssuedAt.After(all[j].IssuedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (r *memPolicyRepo) NextPolicyNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("WP-2025-%06d", r.seq), nil
}

type memDraftStore struct {
	mu   sync.Mutex
	rows map[string]QuoteDraft
}

func (s *memDraftStore) Save(_ context.Context, d QuoteDraft, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[string]QuoteDraft)
	}
	s.rows[d.ID] = d
	return nil
}

func (s *memDraftStore) Get(_ context.Context, id string) (QuoteDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok {
		return QuoteDraft{}, ErrDraftNotFound
	}
	return d, nil
}

func (s *memDraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

package repository

import (
	"context"
	"strings"
	"sync"

	"kodbank/internal/domain"
)

type memEntry struct {
	mu sync.Mutex
	u  *domain.User
}

// MemoryStore keeps users in process. Writers to one user are serialized by
// that user's mutex; fn always works on a clone that is swapped in on success.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	byID     map[int64]*memEntry
	byName   map[string]int64
	byEmail  map[string]int64
	ordering []int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[int64]*memEntry),
		byName:  make(map[string]int64),
		byEmail: make(map[string]int64),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[u.Username]; ok {
		return nil, ErrDuplicate
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, ErrDuplicate
	}

	s.nextID++
	stored := u.Clone()
	stored.ID = s.nextID
	s.byID[stored.ID] = &memEntry{u: stored}
	s.byName[stored.Username] = stored.ID
	s.byEmail[stored.Email] = stored.ID
	s.ordering = append(s.ordering, stored.ID)
	return stored.Clone(), nil
}

func (s *MemoryStore) entry(id int64) (*memEntry, bool) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()
	return e, ok
}

func (e *memEntry) snapshot() *domain.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.u.Clone()
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e.snapshot(), nil
}

func (s *MemoryStore) FindByIdentifier(ctx context.Context, ident string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byName[ident]
	if !ok {
		id, ok = s.byEmail[ident]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[username]
	return ok, nil
}

func (s *MemoryStore) scan(limit int, match func(u *domain.User) bool) []domain.Contact {
	s.mu.RLock()
	ids := append([]int64(nil), s.ordering...)
	s.mu.RUnlock()

	out := []domain.Contact{}
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		e, ok := s.entry(id)
		if !ok {
			continue
		}
		u := e.snapshot()
		if u.Active && match(u) {
			out = append(out, u.Contact())
		}
	}
	return out
}

func (s *MemoryStore) ListActive(ctx context.Context, excludeID int64, limit int) ([]domain.Contact, error) {
	return s.scan(limit, func(u *domain.User) bool { return u.ID != excludeID }), nil
}

func (s *MemoryStore) SearchActive(ctx context.Context, query string, limit int) ([]domain.Contact, error) {
	return s.scan(limit, func(u *domain.User) bool {
		return strings.Contains(u.Username, query) || strings.Contains(u.Email, query)
	}), nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, fn func(u *domain.User) error) (*domain.User, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work := e.u.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.ID = id
	e.u = work
	return work.Clone(), nil
}

func (s *MemoryStore) UpdatePair(ctx context.Context, aID, bID int64, fn func(a, b *domain.User) error) error {
	if aID == bID {
		return ErrSameUser
	}
	a, ok := s.entry(aID)
	if !ok {
		return ErrNotFound
	}
	b, ok := s.entry(bID)
	if !ok {
		return ErrNotFound
	}

	// lock in id order to avoid deadlocks between opposite transfers
	first, second := a, b
	if aID > bID {
		first, second = b, a
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	wa, wb := a.u.Clone(), b.u.Clone()
	if err := fn(wa, wb); err != nil {
		return err
	}
	wa.ID, wb.ID = aID, bID
	a.u, b.u = wa, wb
	return nil
}

package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

type fakeAccounts struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*domain.Account
	createErr error
	// zeroRace makes DeleteIfZeroBalance report no row even for a zero balance.
	zeroRace bool
}

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{byID: make(map[uuid.UUID]*domain.Account)}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.AccountNumber == number {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccounts) ExistsByNumber(_ context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.AccountNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) List(_ context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Account, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccounts) ListByClient(_ context.Context, clientID uuid.UUID) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Account{}
	for _, a := range f.byID {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) CountByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	accounts, _ := f.ListByClient(ctx, clientID)
	return len(accounts), nil
}

func (f *fakeAccounts) Create(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAccounts) UpdateDetails(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Type = a.Type
	stored.Active = a.Active
	stored.Version++
	return nil
}

func (f *fakeAccounts) DeleteIfZeroBalance(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok || f.zeroRace || !a.CurrentBalance.IsZero() {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

type fakeClients struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Client
}

func newFakeClients(clients ...*domain.Client) *fakeClients {
	f := &fakeClients{byID: make(map[uuid.UUID]*domain.Client)}
	for _, c := range clients {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeClients) GetByID(_ context.Context, id uuid.UUID) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClients) GetByClientID(_ context.Context, clientID string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.ClientID == clientID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeClients) List(_ context.Context) ([]domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Client, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeClients) ExistsByClientID(ctx context.Context, clientID string) (bool, error) {
	_, err := f.GetByClientID(ctx, clientID)
	return err == nil, nil
}

func (f *fakeClients) ExistsByIdentification(_ context.Context, identification string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Identification == identification {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClients) Create(_ context.Context, c *domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeClients) Update(_ context.Context, c *domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeClients) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// sequenceIDs hands out the given values in order, then repeats the last.
type sequenceIDs struct {
	values []string
	calls  int
}

func (s *sequenceIDs) next() (string, error) {
	i := s.calls
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	s.calls++
	return s.values[i], nil
}

func (s *sequenceIDs) NextAccountNumber() (string, error) { return s.next() }
func (s *sequenceIDs) NextClientID() (string, error)      { return s.next() }

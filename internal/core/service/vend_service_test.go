package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ptl2504/text-vending/internal/core/domain"
)

// Mock Classifier
type mockClassifier struct {
	label domain.Label
	err   error
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (domain.Label, error) {
	return m.label, m.err
}

// Mock CatalogRepository
type mockCatalog struct {
	items map[string]domain.Item
}

func (m *mockCatalog) GetItem(ctx context.Context, name string) (*domain.Item, error) {
	item, ok := m.items[name]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// Mock AccountRepository with an atomic conditional deduct
type mockAccounts struct {
	name    string
	balance int
	missing bool
	mu      sync.Mutex
}

func (m *mockAccounts) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.missing || name != m.name {
		return nil, nil
	}
	return &domain.Account{Name: m.name, Balance: m.balance}, nil
}

func (m *mockAccounts) DeductBalance(ctx context.Context, name string, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.missing || name != m.name || m.balance < amount {
		return false, nil
	}
	m.balance -= amount
	return true, nil
}

func (m *mockAccounts) SetBalance(ctx context.Context, name string, balance int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = balance
	return nil
}

// Mock AuditRepository
type mockAudit struct {
	entries []string
	mu      sync.Mutex
}

func (m *mockAudit) Append(ctx context.Context, message string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, message)
	return int64(len(m.entries)), nil
}

func (m *mockAudit) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries...)
}

func defaultCatalog() *mockCatalog {
	return &mockCatalog{items: map[string]domain.Item{
		"soda":        {Name: "soda", Cost: 5, Stock: 30},
		"orangejuice": {Name: "orangejuice", Cost: 10, Stock: 5},
		"water":       {Name: "water", Cost: 2, Stock: 10},
	}}
}

func newService(cls *mockClassifier, catalog *mockCatalog, accounts *mockAccounts, audit *mockAudit) *VendService {
	return NewVendService(cls, catalog, accounts, audit, "john", zerolog.Nop())
}

func TestVend_Success(t *testing.T) {
	accounts := &mockAccounts{name: "john", balance: 20}
	audit := &mockAudit{}
	svc := newService(&mockClassifier{label: domain.LabelSoda}, defaultCatalog(), accounts, audit)

	receipt, err := svc.Vend(context.Background(), "one soda please")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if receipt.Product != "soda" {
		t.Errorf("expected product soda, got %s", receipt.Product)
	}
	if receipt.Balance != 15 {
		t.Errorf("expected receipt balance 15, got %d", receipt.Balance)
	}
	if receipt.ID == "" {
		t.Error("expected non-empty receipt ID")
	}
	if accounts.balance != 15 {
		t.Errorf("expected balance 15, got %d", accounts.balance)
	}

	entries := audit.snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0] != "Request: one soda please" {
		t.Errorf("unexpected request entry: %q", entries[0])
	}
	if entries[1] != "Response: soda" {
		t.Errorf("unexpected response entry: %q", entries[1])
	}
}

func TestVend_InsufficientFunds(t *testing.T) {
	accounts := &mockAccounts{name: "john", balance: 1}
	audit := &mockAudit{}
	svc := newService(&mockClassifier{label: domain.LabelOrangeJuice}, defaultCatalog(), accounts, audit)

	_, err := svc.Vend(context.Background(), "orange juice")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
	}

	if accounts.balance != 1 {
		t.Errorf("expected balance unchanged at 1, got %d", accounts.balance)
	}

	entries := audit.snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	for _, want := range []string{"orangejuice", "10", "1"} {
		if !strings.Contains(entries[0], want) {
			t.Errorf("rejection entry %q missing %q", entries[0], want)
		}
	}
}

func TestVend_InvalidProduct(t *testing.T) {
	accounts := &mockAccounts{name: "john", balance: 20}
	audit := &mockAudit{}
	svc := newService(&mockClassifier{label: domain.LabelNone}, defaultCatalog(), accounts, audit)

	_, err := svc.Vend(context.Background(), "a pony")
	if !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got: %v", err)
	}

	if accounts.balance != 20 {
		t.Errorf("expected balance unchanged at 20, got %d", accounts.balance)
	}
	if n := len(audit.snapshot()); n != 0 {
		t.Errorf("expected 0 audit entries, got %d", n)
	}
}

func TestVend_ItemNotFound(t *testing.T) {
	accounts := &mockAccounts{name: "john", balance: 20}
	audit := &mockAudit{}
	catalog := &mockCatalog{items: map[string]domain.Item{}}
	svc := newService(&mockClassifier{label: domain.LabelSoda}, catalog, accounts, audit)

	_, err := svc.Vend(context.Background(), "soda")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if n := len(audit.snapshot()); n != 0 {
		t.Errorf("expected 0 audit entries, got %d", n)
	}
}

func TestVend_AccountNotFound(t *testing.T) {
	accounts := &mockAccounts{name: "john", missing: true}
	audit := &mockAudit{}
	svc := newService(&mockClassifier{label: domain.LabelSoda}, defaultCatalog(), accounts, audit)

	_, err := svc.Vend(context.Background(), "soda")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if n := len(audit.snapshot()); n != 0 {
		t.Errorf("expected 0 audit entries, got %d", n)
	}
}

func TestVend_ClassifierError(t *testing.T) {
	accounts := &mockAccounts{name: "john", balance: 20}
	audit := &mockAudit{}
	svc := newService(&mockClassifier{err: errors.New("oracle down")}, defaultCatalog(), accounts, audit)

	_, err := svc.Vend(context.Background(), "soda")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidProduct) || errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrNotFound) {
		t.Errorf("oracle failure must not map to a business outcome, got: %v", err)
	}
	if accounts.balance != 20 {
		t.Errorf("expected balance unchanged at 20, got %d", accounts.balance)
	}
	if n := len(audit.snapshot()); n != 0 {
		t.Errorf("expected 0 audit entries, got %d", n)
	}
}

func TestVend_Concurrent(t *testing.T) {
	accounts := &mockAccounts{name: "john", balance: 3}
	audit := &mockAudit{}
	svc := newService(&mockClassifier{label: domain.LabelWater}, defaultCatalog(), accounts, audit)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Vend(context.Background(), "water")
		}(i)
	}
	wg.Wait()

	var successes, rejections int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientFunds):
			rejections++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || rejections != 1 {
		t.Errorf("expected 1 success and 1 rejection, got %d and %d", successes, rejections)
	}
	if accounts.balance != 1 {
		t.Errorf("expected balance 1, got %d", accounts.balance)
	}
	if accounts.balance < 0 {
		t.Errorf("balance went negative: %d", accounts.balance)
	}

	// 2 entries for the success, 1 for the rejection.
	if n := len(audit.snapshot()); n != 3 {
		t.Errorf("expected 3 audit entries, got %d", n)
	}
}

// raceAccounts serves a stale balance on the first read so the engine's
// fast-path funds check passes while the store-side check fails.
type raceAccounts struct {
	mockAccounts
	staleReads int
	stale      int
}

func (r *raceAccounts) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleReads > 0 {
		r.staleReads--
		return &domain.Account{Name: r.name, Balance: r.stale}, nil
	}
	return &domain.Account{Name: r.name, Balance: r.balance}, nil
}

func TestVend_LostDeductRace(t *testing.T) {
	accounts := &raceAccounts{
		mockAccounts: mockAccounts{name: "john", balance: 1},
		staleReads:   1,
		stale:        3,
	}
	audit := &mockAudit{}
	svc := NewVendService(&mockClassifier{label: domain.LabelWater}, defaultCatalog(), accounts, audit, "john", zerolog.Nop())

	_, err := svc.Vend(context.Background(), "water")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
	}

	if accounts.balance != 1 {
		t.Errorf("expected balance unchanged at 1, got %d", accounts.balance)
	}

	entries := audit.snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	// The rejection entry must carry the re-read balance, not the stale one.
	if !strings.Contains(entries[0], "balance 1") {
		t.Errorf("rejection entry %q should report the current balance", entries[0])
	}
}

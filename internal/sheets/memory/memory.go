package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"spendlens/internal/core"
)

// Store keeps transactions, budgets and dismissals in process memory.
type Store struct {
	mu        sync.Mutex
	txns      []core.Transaction
	budgets   []core.Budget
	dismissed []string
}

func New(txns []core.Transaction, budgets []core.Budget) *Store {
	return &Store{
		txns:    slices.Clone(txns),
		budgets: slices.Clone(budgets),
	}
}

// NewFromFiles seeds the store from seed_transactions.json and
// seed_budgets.json under base. A missing file leaves that collection empty;
// a file that does not decode is an error. Seed records that fail
// validation are skipped with a warning.
func NewFromFiles(base string) (*Store, error) {
	var txns []core.Transaction
	var budgets []core.Budget
	if err := readJSON(filepath.Join(base, "seed_transactions.json"), &txns); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(base, "seed_budgets.json"), &budgets); err != nil {
		return nil, err
	}
	return New(validSeeds(txns), validSeeds(budgets)), nil
}

type validator interface {
	Validate() error
}

func validSeeds[T validator](records []T) []T {
	out := records[:0]
	for i, r := range records {
		if err := r.Validate(); err != nil {
			slog.Warn("Skipping invalid seed record", "index", i, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// ListTransactions returns a copy, newest-created first.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txns), nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

// SaveTransaction replaces in place on edit and prepends new records.
func (s *Store) SaveTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txns {
		if s.txns[i].ID == t.ID {
			s.txns[i] = t
			return nil
		}
	}
	s.txns = append([]core.Transaction{t}, s.txns...)
	return nil
}

func (s *Store) DeleteTransactions(_ context.Context, ids ...string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.txns)
	s.txns = slices.DeleteFunc(s.txns, func(t core.Transaction) bool {
		_, ok := drop[t.ID]
		return ok
	})
	return before - len(s.txns), nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.budgets), nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
}

func (s *Store) SaveBudget(ctx context.Context, b core.Budget) error {
	return s.SaveBudgets(ctx, []core.Budget{b})
}

// SaveBudgets validates every budget before touching the collection.
func (s *Store) SaveBudgets(_ context.Context, bs []core.Budget) error {
	for _, b := range bs {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("budget %s: %w", b.ID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bs {
		if i := slices.IndexFunc(s.budgets, func(x core.Budget) bool { return x.ID == b.ID }); i >= 0 {
			s.budgets[i] = b
			continue
		}
		s.budgets = append(s.budgets, b)
	}
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.budgets, func(b core.Budget) bool { return b.ID == id })
	if i < 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	s.budgets = slices.Delete(s.budgets, i, i+1)
	return nil
}

func (s *Store) ListDismissed(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.dismissed), nil
}

func (s *Store) Dismiss(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.dismissed, alertID) {
		s.dismissed = append(s.dismissed, alertID)
	}
	return nil
}

// readJSON decodes path into v. A missing file is not an error.
func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode seed %s: %w", path, err)
	}
	return nil
}

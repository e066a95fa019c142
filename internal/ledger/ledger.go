// Package ledger stores per-user company expenses that are not tied to a
// project.
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/store"
)

var monthsES = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// Ledger is one user's list of business expenses, newest first.
type Ledger struct {
	kv   store.KV
	key  string
	user string
	now  func() time.Time

	mu sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source for ids and dates.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns the ledger for user.
func New(kv store.KV, user string, opts ...Option) *Ledger {
	l := &Ledger{
		kv:   kv,
		key:  store.BusinessExpensesKey(user),
		user: user,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// User returns the ledger owner.
func (l *Ledger) User() string {
	return l.user
}

// List returns all entries, newest first.
func (l *Ledger) List(ctx context.Context) ([]model.BusinessExpense, error) {
	list, _, err := store.GetJSON[[]model.BusinessExpense](ctx, l.kv, l.key)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	if list == nil {
		list = []model.BusinessExpense{}
	}
	return list, nil
}

// Add validates and prepends an entry.
func (l *Ledger) Add(ctx context.Context, in model.BusinessExpenseInput) (model.BusinessExpense, error) {
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.BusinessExpense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	list, err := l.List(ctx)
	if err != nil {
		return model.BusinessExpense{}, err
	}

	now := l.now()
	id := now.UnixMilli()
	for _, e := range list {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	cat := model.CategoryByID(in.Category)
	entry := model.BusinessExpense{
		ID:       id,
		Item:     in.Item,
		Ref:      in.Ref,
		Amount:   in.Amount,
		Category: cat.ID,
		Icon:     cat.Icon,
		Date:     ShortDate(now),
		User:     l.user,
	}
	list = append([]model.BusinessExpense{entry}, list...)
	if err := store.SetJSON(ctx, l.kv, l.key, list); err != nil {
		return model.BusinessExpense{}, fmt.Errorf("saving ledger: %w", err)
	}
	return entry, nil
}

// Delete removes the entry with id. Unknown ids are ignored.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	list, err := l.List(ctx)
	if err != nil {
		return err
	}
	n := len(list)
	list = slices.DeleteFunc(list, func(e model.BusinessExpense) bool { return e.ID == id })
	if len(list) == n {
		return nil
	}
	return store.SetJSON(ctx, l.kv, l.key, list)
}

// Clear removes every entry.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kv.Delete(ctx, l.key)
}

// Total sums entry amounts.
func Total(list []model.BusinessExpense) float64 {
	var sum float64
	for _, e := range list {
		sum += e.Amount
	}
	return sum
}

// ByCategory sums entry amounts per category id.
func ByCategory(list []model.BusinessExpense) map[string]float64 {
	out := make(map[string]float64, len(model.Categories))
	for _, e := range list {
		out[e.Category] += e.Amount
	}
	return out
}

// ShortDate formats t as "15 oct".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), monthsES[t.Month()-1])
}

// Package clients owns the active and archived project collections, the
// current selection, and their persistence and remote mirroring.
package clients

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/remote"
	"github.com/theirongolddev/harmony/internal/store"
)

var (
	// ErrNotFound indicates no project with the requested id.
	ErrNotFound = errors.New("clients: project not found")
	// ErrDuplicateID indicates an add with an id already in use.
	ErrDuplicateID = errors.New("clients: duplicate project id")
	// ErrNoRemote indicates a sync was requested in local-only mode.
	ErrNoRemote = errors.New("clients: no remote endpoint configured")
)

// Mirror receives best-effort copies of every change.
type Mirror interface {
	GetAllData(ctx context.Context) remote.Response
	SaveClient(ctx context.Context, c model.Client) remote.Response
	ArchiveClient(ctx context.Context, id int64) remote.Response
}

// MirrorFor adapts a remote client, returning nil in local-only mode so the
// manager skips mirroring entirely.
func MirrorFor(c *remote.Client) Mirror {
	if c == nil {
		return nil
	}
	return c
}

// Manager is safe for concurrent use. Local state is authoritative: a
// mutation is applied in memory, persisted, then mirrored in the background.
type Manager struct {
	kv     store.KV
	mirror Mirror
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	active   []model.Client
	history  []model.Client
	selected int64
	lastID   int64

	pending sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for ids and dates.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a manager. A nil mirror means local-only mode.
func New(kv store.KV, mirror Mirror, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		kv:      kv,
		mirror:  mirror,
		log:     logger.With().Str("component", "clients").Logger(),
		now:     time.Now,
		active:  []model.Client{},
		history: []model.Client{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces in-memory state with the persisted collections.
// Missing keys load as empty collections.
func (m *Manager) Load(ctx context.Context) error {
	active, _, err := store.GetJSON[[]model.Client](ctx, m.kv, store.KeyClients)
	if err != nil {
		return fmt.Errorf("loading active projects: %w", err)
	}
	history, _, err := store.GetJSON[[]model.Client](ctx, m.kv, store.KeyHistory)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history = normalize(history)
	active = m.withoutArchived(normalize(active), history)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = active
	m.history = history
	m.selected = 0
	for _, list := range [][]model.Client{active, history} {
		for _, c := range list {
			m.lastID = max(m.lastID, c.ID)
		}
	}
	return nil
}

// Active returns a copy of the active projects, newest first.
func (m *Manager) Active() []model.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.active)
}

// History returns a copy of the archived projects, most recently archived first.
func (m *Manager) History() []model.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.history)
}

// Find returns the active project with id.
func (m *Manager) Find(id int64) (model.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.active, id); i >= 0 {
		return clone(m.active[i]), true
	}
	return model.Client{}, false
}

// FindArchived returns the archived project with id.
func (m *Manager) FindArchived(id int64) (model.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.history, id); i >= 0 {
		return clone(m.history[i]), true
	}
	return model.Client{}, false
}

// Select marks id as the open project. Unknown ids clear the selection.
func (m *Manager) Select(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.active, id) < 0 {
		m.selected = 0
		return
	}
	m.selected = id
}

// ClearSelection closes the open project.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	m.selected = 0
	m.mu.Unlock()
}

// Selected returns the open project, resolved against the active list.
func (m *Manager) Selected() (model.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.selected == 0 {
		return model.Client{}, false
	}
	if i := indexOf(m.active, m.selected); i >= 0 {
		return clone(m.active[i]), true
	}
	return model.Client{}, false
}

// Create validates input and adds a new project built from it.
func (m *Manager) Create(ctx context.Context, in model.NewClientInput) (model.Client, error) {
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.Client{}, err
	}

	m.mu.Lock()
	id := m.nextIDLocked()
	m.mu.Unlock()

	pct := *in.AbonoPercent
	c := model.Client{
		ID:           id,
		Name:         in.Name,
		Desc:         in.Desc,
		Phone:        in.Phone,
		Location:     in.Location,
		Total:        in.Total,
		AbonoPercent: model.Float(pct),
		AbonoTotal:   model.Float(in.Total * pct / 100),
		Pct:          strconv.FormatFloat(pct, 'f', -1, 64) + "%",
		Status:       model.StatusIniciado,
		Expenses:     []model.Expense{},
		Start:        m.today(),
		End:          model.OpenEnd,
	}
	if err := m.Add(ctx, c); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

// Add prepends c to the active list, selects it, persists and mirrors it.
func (m *Manager) Add(ctx context.Context, c model.Client) error {
	c = clone(c)
	if c.Expenses == nil {
		c.Expenses = []model.Expense{}
	}

	m.mu.Lock()
	if indexOf(m.active, c.ID) >= 0 || indexOf(m.history, c.ID) >= 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDuplicateID, c.ID)
	}
	next := append([]model.Client{c}, m.active...)
	if err := m.saveActiveLocked(ctx, next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.active = next
	m.selected = c.ID
	m.lastID = max(m.lastID, c.ID)
	m.mu.Unlock()

	m.log.Info().Int64("id", c.ID).Str("name", c.Name).Msg("project added")
	m.mirrorSave(ctx, c)
	return nil
}

// Update replaces the active project with c.ID in place. Unknown ids are
// ignored.
func (m *Manager) Update(ctx context.Context, c model.Client) error {
	_, err := m.modify(ctx, c.ID, func(cur *model.Client) error {
		*cur = clone(c)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Upsert updates c if it is active and adds it otherwise. c must pass
// model.ValidateRecord; its text fields are sanitized first.
func (m *Manager) Upsert(ctx context.Context, c model.Client) error {
	c = model.SanitizeRecord(c)
	if err := model.ValidateRecord(c); err != nil {
		return err
	}
	if _, ok := m.Find(c.ID); ok {
		return m.Update(ctx, c)
	}
	return m.Add(ctx, c)
}

// Archive moves an active project to history, stamping it Finalizado with
// today's end date. Unknown ids are ignored.
func (m *Manager) Archive(ctx context.Context, id int64) error {
	m.mu.Lock()
	i := indexOf(m.active, id)
	if i < 0 {
		m.mu.Unlock()
		return nil
	}
	archived := m.active[i]
	archived.Status = model.StatusFinalizado
	archived.End = m.today()

	history := append([]model.Client{archived}, m.history...)
	active := slices.Delete(slices.Clone(m.active), i, i+1)
	if err := store.SetJSONMany(ctx, m.kv, map[string]any{
		store.KeyHistory: history,
		store.KeyClients: active,
	}); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persisting archive: %w", err)
	}
	m.history, m.active = history, active
	if m.selected == id {
		m.selected = 0
	}
	m.mu.Unlock()

	m.log.Info().Int64("id", id).Msg("project archived")
	m.dispatch(ctx, remote.ActionArchiveClient, func(ctx context.Context) remote.Response {
		return m.mirror.ArchiveClient(ctx, id)
	})
	return nil
}

// DeleteFromHistory removes an archived project permanently. Unknown ids
// are ignored.
func (m *Manager) DeleteFromHistory(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.history, id)
	if i < 0 {
		return nil
	}
	history := slices.Delete(slices.Clone(m.history), i, i+1)
	if err := store.SetJSON(ctx, m.kv, store.KeyHistory, history); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}
	m.history = history
	m.log.Info().Int64("id", id).Msg("archived project deleted")
	return nil
}

// AddExpense charges a validated expense to an active project.
func (m *Manager) AddExpense(ctx context.Context, clientID int64, in model.ExpenseInput) (model.Expense, error) {
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.Expense{}, err
	}

	var exp model.Expense
	_, err := m.modify(ctx, clientID, func(c *model.Client) error {
		exp = model.Expense{
			ID:     m.expenseID(c.Expenses),
			Item:   in.Item,
			Ref:    in.Ref,
			Icon:   model.DefaultExpenseIcon,
			Amount: in.Amount,
		}
		c.Expenses = append(c.Expenses, exp)
		*c = finance.Refresh(*c)
		return nil
	})
	if err != nil {
		return model.Expense{}, err
	}
	return exp, nil
}

// RemoveExpense deletes one expense from an active project. An unknown
// expense id leaves the project unchanged.
func (m *Manager) RemoveExpense(ctx context.Context, clientID, expenseID int64) error {
	_, err := m.modify(ctx, clientID, func(c *model.Client) error {
		c.Expenses = slices.DeleteFunc(c.Expenses, func(e model.Expense) bool { return e.ID == expenseID })
		*c = finance.Refresh(*c)
		return nil
	})
	return err
}

// SetAbono records the amount received so far and refreshes the project's
// payment label and health band.
func (m *Manager) SetAbono(ctx context.Context, clientID int64, amount float64) (model.Client, error) {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		return model.Client{}, &model.ValidationError{Fields: map[string]string{"abonoTotal": "finite"}}
	case amount < 0:
		return model.Client{}, &model.ValidationError{Fields: map[string]string{"abonoTotal": "gte"}}
	}
	return m.modify(ctx, clientID, func(c *model.Client) error {
		c.AbonoTotal = model.Float(amount)
		*c = finance.Refresh(*c)
		return nil
	})
}

// Sync replaces the active list with the remote copy. On failure local
// state is kept and the remote error is returned.
func (m *Manager) Sync(ctx context.Context) (int, error) {
	if m.mirror == nil {
		return 0, ErrNoRemote
	}
	resp := m.mirror.GetAllData(ctx)
	if !resp.Success {
		m.log.Warn().Str("error", resp.Error).Msg("sync failed; keeping local data")
		return 0, fmt.Errorf("sync: %s", resp.Error)
	}
	if resp.Clients == nil {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.withoutArchived(normalize(resp.Clients), m.history)
	if err := m.saveActiveLocked(ctx, next); err != nil {
		return 0, fmt.Errorf("persisting synced projects: %w", err)
	}
	m.active = next
	for _, c := range m.active {
		m.lastID = max(m.lastID, c.ID)
	}
	if indexOf(m.active, m.selected) < 0 {
		m.selected = 0
	}
	m.log.Info().Int("projects", len(m.active)).Msg("synced from remote")
	return len(m.active), nil
}

// Wipe deletes both collections from memory and storage.
func (m *Manager) Wipe(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = []model.Client{}
	m.history = []model.Client{}
	m.selected = 0
	if err := m.kv.Delete(ctx, store.KeyClients, store.KeyHistory); err != nil {
		return fmt.Errorf("wiping collections: %w", err)
	}
	m.log.Warn().Msg("all project data wiped")
	return nil
}

// Portfolio summarizes payments across the active projects.
func (m *Manager) Portfolio() finance.PortfolioStats {
	return finance.Portfolio(m.Active())
}

// Wait blocks until in-flight mirror calls finish.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// modify applies fn to the active project with id under the write lock,
// then persists and mirrors the result.
func (m *Manager) modify(ctx context.Context, id int64, fn func(*model.Client) error) (model.Client, error) {
	m.mu.Lock()
	i := indexOf(m.active, id)
	if i < 0 {
		m.mu.Unlock()
		return model.Client{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c := clone(m.active[i])
	if err := fn(&c); err != nil {
		m.mu.Unlock()
		return model.Client{}, err
	}
	c.ID = id
	if c.Expenses == nil {
		c.Expenses = []model.Expense{}
	}
	next := slices.Clone(m.active)
	next[i] = c
	if err := m.saveActiveLocked(ctx, next); err != nil {
		m.mu.Unlock()
		return model.Client{}, err
	}
	m.active = next
	m.mu.Unlock()

	m.mirrorSave(ctx, c)
	return clone(c), nil
}

// saveActiveLocked persists list as the active collection. Callers commit
// list to m.active only after it succeeds.
func (m *Manager) saveActiveLocked(ctx context.Context, list []model.Client) error {
	if err := store.SetJSON(ctx, m.kv, store.KeyClients, list); err != nil {
		return fmt.Errorf("persisting active projects: %w", err)
	}
	return nil
}

func (m *Manager) mirrorSave(ctx context.Context, c model.Client) {
	m.dispatch(ctx, remote.ActionSaveClient, func(ctx context.Context) remote.Response {
		return m.mirror.SaveClient(ctx, c)
	})
}

// dispatch runs a mirror call in the background. Failures are logged only.
func (m *Manager) dispatch(ctx context.Context, action string, call func(context.Context) remote.Response) {
	if m.mirror == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		resp := call(ctx)
		if !resp.Success {
			m.log.Warn().Str("action", action).Str("error", resp.Error).Msg("remote mirror failed; local data kept")
		}
	}()
}

func (m *Manager) nextIDLocked() int64 {
	id := m.now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return id
}

func (m *Manager) expenseID(existing []model.Expense) int64 {
	id := m.now().UnixMilli()
	for _, e := range existing {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	return id
}

func (m *Manager) today() string {
	return m.now().Format(model.DateLayout)
}

// withoutArchived drops active entries whose id already appears in history.
func (m *Manager) withoutArchived(active, history []model.Client) []model.Client {
	return slices.DeleteFunc(active, func(c model.Client) bool {
		if indexOf(history, c.ID) >= 0 {
			m.log.Warn().Int64("id", c.ID).Msg("project is both active and archived; keeping archived copy")
			return true
		}
		return false
	})
}

func normalize(list []model.Client) []model.Client {
	if list == nil {
		return []model.Client{}
	}
	for i := range list {
		if list[i].Expenses == nil {
			list[i].Expenses = []model.Expense{}
		}
	}
	return list
}

func indexOf(list []model.Client, id int64) int {
	return slices.IndexFunc(list, func(c model.Client) bool { return c.ID == id })
}

func clone(c model.Client) model.Client {
	if c.Expenses != nil {
		c.Expenses = slices.Clone(c.Expenses)
	}
	if c.AbonoTotal != nil {
		c.AbonoTotal = model.Float(*c.AbonoTotal)
	}
	if c.AbonoPercent != nil {
		c.AbonoPercent = model.Float(*c.AbonoPercent)
	}
	return c
}

func cloneAll(list []model.Client) []model.Client {
	out := make([]model.Client, len(list))
	for i, c := range list {
		out[i] = clone(c)
	}
	return out
}

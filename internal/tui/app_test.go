package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/remote"
	"github.com/theirongolddev/harmony/internal/store"
)

func newTestApp(t *testing.T, role auth.Role, names ...string) (App, *clients.Manager) {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemory()
	mgr := clients.New(kv, nil, zerolog.Nop())
	require.NoError(t, mgr.Load(ctx))
	for _, n := range names {
		_, err := mgr.Create(ctx, model.NewClientInput{Name: n, Desc: "Ventanal " + n, Total: 1000000})
		require.NoError(t, err)
	}
	app := NewApp(Deps{
		Manager: mgr,
		Ledger:  ledger.New(kv, "admin"),
		Session: auth.Session{Username: "admin", Role: role},
	})
	return app, mgr
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = a.Update(key(k))
		a = m.(App)
	}
	return a, cmd
}

func run(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ := a.Update(cmd())
	return m.(App)
}

func TestTabNavigation(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin)

	a, _ = press(t, a, "p")
	assert.Equal(t, tabPagos, a.activeTab)
	a, _ = press(t, a, "c")
	assert.Equal(t, tabCaja, a.activeTab)
	a, _ = press(t, a, "right")
	assert.Equal(t, tabObras, a.activeTab)
	a, _ = press(t, a, "left")
	assert.Equal(t, tabCaja, a.activeTab)
}

func TestCursorMovesWithinBounds(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin, "Ana", "Luis", "Marta")

	a, _ = press(t, a, "j", "j", "j", "j")
	assert.Equal(t, 2, a.obras.cursor)
	a, _ = press(t, a, "k", "k", "k")
	assert.Equal(t, 0, a.obras.cursor)
	a, _ = press(t, a, "G")
	assert.Equal(t, 2, a.obras.cursor)
}

func TestSearchFiltersActiveList(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin, "Ana", "Luis", "Marta")

	a, _ = press(t, a, "/", "l", "u", "enter")
	assert.Equal(t, "lu", a.obras.query)
	require.Len(t, a.visibleActive(), 1)
	assert.Equal(t, "Luis", a.visibleActive()[0].Name)

	a, _ = press(t, a, "esc")
	assert.Empty(t, a.obras.query)
	assert.Len(t, a.visibleActive(), 3)
}

func TestArchiveRequiresConfirmation(t *testing.T) {
	a, mgr := newTestApp(t, auth.RoleAdmin, "Ana")

	a, _ = press(t, a, "a")
	require.NotNil(t, a.confirm)
	assert.Contains(t, a.confirm.prompt, "Ana")

	a, cmd := press(t, a, "n")
	assert.Nil(t, cmd)
	assert.Nil(t, a.confirm)
	assert.Len(t, mgr.Active(), 1)

	a, _ = press(t, a, "a")
	a, cmd = press(t, a, "s")
	a = run(t, a, cmd)

	assert.Empty(t, mgr.Active())
	assert.Len(t, mgr.History(), 1)
	assert.Empty(t, a.active)
	assert.Len(t, a.history, 1)
	assert.Equal(t, model.StatusFinalizado, a.history[0].Status)
}

func TestArchiveForbiddenForBasicRole(t *testing.T) {
	a, mgr := newTestApp(t, auth.RoleBasic, "Ana")

	a, _ = press(t, a, "a")
	assert.Nil(t, a.confirm)
	assert.Contains(t, a.flash, "administrador")
	assert.Len(t, mgr.Active(), 1)
}

func TestDeleteFromHistory(t *testing.T) {
	a, mgr := newTestApp(t, auth.RoleAdmin, "Ana")
	require.NoError(t, mgr.Archive(context.Background(), mgr.Active()[0].ID))
	a.reload()

	a, _ = press(t, a, "h", "x")
	require.NotNil(t, a.confirm)
	a, cmd := press(t, a, "s")
	a = run(t, a, cmd)

	assert.Empty(t, mgr.History())
	assert.Empty(t, a.history)
}

func TestEnterSelectsProject(t *testing.T) {
	a, mgr := newTestApp(t, auth.RoleAdmin, "Ana", "Luis")
	mgr.ClearSelection()

	a, _ = press(t, a, "j", "enter")
	sel, ok := mgr.Selected()
	require.True(t, ok)
	assert.Equal(t, a.visibleActive()[1].ID, sel.ID)
}

func TestSyncInLocalMode(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin)
	a, cmd := press(t, a, "r")
	assert.Nil(t, cmd)
	assert.False(t, a.syncing)
	assert.Contains(t, a.flash, "Modo local")
}

type staticMirror struct{ resp remote.Response }

func (s staticMirror) GetAllData(context.Context) remote.Response { return s.resp }
func (s staticMirror) SaveClient(context.Context, model.Client) remote.Response {
	return remote.Response{Success: true}
}
func (s staticMirror) ArchiveClient(context.Context, int64) remote.Response {
	return remote.Response{Success: true}
}

func TestSyncReplacesActiveList(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	mirror := staticMirror{resp: remote.Response{Success: true, Clients: []model.Client{
		{ID: 1, Name: "Remota", Total: 500000, Pct: "50%", Expenses: []model.Expense{}},
	}}}
	mgr := clients.New(kv, mirror, zerolog.Nop())
	require.NoError(t, mgr.Load(ctx))

	a := NewApp(Deps{Manager: mgr, Session: auth.Session{Username: "admin", Role: auth.RoleAdmin}, Remote: true})
	assert.True(t, a.syncing)

	m, _ := a.Update(syncCmd(mgr)())
	a = m.(App)
	assert.False(t, a.syncing)
	assert.Equal(t, "Sincronizado: 1 obras", a.flash)
	require.Len(t, a.active, 1)
	assert.Equal(t, "Remota", a.active[0].Name)
}

func TestLedgerMsgPopulatesCaja(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin)
	l := ledger.New(store.NewMemory(), "admin", ledger.WithClock(func() time.Time {
		return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	}))
	_, err := l.Add(context.Background(), model.BusinessExpenseInput{Item: "Gasolina", Amount: 80000})
	require.NoError(t, err)

	m, _ := a.Update(loadLedgerCmd(l)())
	a = m.(App)
	require.Len(t, a.entries, 1)

	m, _ = a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)
	a, _ = press(t, a, "c")
	assert.Contains(t, a.View(), "Gasolina")
}

func TestViewRendersTabs(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin, "Ana")
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)

	view := a.View()
	for _, want := range []string{"Obras", "agos", "istorial", "Ana", "HARMONY GLASS"} {
		assert.Contains(t, view, want)
	}

	a, _ = press(t, a, "p")
	assert.Contains(t, a.View(), "Por cobrar")

	a, _ = press(t, a, "?")
	assert.Contains(t, a.View(), "Atajos de teclado")
}

func TestViewTooNarrow(t *testing.T) {
	a, _ := newTestApp(t, auth.RoleAdmin)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.True(t, strings.Contains(m.(App).View(), "demasiado angosta"))
}

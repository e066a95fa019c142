// Package tui provides the interactive Bubble Tea dashboard for harmony.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/tui/components"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

// Deps are the collaborators the dashboard reads and drives.
type Deps struct {
	Manager   *clients.Manager
	Ledger    *ledger.Ledger
	Session   auth.Session
	Remote    bool
	NeedSetup bool
	Config    config.Config
}

// SyncedMsg is sent when a remote sync finishes.
type SyncedMsg struct {
	Count int
	Err   error
}

// LedgerMsg carries the business ledger for the current user.
type LedgerMsg struct {
	Entries []model.BusinessExpense
	Err     error
}

// actionMsg reports the result of a confirmed destructive action.
type actionMsg struct {
	flash string
	err   error
}

const (
	tabObras = iota
	tabPagos
	tabHistorial
	tabCaja
)

// listState is the cursor and search state of a list tab.
type listState struct {
	cursor    int
	offset    int
	searching bool
	input     textinput.Model
	query     string
}

type confirmState struct {
	prompt string
	run    tea.Cmd
}

// App is the root Bubble Tea model.
type App struct {
	deps Deps

	active    []model.Client
	history   []model.Client
	portfolio finance.PortfolioStats
	entries   []model.BusinessExpense

	width     int
	height    int
	activeTab int
	showHelp  bool

	obras   listState
	hist    listState
	caja    listState
	confirm *confirmState

	syncing bool
	spinner spinner.Model
	flash   string

	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	syncTimeout      = 30 * time.Second
)

// NewApp creates the dashboard model. With a remote endpoint configured the
// first sync starts immediately.
func NewApp(deps Deps) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		deps:      deps,
		spinner:   sp,
		syncing:   deps.Remote,
		needSetup: deps.NeedSetup,
	}
	if a.needSetup {
		a.setupVals = SetupValuesFrom(deps.Config)
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	a.reload()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadLedgerCmd(a.deps.Ledger),
	}
	if a.syncing {
		cmds = append(cmds, syncCmd(a.deps.Manager), a.spinner.Tick)
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) reload() {
	a.active = a.deps.Manager.Active()
	a.history = a.deps.Manager.History()
	a.portfolio = a.deps.Manager.Portfolio()
	a.obras.clamp(len(a.visibleActive()))
	a.hist.clamp(len(a.visibleHistory()))
	a.caja.clamp(len(a.entries))
}

func (l *listState) clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (a App) visibleActive() []model.Client {
	return clients.Search(a.active, a.obras.query)
}

func (a App) visibleHistory() []model.Client {
	return clients.Search(a.history, a.hist.query)
}

// currentList returns the list state and length of the focused tab, or nil
// when the tab has no cursor.
func (a *App) currentList() (*listState, int) {
	switch a.activeTab {
	case tabObras:
		return &a.obras, len(a.visibleActive())
	case tabHistorial:
		return &a.hist, len(a.visibleHistory())
	case tabCaja:
		return &a.caja, len(a.entries)
	}
	return nil, 0
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case SyncedMsg:
		a.syncing = false
		if msg.Err != nil {
			a.flash = "Sincronización fallida: se conservan los datos locales"
		} else {
			a.flash = fmt.Sprintf("Sincronizado: %d obras", msg.Count)
		}
		a.reload()
		return a, nil

	case LedgerMsg:
		if msg.Err != nil {
			a.flash = "No se pudo leer la caja de empresa"
			return a, nil
		}
		a.entries = msg.Entries
		a.caja.clamp(len(a.entries))
		return a, nil

	case actionMsg:
		if msg.err != nil {
			a.flash = "Error: " + msg.err.Error()
		} else {
			a.flash = msg.flash
		}
		a.reload()
		return a, nil

	case spinner.TickMsg:
		if a.syncing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if l, _ := a.currentList(); l != nil && l.searching {
		return a.updateSearch(msg)
	}

	if a.confirm != nil {
		c := a.confirm
		a.confirm = nil
		switch key {
		case "s", "y", "enter":
			return a, c.run
		}
		a.flash = "Cancelado"
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.flash = ""
	switch key {
	case "q":
		return a, tea.Quit
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "g":
		if l, _ := a.currentList(); l != nil {
			l.cursor = 0
		}
		return a, nil
	case "G":
		if l, n := a.currentList(); l != nil {
			l.cursor = max(n-1, 0)
		}
		return a, nil
	case "/":
		l, _ := a.currentList()
		if l == nil || a.activeTab == tabCaja {
			return a, nil
		}
		l.searching = true
		l.input = newSearchInput(l.query)
		l.input.Focus()
		return a, textinput.Blink
	case "esc":
		if l, _ := a.currentList(); l != nil && l.query != "" {
			l.query = ""
			l.cursor = 0
			l.offset = 0
		}
		return a, nil
	case "r":
		return a.startSync()
	case "enter":
		if a.activeTab == tabObras {
			if c, ok := a.cursorClient(); ok {
				a.deps.Manager.Select(c.ID)
				a.flash = "Seleccionada: " + c.Name
			}
		}
		return a, nil
	case "a":
		return a.askArchive()
	case "x":
		return a.askDeleteHistory()
	}

	if tab := components.TabByKey(key); tab >= 0 {
		a.activeTab = tab
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	l, n := a.currentList()
	if l == nil || l.searching {
		return
	}
	l.cursor += delta
	l.clamp(n)
}

func (a App) cursorClient() (model.Client, bool) {
	list := a.visibleActive()
	if a.obras.cursor < len(list) {
		return list[a.obras.cursor], true
	}
	return model.Client{}, false
}

func (a App) cursorArchived() (model.Client, bool) {
	list := a.visibleHistory()
	if a.hist.cursor < len(list) {
		return list[a.hist.cursor], true
	}
	return model.Client{}, false
}

func (a App) startSync() (tea.Model, tea.Cmd) {
	if !a.deps.Remote {
		a.flash = "Modo local: no hay URL remota configurada"
		return a, nil
	}
	if a.syncing {
		return a, nil
	}
	a.syncing = true
	return a, tea.Batch(syncCmd(a.deps.Manager), a.spinner.Tick)
}

func (a App) askArchive() (tea.Model, tea.Cmd) {
	if a.activeTab != tabObras {
		return a, nil
	}
	if err := a.deps.Session.RequireAdmin(); err != nil {
		a.flash = "Solo un administrador puede finalizar obras"
		return a, nil
	}
	c, ok := a.cursorClient()
	if !ok {
		return a, nil
	}
	a.confirm = &confirmState{
		prompt: fmt.Sprintf("¿Finalizar la obra de %s? (s/n)", c.Name),
		run:    archiveCmd(a.deps.Manager, c.ID),
	}
	return a, nil
}

func (a App) askDeleteHistory() (tea.Model, tea.Cmd) {
	if a.activeTab != tabHistorial {
		return a, nil
	}
	if err := a.deps.Session.RequireAdmin(); err != nil {
		a.flash = "Solo un administrador puede borrar del historial"
		return a, nil
	}
	c, ok := a.cursorArchived()
	if !ok {
		return a, nil
	}
	a.confirm = &confirmState{
		prompt: fmt.Sprintf("¿Eliminar a %s del historial? (s/n)", c.Name),
		run:    deleteHistoryCmd(a.deps.Manager, c.ID),
	}
	return a, nil
}

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Buscar por cliente o descripción"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l, _ := a.currentList()
	switch msg.String() {
	case "enter":
		l.query = strings.TrimSpace(l.input.Value())
		l.searching = false
		l.cursor = 0
		l.offset = 0
		return a, nil
	case "esc":
		l.searching = false
		return a, nil
	}
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := a.deps.Config
		a.setupVals.Apply(&cfg)
		if err := config.Save(cfg); err != nil {
			a.flash = "No se pudo guardar la configuración"
		}
		theme.SetActive(cfg.Appearance.Theme)
		a.deps.Config = cfg
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal demasiado angosta (%d columnas)\n\n  harmony necesita al menos %d columnas.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navegación", [][2]string{
			{"o p h c", "Ir a pestaña"},
			{"← →", "Pestaña anterior / siguiente"},
			{"j k", "Mover en la lista"},
			{"g G", "Inicio / final"},
		}},
		{"Acciones", [][2]string{
			{"/", "Buscar"},
			{"Enter", "Seleccionar obra"},
			{"a", "Finalizar obra (admin)"},
			{"x", "Borrar del historial (admin)"},
			{"r", "Sincronizar con el remoto"},
			{"Esc", "Limpiar búsqueda"},
			{"?", "Ayuda"},
			{"q", "Salir"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Atajos de teclado"))
	b.WriteString("\n\n")
	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind[0])),
				descStyle.Render(bind[1]))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Pulsa cualquier tecla para cerrar"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	sub := titleStyle.Render(" HARMONY GLASS") + subStyle.Render(" · Control de obras")
	if l, _ := a.currentList(); l != nil && l.query != "" {
		sub += subStyle.Render("  │ ") + pillStyle.Render("“"+l.query+"”")
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(sub)

	info := components.StatusInfo{
		User:   a.deps.Session.Username,
		Role:   string(a.deps.Session.Role),
		Remote: a.deps.Remote,
		Flash:  a.flash,
	}
	if a.syncing {
		info.Syncing = a.spinner.View()
	}
	if a.confirm != nil {
		info.Flash = a.confirm.prompt
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabObras:
		content = a.renderObrasTab(cw, contentH)
	case tabPagos:
		content = a.renderPagosTab(cw)
	case tabHistorial:
		content = a.renderHistorialTab(cw, contentH)
	case tabCaja:
		content = a.renderCajaTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func syncCmd(m *clients.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		n, err := m.Sync(ctx)
		return SyncedMsg{Count: n, Err: err}
	}
}

func archiveCmd(m *clients.Manager, id int64) tea.Cmd {
	return func() tea.Msg {
		err := m.Archive(context.Background(), id)
		return actionMsg{flash: "Obra finalizada y movida al historial", err: err}
	}
}

func deleteHistoryCmd(m *clients.Manager, id int64) tea.Cmd {
	return func() tea.Msg {
		err := m.DeleteFromHistory(context.Background(), id)
		return actionMsg{flash: "Registro eliminado del historial", err: err}
	}
}

func loadLedgerCmd(l *ledger.Ledger) tea.Cmd {
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := l.List(context.Background())
		return LedgerMsg{Entries: entries, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same widths RenderTabBar uses.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

// scrollWindow keeps cursor inside a window of visible rows.
func scrollWindow(cursor, offset, visible int) int {
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visible {
		return cursor - visible + 1
	}
	return offset
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/technician/internal/config"
	"github.com/five82/technician/internal/espm"
	"github.com/five82/technician/internal/prefs"
	"github.com/five82/technician/internal/state"
)

// screen is the active top-level screen.
type screen int

const (
	screenList screen = iota
	screenDetail
)

// Container is the data provider the screens read and write through.
type Container interface {
	Products(ctx context.Context) ([]espm.Product, error)
	UpdateProduct(ctx context.Context, product espm.Product) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Container Container
	Store     *state.Store
	Config    *config.Config
	Logger    zerolog.Logger
	PollTick  time.Duration
	ThemeName string
	ShowHelp  bool
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	container Container
	store     *state.Store
	prefsPath string
	pollTick  time.Duration
	timeout   time.Duration
	log       zerolog.Logger
	strings   Catalog

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
	ready    bool
	current  screen
	modal    Modal
	queued   []Modal // shown in order once modal is dismissed

	// Data state
	snapshot state.Snapshot
	kpi      kpiHeader

	products ProductList
	detail   detailView

	initCmd tea.Cmd
}

// New creates the root model and queues the first product load.
func New(opts Options) (Model, error) {
	if opts.Container == nil {
		return Model{}, errors.New("ui requires a data container")
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	var (
		entitySet espm.EntitySet
		timeout   time.Duration
		overrides map[string]string
	)
	if opts.Config != nil {
		entitySet = opts.Config.EntitySet
		timeout = opts.Config.LoadTimeout
		overrides = opts.Config.Strings
	}
	catalog := NewCatalog(overrides)

	products, err := NewProductList(opts.Container.Products, ListOptions{
		Context:   ctx,
		EntitySet: entitySet,
		Timeout:   timeout,
		Logger:    opts.Logger,
		Strings:   catalog,
	})
	if err != nil {
		return Model{}, fmt.Errorf("init product list: %w", err)
	}

	theme := GetTheme(opts.ThemeName)
	m := Model{
		ctx:       ctx,
		container: opts.Container,
		store:     opts.Store,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		timeout:   timeout,
		log:       opts.Logger,
		strings:   catalog,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		showHelp:  opts.ShowHelp,
		current:   screenList,
		kpi:       newKPIHeader(theme),
		products:  products,
	}
	m.initCmd = m.products.Init()
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initCmd, tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case openModalMsg:
		if m.modal != nil {
			m.queued = append(m.queued, msg.modal)
			return m, nil
		}
		m.modal = msg.modal
		return m, nil

	case NavigateMsg:
		m.detail = newDetailView(m.ctx, msg, m.container.UpdateProduct, m.timeout, m.log, m.strings)
		m.current = screenDetail
		return m, nil

	case closeDetailMsg:
		m.current = screenList
		return m, nil

	case productSavedMsg:
		return m, m.detail.Update(msg)

	case productsLoadedMsg, entitySetChangedMsg, spinner.TickMsg:
		return m, m.products.Update(msg)
	}

	if m.current == screenDetail {
		return m, m.detail.Update(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return m.strings.T(keyLoading)
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
			if len(m.queued) > 0 {
				m.modal = m.queued[0]
				m.queued = m.queued[1:]
			}
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	// Text entry owns the keyboard.
	if m.current == screenDetail && m.detail.Editing() {
		return m, m.detail.HandleKey(msg, m.keys)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.kpi.recolor(m.theme)
		m.savePrefs()
		return m, nil
	}

	if m.current == screenDetail {
		return m, m.detail.HandleKey(msg, m.keys)
	}
	return m, m.products.HandleKey(msg, m.keys)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, ShowHelp: m.showHelp}); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("could not save preferences")
	}
}

// renderMain renders header, content and footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := maxInt(m.height-lipgloss.Height(header)-lipgloss.Height(footer)-3, 1)
	contentWidth := maxInt(m.width-2, 10)

	var content, title string
	if m.current == screenDetail {
		title = string(m.detail.entitySet)
		content = m.detail.View(m.theme, contentWidth-2, contentHeight)
	} else {
		title = string(m.products.EntitySet())
		content = m.products.View(m.theme, contentWidth-2, contentHeight)
	}

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(contentWidth).
		Height(contentHeight).
		Render(content)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.theme.Styles().FaintText.Render(" " + title))
	b.WriteString("\n")
	b.WriteString(pane)
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err = tea.NewProgram(m, progOpts...).Run()
	return err
}

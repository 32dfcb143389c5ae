package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/technician/internal/espm"
)

// ErrRowOutOfRange is returned by RowAt for an index outside the list.
var ErrRowOutOfRange = errors.New("row index out of range")

// DefaultLoadTimeout bounds a single list load when none is configured.
const DefaultLoadTimeout = 30 * time.Second

// Loader fetches the full product collection. Each call returns exactly
// once with either the list or an error.
type Loader func(ctx context.Context) ([]espm.Product, error)

// ChangeNotifier is handed to screens that modify entities so the owning
// list can reload.
type ChangeNotifier interface {
	NotifyChanged() tea.Cmd
}

// Row is the rendered form of one product.
type Row struct {
	Key   string
	Value string
}

// NavigateMsg asks the root model to open the detail view.
type NavigateMsg struct {
	Product   espm.Product
	EntitySet espm.EntitySet
	Notifier  ChangeNotifier
}

type productsLoadedMsg struct {
	seq      int
	products []espm.Product
	err      error
}

type entitySetChangedMsg struct {
	set espm.EntitySet
}

// loadKind orders indicators by strength; a full-screen load beats a pull.
type loadKind int

const (
	loadNone loadKind = iota
	loadPull
	loadFull
)

// ListOptions configure a ProductList.
type ListOptions struct {
	Context   context.Context
	EntitySet espm.EntitySet
	Timeout   time.Duration
	Logger    zerolog.Logger
	Strings   Catalog
}

// ProductList owns the ordered product collection of one entity set and
// keeps it in sync with its loader. Loads are serialized: while one is in
// flight, further requests collapse into a single follow-up.
type ProductList struct {
	ctx       context.Context
	loader    Loader
	entitySet espm.EntitySet
	timeout   time.Duration
	log       zerolog.Logger
	strings   Catalog

	entities   []espm.Product
	selected   int
	loading    bool
	refreshing bool

	inFlight bool
	pending  loadKind
	seq      int

	spinner spinner.Model
}

// NewProductList builds an empty list bound to loader.
func NewProductList(loader Loader, opts ListOptions) (ProductList, error) {
	if loader == nil {
		return ProductList{}, fmt.Errorf("product list requires a loader")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	set := opts.EntitySet
	if set == "" {
		set = espm.EntitySetProducts
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ProductList{
		ctx:       ctx,
		loader:    loader,
		entitySet: set,
		timeout:   timeout,
		log:       opts.Logger.With().Str("component", "product_list").Str("entity_set", string(set)).Logger(),
		strings:   opts.Strings,
		entities:  []espm.Product{},
		spinner:   sp,
	}, nil
}

// Init starts the spinner and the first full load.
func (l *ProductList) Init() tea.Cmd {
	return tea.Batch(l.spinner.Tick, l.Refresh())
}

// Refresh reloads the list behind the full-screen loading indicator.
func (l *ProductList) Refresh() tea.Cmd {
	return l.request(loadFull)
}

// PullToRefresh reloads the list showing only the inline refresh spinner.
func (l *ProductList) PullToRefresh() tea.Cmd {
	return l.request(loadPull)
}

// NotifyChanged reports that entities of this list's set changed elsewhere.
// The returned command makes the list reload exactly as Refresh does.
func (l ProductList) NotifyChanged() tea.Cmd {
	set := l.entitySet
	return func() tea.Msg {
		return entitySetChangedMsg{set: set}
	}
}

func (l *ProductList) request(kind loadKind) tea.Cmd {
	switch kind {
	case loadFull:
		l.loading = true
	case loadPull:
		l.refreshing = true
	}
	if l.inFlight {
		if kind > l.pending {
			l.pending = kind
		}
		return nil
	}
	return l.start()
}

func (l *ProductList) start() tea.Cmd {
	l.inFlight = true
	l.seq++
	seq := l.seq
	ctx, loader, timeout := l.ctx, l.loader, l.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		products, err := loader(ctx)
		if err != nil {
			return productsLoadedMsg{seq: seq, err: err}
		}
		return productsLoadedMsg{seq: seq, products: products}
	}
}

// Update handles the list's own messages. Key handling lives in HandleKey.
func (l *ProductList) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		return l.finish(msg)
	case entitySetChangedMsg:
		if msg.set != "" && msg.set != l.entitySet {
			return nil
		}
		return l.Refresh()
	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (l *ProductList) finish(msg productsLoadedMsg) tea.Cmd {
	if msg.seq != l.seq {
		return nil
	}
	l.inFlight = false

	var cmds []tea.Cmd
	if msg.err != nil {
		l.log.Error().Err(msg.err).Msg("could not update table")
		cmds = append(cmds, openModal(newErrorDialog(
			l.strings.T(keyErrorLoadingData),
			msg.err.Error(),
			l.strings.T(keyOkButtonTitle),
		)))
	} else {
		l.replace(msg.products)
		l.log.Info().Int("rows", len(l.entities)).Msg("table updated successfully")
	}

	l.loading = false
	l.refreshing = false
	if next := l.pending; next != loadNone {
		l.pending = loadNone
		cmds = append(cmds, l.request(next))
	}
	return tea.Batch(cmds...)
}

// replace swaps in a new list, keeping the cursor on the same product
// when it is still present.
func (l *ProductList) replace(products []espm.Product) {
	var selectedID string
	if p, ok := l.current(); ok {
		selectedID = p.ProductID
	}

	l.entities = make([]espm.Product, len(products))
	copy(l.entities, products)

	if len(l.entities) == 0 {
		l.selected = 0
		return
	}
	if selectedID != "" {
		for i, p := range l.entities {
			if p.ProductID == selectedID {
				l.selected = i
				return
			}
		}
	}
	if l.selected >= len(l.entities) {
		l.selected = len(l.entities) - 1
	}
}

// RowCount returns the number of products.
func (l ProductList) RowCount() int {
	return len(l.entities)
}

// RowAt renders the product at index i.
func (l ProductList) RowAt(i int) (Row, error) {
	if i < 0 || i >= len(l.entities) {
		return Row{}, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, i, len(l.entities))
	}
	p := l.entities[i]
	return Row{Key: p.ProductID, Value: p.DisplayName()}, nil
}

// Select builds the navigation request for the product at index i.
func (l ProductList) Select(i int) (NavigateMsg, error) {
	if i < 0 || i >= len(l.entities) {
		return NavigateMsg{}, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, i, len(l.entities))
	}
	return NavigateMsg{
		Product:   l.entities[i],
		EntitySet: l.entitySet,
		Notifier:  l,
	}, nil
}

// Entities returns a copy of the current list.
func (l ProductList) Entities() []espm.Product {
	out := make([]espm.Product, len(l.entities))
	copy(out, l.entities)
	return out
}

// Loading reports whether the full-screen indicator is shown.
func (l ProductList) Loading() bool { return l.loading }

// Refreshing reports whether the pull-to-refresh spinner is shown.
func (l ProductList) Refreshing() bool { return l.refreshing }

// EntitySet returns the query scope this list represents.
func (l ProductList) EntitySet() espm.EntitySet { return l.entitySet }

// Selected returns the cursor position.
func (l ProductList) Selected() int { return l.selected }

func (l ProductList) current() (espm.Product, bool) {
	if l.selected < 0 || l.selected >= len(l.entities) {
		return espm.Product{}, false
	}
	return l.entities[l.selected], true
}

// HandleKey moves the cursor, refreshes, or selects.
func (l *ProductList) HandleKey(msg tea.KeyMsg, keys keyMap) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		if l.selected > 0 {
			l.selected--
		}
	case key.Matches(msg, keys.Down):
		if l.selected < len(l.entities)-1 {
			l.selected++
		}
	case key.Matches(msg, keys.Top):
		l.selected = 0
	case key.Matches(msg, keys.Bottom):
		if len(l.entities) > 0 {
			l.selected = len(l.entities) - 1
		}
	case key.Matches(msg, keys.Refresh):
		return l.PullToRefresh()
	case key.Matches(msg, keys.Select):
		nav, err := l.Select(l.selected)
		if err != nil {
			return nil
		}
		return func() tea.Msg { return nav }
	}
	return nil
}

// View renders the table into the given box.
func (l ProductList) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	if l.loading {
		msg := l.spinner.View() + " " + l.strings.T(keyLoading)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.WarningText.Render(msg))
	}

	var b strings.Builder
	if l.refreshing {
		b.WriteString(styles.AccentText.Render(l.spinner.View() + " " + l.strings.T(keyRefreshing)))
	} else {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%s (%d)", l.entitySet, len(l.entities))))
	}
	b.WriteString("\n")

	if len(l.entities) == 0 {
		empty := styles.MutedText.Render(l.strings.T(keyNoProducts))
		b.WriteString(lipgloss.Place(width, maxInt(height-1, 1), lipgloss.Center, lipgloss.Center, empty))
		return b.String()
	}

	keyWidth := 12
	valueWidth := maxInt(width-keyWidth-4, 8)

	visible := maxInt(height-1, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.entities) {
		end = len(l.entities)
	}

	for i := start; i < end; i++ {
		row, _ := l.RowAt(i)
		line := " " + padRight(truncate(row.Key, keyWidth), keyWidth) + "  " + truncate(row.Value, valueWidth)
		line = padRight(line, width)
		if i == l.selected {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

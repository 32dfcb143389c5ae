package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/five82/technician/internal/config"
	"github.com/five82/technician/internal/espm"
	"github.com/five82/technician/internal/prefs"
	"github.com/five82/technician/internal/state"
)

type fakeContainer struct {
	mu        sync.Mutex
	products  []espm.Product
	loads     int
	updated   []espm.Product
	updateErr error
}

func (f *fakeContainer) Products(context.Context) ([]espm.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	out := make([]espm.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeContainer) UpdateProduct(_ context.Context, p espm.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, p)
	for i := range f.products {
		if f.products[i].ProductID == p.ProductID {
			f.products[i] = p
		}
	}
	return nil
}

func (f *fakeContainer) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func containsPlain(s, sub string) bool {
	return strings.Contains(ansi.Strip(s), sub)
}

func newTestModel(t *testing.T, fc *fakeContainer) Model {
	t.Helper()
	m, err := New(Options{
		Container: fc,
		Store:     &state.Store{},
		Config:    &config.Config{EntitySet: espm.EntitySetProducts},
		Logger:    zerolog.Nop(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = drive(t, m, m.initCmd)
	return m
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

// drive runs cmd and feeds the internal messages it produces back into m.
// Timers and key input are returned untouched.
func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	var rest []tea.Msg
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case productsLoadedMsg, entitySetChangedMsg, openModalMsg, NavigateMsg, closeDetailMsg, productSavedMsg:
			var next tea.Cmd
			m, next = step(t, m, msg)
			var more []tea.Msg
			m, more = drive(t, m, next)
			rest = append(rest, more...)
		default:
			rest = append(rest, msg)
		}
	}
	return m, rest
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return step(t, m, msg)
}

func TestNew_RequiresContainer(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("New without container returned nil error")
	}
}

func TestModel_InitialLoadPopulatesList(t *testing.T) {
	fc := &fakeContainer{products: []espm.Product{product("HT-1000", "Notebook Basic 15")}}
	m := newTestModel(t, fc)

	if m.products.RowCount() != 1 || fc.Loads() != 1 {
		t.Fatalf("rows %d loads %d, want 1/1", m.products.RowCount(), fc.Loads())
	}
	view := m.View()
	if !containsPlain(view, "HT-1000") || !containsPlain(view, "Notebook Basic 15") {
		t.Fatalf("view missing product row:\n%s", ansi.Strip(view))
	}
	if !containsPlain(view, "Completed sales orders") {
		t.Fatalf("view missing KPI header")
	}
}

func TestModel_EditNameSavesAndReloadsList(t *testing.T) {
	fc := &fakeContainer{products: []espm.Product{product("HT-1000", "Notebook")}}
	m := newTestModel(t, fc)

	m, cmd := press(t, m, "enter")
	m, _ = drive(t, m, cmd)
	if m.current != screenDetail {
		t.Fatalf("enter did not open the detail view")
	}

	m, _ = press(t, m, "e")
	if !m.detail.Editing() {
		t.Fatalf("e did not start editing")
	}
	m, _ = press(t, m, "X")
	// q is text while editing.
	m, _ = press(t, m, "q")
	if m.current != screenDetail || !m.detail.Editing() {
		t.Fatalf("q left the editor")
	}

	m, cmd = press(t, m, "enter")
	m, _ = drive(t, m, cmd)

	if len(fc.updated) != 1 || fc.updated[0].Name != "NotebookXq" {
		t.Fatalf("updated = %+v, want name NotebookXq", fc.updated)
	}
	if m.current != screenList {
		t.Fatalf("save did not return to the list")
	}
	if fc.Loads() != 2 {
		t.Fatalf("loads = %d, want reload after save", fc.Loads())
	}
	row, err := m.products.RowAt(0)
	if err != nil || row.Value != "NotebookXq" {
		t.Fatalf("RowAt(0) = %+v, %v; want refreshed name", row, err)
	}
}

func TestModel_SaveFailureShowsDialog(t *testing.T) {
	fc := &fakeContainer{
		products:  []espm.Product{product("HT-1000", "Notebook")},
		updateErr: errors.New("rejected"),
	}
	m := newTestModel(t, fc)

	m, cmd := press(t, m, "enter")
	m, _ = drive(t, m, cmd)
	m, _ = press(t, m, "e")
	m, cmd = press(t, m, "enter")
	m, _ = drive(t, m, cmd)

	d, ok := m.modal.(errorDialog)
	if !ok {
		t.Fatalf("modal = %#v, want errorDialog", m.modal)
	}
	if d.title != "Saving data failed!" || d.message != "rejected" {
		t.Fatalf("dialog = %+v", d)
	}
	if m.current != screenDetail {
		t.Fatalf("failed save left the detail view")
	}
}

func TestModel_InvalidPriceIsRejected(t *testing.T) {
	fc := &fakeContainer{products: []espm.Product{product("HT-1000", "Notebook")}}
	m := newTestModel(t, fc)

	m, cmd := press(t, m, "enter")
	m, _ = drive(t, m, cmd)
	m, _ = press(t, m, "p")
	m, _ = press(t, m, "abc")
	m, cmd = press(t, m, "enter")
	m, _ = drive(t, m, cmd)

	if len(fc.updated) != 0 {
		t.Fatalf("invalid price was saved: %+v", fc.updated)
	}
	if _, ok := m.modal.(errorDialog); !ok {
		t.Fatalf("modal = %#v, want errorDialog", m.modal)
	}
}

func TestModel_ModalSwallowsKeysUntilDismissed(t *testing.T) {
	fc := &fakeContainer{}
	m := newTestModel(t, fc)
	m, _ = step(t, m, openModalMsg{modal: newErrorDialog("Loading data failed!", "boom", "OK")})

	if view := m.View(); !containsPlain(view, "boom") || !containsPlain(view, "OK") {
		t.Fatalf("dialog view = %q", ansi.Strip(view))
	}

	m, cmd := press(t, m, "q")
	if cmd != nil || m.modal == nil {
		t.Fatalf("q should be swallowed while a dialog is open")
	}
	m, _ = press(t, m, "enter")
	if m.modal != nil {
		t.Fatalf("enter did not dismiss the dialog")
	}
}

func TestModel_SecondDialogWaitsForFirst(t *testing.T) {
	fc := &fakeContainer{}
	m := newTestModel(t, fc)
	m, _ = step(t, m, openModalMsg{modal: newErrorDialog("Saving data failed!", "save boom", "OK")})
	m, _ = step(t, m, openModalMsg{modal: newErrorDialog("Loading data failed!", "load boom", "OK")})

	if view := m.View(); !containsPlain(view, "save boom") {
		t.Fatalf("first dialog replaced: %q", ansi.Strip(view))
	}

	m, _ = press(t, m, "enter")
	if view := m.View(); m.modal == nil || !containsPlain(view, "load boom") {
		t.Fatalf("queued dialog not shown after dismiss: %q", ansi.Strip(view))
	}

	m, _ = press(t, m, "enter")
	if m.modal != nil || len(m.queued) != 0 {
		t.Fatalf("dialogs left open after dismissing both")
	}
}

func TestModel_EscReturnsToList(t *testing.T) {
	fc := &fakeContainer{products: []espm.Product{product("HT-1000", "Notebook")}}
	m := newTestModel(t, fc)

	m, cmd := press(t, m, "enter")
	m, _ = drive(t, m, cmd)
	m, cmd = press(t, m, "esc")
	m, _ = drive(t, m, cmd)

	if m.current != screenList {
		t.Fatalf("esc did not return to the list")
	}
	if len(fc.updated) != 0 {
		t.Fatalf("esc saved the product")
	}
}

func TestModel_CycleThemePersists(t *testing.T) {
	fc := &fakeContainer{}
	m := newTestModel(t, fc)

	m, _ = press(t, m, "T")
	if m.theme.Name != "Nightfox" {
		t.Fatalf("theme = %q, want Nightfox", m.theme.Name)
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Theme != "Nightfox" {
		t.Fatalf("saved theme = %q, want Nightfox", p.Theme)
	}
}

func TestModel_SnapshotFeedsKPIHeader(t *testing.T) {
	fc := &fakeContainer{}
	m := newTestModel(t, fc)

	if view := m.renderHeader(); !containsPlain(view, "–") {
		t.Fatalf("empty KPI should render a dash: %q", ansi.Strip(view))
	}

	var store state.Store
	kpi := state.KPI{Completed: 3, Total: 10}
	store.Update(&kpi, true, nil)
	m, _ = step(t, m, snapshotMsg(store.Snapshot()))

	view := m.renderHeader()
	if !containsPlain(view, "3/10") || !containsPlain(view, "OFFLINE") {
		t.Fatalf("header = %q, want 3/10 and offline badge", ansi.Strip(view))
	}
}

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/five82/technician/internal/espm"
)

// Saver persists an edited product.
type Saver func(ctx context.Context, product espm.Product) error

type editField int

const (
	editNone editField = iota
	editName
	editPrice
)

type productSavedMsg struct {
	product espm.Product
	err     error
}

// closeDetailMsg returns the root model to the list.
type closeDetailMsg struct{}

func closeDetail() tea.Msg { return closeDetailMsg{} }

// detailView shows one product and edits its name and price.
type detailView struct {
	ctx     context.Context
	save    Saver
	timeout time.Duration
	log     zerolog.Logger
	strings Catalog

	product   espm.Product
	entitySet espm.EntitySet
	notifier  ChangeNotifier

	editing editField
	input   textinput.Model
	saving  bool
}

func newDetailView(ctx context.Context, nav NavigateMsg, save Saver, timeout time.Duration, log zerolog.Logger, strs Catalog) detailView {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	input := textinput.New()
	input.CharLimit = 120

	return detailView{
		ctx:       ctx,
		save:      save,
		timeout:   timeout,
		log:       log.With().Str("component", "detail").Str("product_id", nav.Product.ProductID).Logger(),
		strings:   strs,
		product:   nav.Product,
		entitySet: nav.EntitySet,
		notifier:  nav.Notifier,
		input:     input,
	}
}

// Editing reports whether a text field has focus.
func (d detailView) Editing() bool { return d.editing != editNone }

func (d *detailView) HandleKey(msg tea.KeyMsg, keys keyMap) tea.Cmd {
	if d.saving {
		return nil
	}

	if d.editing != editNone {
		switch {
		case key.Matches(msg, keys.Back):
			d.stopEditing()
			return nil
		case key.Matches(msg, keys.Save):
			return d.commit()
		}
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.EditName):
		return d.startEditing(editName, d.product.Name)
	case key.Matches(msg, keys.EditPrice):
		return d.startEditing(editPrice, d.product.Price.StringFixed(2))
	case key.Matches(msg, keys.Back):
		return closeDetail
	}
	return nil
}

func (d *detailView) startEditing(field editField, value string) tea.Cmd {
	d.editing = field
	d.input.SetValue(value)
	d.input.CursorEnd()
	return d.input.Focus()
}

func (d *detailView) stopEditing() {
	d.editing = editNone
	d.input.Blur()
	d.input.Reset()
}

// commit applies the edited field and saves the product.
func (d *detailView) commit() tea.Cmd {
	updated := d.product
	value := strings.TrimSpace(d.input.Value())

	switch d.editing {
	case editName:
		updated.Name = value
	case editPrice:
		price, err := decimal.NewFromString(value)
		if err != nil || price.IsNegative() {
			return openModal(newErrorDialog(
				d.strings.T(keyErrorSavingData),
				fmt.Sprintf("invalid price %q", value),
				d.strings.T(keyOkButtonTitle),
			))
		}
		updated.Price = price
	}
	d.stopEditing()

	if d.save == nil {
		return nil
	}
	d.saving = true
	ctx, save, timeout := d.ctx, d.save, d.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return productSavedMsg{product: updated, err: save(ctx, updated)}
	}
}

func (d *detailView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case productSavedMsg:
		d.saving = false
		if msg.err != nil {
			d.log.Error().Err(msg.err).Msg("could not save product")
			return openModal(newErrorDialog(
				d.strings.T(keyErrorSavingData),
				msg.err.Error(),
				d.strings.T(keyOkButtonTitle),
			))
		}
		d.product = msg.product
		d.log.Info().Msg("product saved")
		if d.notifier == nil {
			return closeDetail
		}
		return tea.Batch(d.notifier.NotifyChanged(), closeDetail)
	}

	if d.editing != editNone {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return cmd
	}
	return nil
}

func (d detailView) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	p := d.product

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(p.ProductID))
	if d.saving {
		b.WriteString("  ")
		b.WriteString(styles.WarningText.Render(d.strings.T(keySaving)))
	}
	b.WriteString("\n\n")

	labelWidth := 14
	field := func(label, value string, editing bool) {
		b.WriteString(styles.MutedText.Render(padRight(label, labelWidth)))
		if editing {
			b.WriteString(d.input.View())
		} else {
			b.WriteString(styles.Text.Render(truncate(value, maxInt(width-labelWidth-2, 8))))
		}
		b.WriteString("\n")
	}

	field("Name", p.Name, d.editing == editName)
	field("Description", p.ShortDescription, false)
	field("Category", p.CategoryName, false)
	field("Price", p.FormattedPrice(), d.editing == editPrice)
	if dims := p.Dimensions(); dims != "" {
		field("Dimensions", dims, false)
	}
	if !p.Weight.IsZero() {
		field("Weight", strings.TrimSpace(p.Weight.String()+" "+p.WeightUnit), false)
	}
	if !p.UpdatedTimestamp.IsZero() {
		field("Updated", p.UpdatedTimestamp.Local().Format("2006-01-02 15:04"), false)
	}
	field("Entity set", string(d.entitySet), false)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

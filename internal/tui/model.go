// Package tui is the terminal browser of one entity screen. It drives a
// listview.View with the same paging, filtering, sorting and deletion
// semantics as the web UI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/pkg/botapi"
)

const maxColumnWidth = 32

// fetchedMsg reports the end of a call that may have reloaded the view.
type fetchedMsg struct {
	op  string
	id  string
	err error
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx   context.Context
	view  listview.View
	title string

	table   table.Model
	filter  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	styles  styles

	ids       []string
	filtering bool
	confirm   string // row id awaiting delete confirmation
	pending   int
	status    string
	err       error
	fatal     bool
	width     int
}

// New returns a browser over view. Calls to the bot API use ctx, which
// carries the operator credentials.
func New(ctx context.Context, view listview.View, title string) Model {
	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "filter"
	fi.CharLimit = 64
	fi.Cursor.SetMode(cursor.CursorStatic)

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		ctx:     ctx,
		view:    view,
		title:   title,
		table:   t,
		filter:  fi,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    defaultKeys(),
		styles:  defaultStyles(),
	}
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error {
	if m.fatal {
		return m.err
	}
	return nil
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.fetch("load", "", func(ctx context.Context) error {
		return m.view.Load(ctx, 1)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchedMsg:
		return m.fetched(msg)

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		if m.confirm != "" {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.view.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		if !snap.HasNext() {
			return m, nil
		}
		n := snap.NextPage()
		return m.withFetch("page", "", func(ctx context.Context) error { return m.view.SetPage(ctx, n) })

	case key.Matches(msg, m.keys.Prev):
		if !snap.HasPrev() {
			return m, nil
		}
		n := snap.PrevPage()
		return m.withFetch("page", "", func(ctx context.Context) error { return m.view.SetPage(ctx, n) })

	case key.Matches(msg, m.keys.Refresh):
		return m.withFetch("refresh", "", m.view.Refresh)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(snap.FilterText)
		m.table.Blur()
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Sort):
		m.setSort(nextSortKey(snap), false)
		return m, nil

	case key.Matches(msg, m.keys.Reverse):
		if snap.SortKey != "" {
			m.setSort(snap.SortKey, !snap.SortDesc)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if !snap.Deletable {
			m.status = "this screen does not support delete"
			return m, nil
		}
		if id := m.selectedID(); id != "" {
			m.confirm = id
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.table.Focus()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		m.table.Focus()
		m.view.SetFilterText("")
		m.sync()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.view.SetFilterText(m.filter.Value())
	m.sync()
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirm
	m.confirm = ""
	if msg.String() != "y" {
		m.status = "delete cancelled"
		return m, nil
	}
	return m.withFetch("delete", id, func(ctx context.Context) error {
		return m.view.DeleteRow(ctx, id)
	})
}

func (m *Model) setSort(key string, desc bool) {
	if err := m.view.SetSort(key, desc); err != nil {
		m.err = err
		return
	}
	m.sync()
}

// nextSortKey cycles through the sortable columns, then back to server order.
func nextSortKey(s listview.Snapshot) string {
	var keys []string
	for _, c := range s.Columns {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	if s.SortKey == "" {
		return keys[0]
	}
	for i, k := range keys {
		if k == s.SortKey && i+1 < len(keys) {
			return keys[i+1]
		}
	}
	return ""
}

func (m Model) fetch(op, id string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return fetchedMsg{op: op, id: id, err: fn(ctx)}
	}
}

func (m Model) withFetch(op, id string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	m.pending++
	m.status = ""
	return m, tea.Batch(m.fetch(op, id, fn), m.spinner.Tick)
}

func (m Model) fetched(msg fetchedMsg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	err := msg.err
	switch {
	case errors.Is(err, listview.ErrSuperseded):
		return m, nil
	case errors.Is(err, botapi.ErrNotAuthenticated), botapi.IsUnauthorized(err):
		m.err = err
		m.fatal = true
		return m, tea.Quit
	case err != nil:
		m.err = err
	default:
		m.err = nil
		if msg.op == "delete" {
			m.status = fmt.Sprintf("deleted %s", msg.id)
		}
	}
	m.sync()
	return m, nil
}

// sync copies the view snapshot into the table.
func (m *Model) sync() {
	snap := m.view.Snapshot()

	widths := make([]int, len(snap.Columns))
	for i, c := range snap.Columns {
		widths[i] = runewidth.StringWidth(c.Title) + 2
	}
	rows := make([]table.Row, len(snap.Rows))
	m.ids = m.ids[:0]
	for i, r := range snap.Rows {
		rows[i] = table.Row(r.Cells)
		m.ids = append(m.ids, r.ID)
		for j, cell := range r.Cells {
			if j < len(widths) {
				widths[j] = max(widths[j], min(runewidth.StringWidth(cell), maxColumnWidth))
			}
		}
	}

	cols := make([]table.Column, len(snap.Columns))
	for i, c := range snap.Columns {
		title := c.Title
		if c.Key == snap.SortKey {
			title += sortArrow(snap.SortDesc)
		}
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}

	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) selectedID() string {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.ids) {
		return ""
	}
	return m.ids[c]
}

func sortArrow(desc bool) string {
	if desc {
		return " ▼"
	}
	return " ▲"
}

// View renders the browser.
func (m Model) View() string {
	snap := m.view.Snapshot()
	var b strings.Builder

	header := m.styles.Title.Render(m.title)
	pos := fmt.Sprintf("page %d of %d", snap.PageNumber, snap.TotalPages)
	if m.pending > 0 {
		pos = m.spinner.View() + " " + pos
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, header, m.styles.Status.Render(pos)))
	b.WriteString("\n")

	switch {
	case m.filtering:
		b.WriteString(m.filter.View())
	case snap.FilterText != "":
		b.WriteString(m.styles.Status.Render(fmt.Sprintf("%s contains %q: %d of %d rows", snap.FilterColumn, snap.FilterText, len(snap.Rows), snap.Loaded)))
	}
	b.WriteString("\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	switch {
	case m.confirm != "":
		b.WriteString(m.styles.Prompt.Render(fmt.Sprintf("Delete %s? (y/n)", m.confirm)))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(m.styles.Status.Render(m.status))
	}

	b.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

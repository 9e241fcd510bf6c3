package tui

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/internal/logging"
	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

type group struct {
	ID   int64
	Name string
}

type fakeGroups struct {
	mu        sync.Mutex
	pages     map[int][]group
	calls     []int
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeGroups) List(_ context.Context, n, _ int) (*model.Page[group], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, n)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Page[group]{Data: f.pages[n], TotalPages: len(f.pages)}, nil
}

func (f *fakeGroups) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestModel(t *testing.T, src *fakeGroups) Model {
	t.Helper()
	view := listview.New(listview.Options[group]{
		Screen:  "groups",
		Source:  src,
		Deleter: src,
		Columns: []listview.Column[group]{
			listview.Int("id", "ID", func(g group) int64 { return g.ID }),
			listview.Text("name", "Name", func(g group) string { return g.Name }),
		},
		RowID:        func(g group) string { return strconv.FormatInt(g.ID, 10) },
		FilterColumn: "name",
		Logger:       logging.Discard(),
	})
	m := New(context.Background(), view, "Groups")
	return drain(t, m, m.Init())
}

// drain runs cmd and feeds fetch results back into the model. Spinner
// ticks are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case fetchedMsg:
		next, cmd := m.Update(msg)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

func twoPages() *fakeGroups {
	return &fakeGroups{pages: map[int][]group{
		1: {{ID: 1, Name: "VIP"}, {ID: 2, Name: "Regular"}},
		2: {{ID: 3, Name: "Staff"}},
	}}
}

func TestModel_InitLoadsFirstPage(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	assert.Equal(t, []int{1}, src.calls)
	assert.Equal(t, []string{"1", "2"}, m.ids)
	assert.Contains(t, m.View(), "page 1 of 2")
	assert.Contains(t, m.View(), "Regular")
}

func TestModel_Paging(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	m = press(t, m, "right")
	assert.Equal(t, []string{"3"}, m.ids)
	assert.Contains(t, m.View(), "page 2 of 2")

	// No page beyond the last.
	m = press(t, m, "right")
	assert.Equal(t, []int{1, 2}, src.calls)

	m = press(t, m, "left")
	assert.Equal(t, []string{"1", "2"}, m.ids)
	assert.Equal(t, []int{1, 2, 1}, src.calls)
}

func TestModel_FilterIsLocal(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	m = press(t, m, "/", "v", "i")
	assert.True(t, m.filtering)
	assert.Equal(t, []string{"1"}, m.ids)

	m = press(t, m, "enter")
	assert.False(t, m.filtering)
	assert.Contains(t, m.View(), `name contains "vi": 1 of 2 rows`)

	m = press(t, m, "/", "esc")
	assert.Equal(t, []string{"1", "2"}, m.ids)
	assert.Equal(t, []int{1}, src.calls, "filtering must not fetch")
}

func TestModel_SortCycles(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	m = press(t, m, "s", "s")
	snap := m.view.Snapshot()
	assert.Equal(t, "name", snap.SortKey)
	assert.Equal(t, []string{"2", "1"}, m.ids)

	m = press(t, m, "S")
	assert.True(t, m.view.Snapshot().SortDesc)
	assert.Equal(t, []string{"1", "2"}, m.ids)

	m = press(t, m, "s")
	assert.Empty(t, m.view.Snapshot().SortKey)
	assert.Equal(t, []int{1}, src.calls, "sorting must not fetch")
}

func TestModel_DeleteConfirmed(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	m = press(t, m, "d")
	require.Equal(t, "1", m.confirm)
	assert.Contains(t, m.View(), "Delete 1? (y/n)")

	m = press(t, m, "y")
	assert.Equal(t, []string{"1"}, src.deleted)
	assert.Equal(t, []int{1, 1}, src.calls, "exactly one reload after delete")
	assert.Equal(t, "deleted 1", m.status)
}

func TestModel_DeleteCancelled(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	m = press(t, m, "d", "n")
	assert.Empty(t, src.deleted)
	assert.Equal(t, "delete cancelled", m.status)
}

func TestModel_DeleteFailureKeepsRows(t *testing.T) {
	src := twoPages()
	src.deleteErr = errors.New("group is in use")
	m := newTestModel(t, src)

	m = press(t, m, "d", "y")
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "group is in use")
	assert.Equal(t, []string{"1", "2"}, m.ids)
	assert.Equal(t, []int{1}, src.calls)
}

func TestModel_Refresh(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	src.pages[1] = []group{{ID: 9, Name: "New"}}
	m = press(t, m, "r")
	assert.Equal(t, []string{"9"}, m.ids)
}

func TestModel_UnauthenticatedQuits(t *testing.T) {
	src := twoPages()
	src.err = botapi.WrapError("group.list", botapi.ErrNotAuthenticated)

	view := listview.New(listview.Options[group]{
		Screen:  "groups",
		Source:  src,
		Columns: []listview.Column[group]{listview.Text("name", "Name", func(g group) string { return g.Name })},
		Logger:  logging.Discard(),
	})
	m := New(context.Background(), view, "Groups")

	next, cmd := m.Update(m.Init()())
	m = next.(Model)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
	assert.ErrorIs(t, m.Err(), botapi.ErrNotAuthenticated)
}

func TestModel_FetchErrorShown(t *testing.T) {
	src := twoPages()
	m := newTestModel(t, src)

	src.err = errors.New("bad gateway")
	m = press(t, m, "r")
	assert.Contains(t, m.View(), "bad gateway")
	assert.NoError(t, m.Err())
	assert.Equal(t, []string{"1", "2"}, m.ids)
}

func TestNextSortKey(t *testing.T) {
	snap := listview.Snapshot{Columns: []listview.Header{
		{Key: "id", Sortable: true},
		{Key: "photo"},
		{Key: "name", Sortable: true},
	}}
	assert.Equal(t, "id", nextSortKey(snap))
	snap.SortKey = "id"
	assert.Equal(t, "name", nextSortKey(snap))
	snap.SortKey = "name"
	assert.Equal(t, "", nextSortKey(snap))
}

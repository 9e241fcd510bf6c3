package listview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/me/botadmin/pkg/model"
)

func TestRegistry_MountLoadsOnce(t *testing.T) {
	src := &fakeSource{pages: map[int]*model.Page[row]{1: pageOf(1, row{ID: 1})}}
	reg := NewRegistry(nil)
	built := 0
	factory := func() View { built++; return newController(src) }

	v1, err := reg.Mount(context.Background(), "s1", "rows", factory)
	require.NoError(t, err)
	v2, err := reg.Mount(context.Background(), "s1", "rows", factory)
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, 1, built)
	assert.Equal(t, []int{1}, src.listCalls())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	src := &fakeSource{}
	reg := NewRegistry(nil)
	factory := func() View { return newController(src) }

	a, _ := reg.Mount(context.Background(), "s1", "rows", factory)
	b, _ := reg.Mount(context.Background(), "s2", "rows", factory)
	assert.NotSame(t, a, b)

	reg.Drop("s1")
	_, ok := reg.Get("s1", "rows")
	assert.False(t, ok)
	_, ok = reg.Get("s2", "rows")
	assert.True(t, ok)

	reg.Unmount("s2", "rows")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_FailedMountStaysMounted(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	reg := NewRegistry(nil)

	v, err := reg.Mount(context.Background(), "s1", "rows", func() View { return newController(src) })
	require.Error(t, err)
	require.NotNil(t, v)
	assert.NotEmpty(t, v.Snapshot().Err)
	_, ok := reg.Get("s1", "rows")
	assert.True(t, ok)
}

func TestRegistry_ConcurrentMountWaitsForInitialLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	gate := make(chan struct{})
	src := &fakeSource{
		pages: map[int]*model.Page[row]{1: pageOf(30, row{ID: 1}), 3: pageOf(30, row{ID: 21})},
		gates: map[int]chan struct{}{1: gate},
	}
	reg := NewRegistry(nil)
	factory := func() View { return newController(src) }

	first := make(chan error, 1)
	go func() {
		_, err := reg.Mount(context.Background(), "s1", "rows", factory)
		first <- err
	}()
	require.Eventually(t, func() bool { return len(src.listCalls()) == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() {
		v, err := reg.Mount(context.Background(), "s1", "rows", factory)
		if err != nil {
			second <- err
			return
		}
		second <- v.SetPage(context.Background(), 3)
	}()

	select {
	case err := <-second:
		t.Fatalf("second mount returned before the initial load settled: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	require.NoError(t, <-first)
	require.NoError(t, <-second)
	assert.Equal(t, []int{1, 3}, src.listCalls())
}

func TestRegistry_MountWaitHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{gates: map[int]chan struct{}{1: gate}}
	reg := NewRegistry(nil)
	factory := func() View { return newController(src) }

	done := make(chan struct{})
	go func() {
		defer close(done)
		reg.Mount(context.Background(), "s1", "rows", factory)
	}()
	require.Eventually(t, func() bool { return len(src.listCalls()) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := reg.Mount(ctx, "s1", "rows", factory)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, v)

	close(gate)
	<-done
}

func TestRegistry_Sweep(t *testing.T) {
	src := &fakeSource{}
	reg := NewRegistry(nil)
	factory := func() View { return newController(src) }
	reg.Mount(context.Background(), "s1", "rows", factory)
	reg.Mount(context.Background(), "s2", "rows", factory)

	assert.Equal(t, 0, reg.Sweep(time.Hour))

	reg.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 2, reg.Sweep(time.Hour))
	assert.Equal(t, 0, reg.Len())
}

func TestSnapshot_Pages(t *testing.T) {
	tests := []struct {
		page, total int
		want        []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 9, []int{1, 2, 3, 4, 5}},
		{5, 9, []int{3, 4, 5, 6, 7}},
		{9, 9, []int{5, 6, 7, 8, 9}},
	}
	for _, tt := range tests {
		s := Snapshot{PageNumber: tt.page, TotalPages: tt.total}
		assert.Equal(t, tt.want, s.Pages(), "page %d of %d", tt.page, tt.total)
	}
	s := Snapshot{PageNumber: 2, TotalPages: 3}
	assert.True(t, s.HasPrev())
	assert.True(t, s.HasNext())
	assert.Equal(t, 1, s.PrevPage())
	assert.Equal(t, 3, s.NextPage())
}

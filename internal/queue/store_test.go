package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livinlefevreloca/stockroom/internal/ops"
	"github.com/livinlefevreloca/stockroom/internal/testutil"
)

func mustOp(t *testing.T, action string, params ops.Params) ops.Operation {
	t.Helper()
	op, err := ops.NewOperation(action, params)
	require.NoError(t, err)
	return op
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	logger := testutil.NewTestLogger()

	want := []ops.Operation{
		mustOp(t, ops.ActionEntry, ops.Params{"code": "A", "qty": 2, "name": "Parafuso", "price": "0.25"}),
		mustOp(t, ops.ActionExit, ops.Params{"code": "B", "qty": 1.5}),
		mustOp(t, ops.ActionExport, ops.Params{}),
		mustOp(t, ops.ActionLookup, ops.Params{"code": "C"}),
	}

	s := NewStore(slots, "", logger.Logger())
	for _, op := range want {
		require.NoError(t, s.Push(ctx, op))
	}

	reloaded := NewStore(slots, "", logger.Logger())
	got := reloaded.Load(ctx)

	assert.Equal(t, want, got)
	assert.Equal(t, len(want), reloaded.Len())
	assert.False(t, logger.HasWarning())
}

func TestStore_LoadMissingSlotIsEmpty(t *testing.T) {
	s := NewStore(NewMemorySlots(), DefaultSlot, testutil.NewTestLogger().Logger())

	got := s.Load(context.Background())
	assert.Empty(t, got)
	assert.Equal(t, 0, s.Len())
}

func TestStore_LoadCorruptIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{{{"},
		{name: "object instead of array", data: `{"action":"entrada"}`},
		{name: "record without action", data: `[{"params":{"code":"A"}}]`},
		{name: "wrong params type", data: `[{"action":"entrada","params":[1]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := NewMemorySlots()
			slots.Raw(DefaultSlot, []byte(tt.data))
			logger := testutil.NewTestLogger()

			s := NewStore(slots, DefaultSlot, logger.Logger())
			got := s.Load(context.Background())

			assert.Empty(t, got)
			assert.True(t, logger.HasWarning())
		})
	}
}

func TestStore_LoadNullIsEmpty(t *testing.T) {
	slots := NewMemorySlots()
	slots.Raw(DefaultSlot, []byte("null"))

	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())
	got := s.Load(context.Background())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_LoadBackendErrorIsEmpty(t *testing.T) {
	slots := NewMemorySlots()
	slots.SetError(errors.New("disk I/O error"))
	logger := testutil.NewTestLogger()

	s := NewStore(slots, DefaultSlot, logger.Logger())
	got := s.Load(context.Background())

	assert.Empty(t, got)
	assert.True(t, logger.HasError())
}

func TestStore_LoadReplacesMemory(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	slots.Raw(DefaultSlot, []byte(`[{"action":"saida","params":{"code":"A","qty":1}}]`))

	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())
	s.Load(ctx)
	s.Load(ctx)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, ops.ActionExit, s.At(0).Action)
	assert.Equal(t, float64(1), s.At(0).Params["qty"])
}

func TestStore_PushPersistsEveryTime(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())

	require.NoError(t, s.Push(ctx, mustOp(t, ops.ActionExport, nil)))
	require.NoError(t, s.Push(ctx, mustOp(t, ops.ActionExport, nil)))

	assert.Equal(t, 2, slots.PutCount())
}

func TestStore_PushSaveFailureKeepsRecordInMemory(t *testing.T) {
	slots := NewMemorySlots()
	slots.SetError(errors.New("read-only database"))
	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())

	err := s.Push(context.Background(), mustOp(t, ops.ActionExport, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save pending queue")
	assert.Equal(t, 1, s.Len())
}

func TestStore_RemoveAtDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())

	a := mustOp(t, ops.ActionLookup, ops.Params{"code": "A"})
	b := mustOp(t, ops.ActionLookup, ops.Params{"code": "B"})
	require.NoError(t, s.Push(ctx, a))
	require.NoError(t, s.Push(ctx, b))
	puts := slots.PutCount()

	s.RemoveAt(0)

	assert.Equal(t, puts, slots.PutCount())
	assert.Equal(t, []ops.Operation{b}, s.Items())
}

func TestStore_ItemsIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemorySlots(), DefaultSlot, testutil.NewTestLogger().Logger())
	require.NoError(t, s.Push(ctx, mustOp(t, ops.ActionExport, nil)))

	items := s.Items()
	items[0].Action = "changed"

	assert.Equal(t, ops.ActionExport, s.At(0).Action)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())
	require.NoError(t, s.Push(ctx, mustOp(t, ops.ActionExport, nil)))

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())

	data, ok, err := slots.Get(ctx, DefaultSlot)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(data))
}

func TestStore_SaveIgnoresCancellation(t *testing.T) {
	slots := NewMemorySlots()
	s := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := mustOp(t, ops.ActionEntry, ops.Params{"code": "A"})
	require.NoError(t, s.Push(ctx, a))

	reloaded := NewStore(slots, DefaultSlot, testutil.NewTestLogger().Logger())
	assert.Equal(t, []ops.Operation{a}, reloaded.Load(context.Background()))
}

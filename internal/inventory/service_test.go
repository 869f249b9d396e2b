package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livinlefevreloca/stockroom/internal/dispatch"
	"github.com/livinlefevreloca/stockroom/internal/ops"
	"github.com/livinlefevreloca/stockroom/internal/queue"
	"github.com/livinlefevreloca/stockroom/internal/syncer"
	"github.com/livinlefevreloca/stockroom/internal/testutil"
)

type fakeScanner struct {
	code string
	err  error
}

func (f *fakeScanner) Scan(context.Context) (string, error) {
	return f.code, f.err
}

// fakePrompter answers prompts in order and records the labels it was shown
type fakePrompter struct {
	answers []string
	labels  []string
	err     error
}

func (f *fakePrompter) Prompt(label, def string) (string, error) {
	f.labels = append(f.labels, label)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return def, nil
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

type env struct {
	gw       *testutil.MockGateway
	store    *queue.Store
	scanner  *fakeScanner
	prompter *fakePrompter
	svc      *Service
}

func newEnv(t *testing.T, code string, answers ...string) *env {
	t.Helper()
	logger := testutil.NewTestLogger().Logger()

	e := &env{
		gw:       testutil.NewMockGateway(),
		scanner:  &fakeScanner{code: code},
		prompter: &fakePrompter{answers: answers},
	}
	e.store = queue.NewStore(queue.NewMemorySlots(), queue.DefaultSlot, logger)

	s, err := syncer.NewSyncer(syncer.DefaultConfig(), e.gw, e.store, logger)
	require.NoError(t, err)

	ctrl := dispatch.NewController(e.gw, e.store, logger)
	e.svc = NewService(ctrl, s, e.scanner, e.prompter, logger)
	return e
}

func TestEntry_ExistingProduct(t *testing.T) {
	e := newEnv(t, "5601234567890", "4")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": "OK", "name": "Parafuso", "price": 0.25, "stock": 10})

	msg := e.svc.Entry(context.Background())

	assert.Equal(t, Message{Text: "Entry recorded!", Kind: KindSuccess}, msg)
	calls := e.gw.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, ops.ActionLookup, calls[0].Action)
	assert.Equal(t, ops.ActionEntry, calls[1].Action)
	assert.Equal(t, ops.Params{"code": "5601234567890", "qty": float64(4), "name": "Parafuso", "price": 0.25}, calls[1].Params)
}

func TestEntry_NewProductPromptsForDetails(t *testing.T) {
	e := newEnv(t, "123", "Porca M6", "0,10", "12")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": ops.StatusNotFound})

	msg := e.svc.Entry(context.Background())

	assert.Equal(t, KindSuccess, msg.Kind)
	calls := e.gw.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, ops.Params{"code": "123", "qty": float64(12), "name": "Porca M6", "price": 0.1}, calls[1].Params)
	assert.Len(t, e.prompter.labels, 3)
}

func TestEntry_CancelledName(t *testing.T) {
	e := newEnv(t, "123", "")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": ops.StatusNotFound})

	msg := e.svc.Entry(context.Background())

	assert.Equal(t, Message{Text: "Entry cancelled.", Kind: KindError}, msg)
	assert.Equal(t, 1, e.gw.CallCount())
}

func TestEntry_InvalidPrice(t *testing.T) {
	e := newEnv(t, "123", "Porca", "cheap")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": ops.StatusNotFound})

	msg := e.svc.Entry(context.Background())

	assert.Equal(t, Message{Text: "Invalid price.", Kind: KindError}, msg)
}

func TestEntry_InvalidQuantity(t *testing.T) {
	for _, qty := range []string{"0", "-2", "abc"} {
		t.Run(qty, func(t *testing.T) {
			e := newEnv(t, "123", qty)

			msg := e.svc.Entry(context.Background())

			assert.Equal(t, Message{Text: "Invalid quantity.", Kind: KindError}, msg)
			assert.Equal(t, 1, e.gw.CallCount(), "no entry may be submitted")
			assert.Equal(t, 0, e.store.Len())
		})
	}
}

func TestEntry_OfflineLookupIsQueued(t *testing.T) {
	e := newEnv(t, "123")
	e.gw.SetOffline(true)

	msg := e.svc.Entry(context.Background())

	assert.Equal(t, KindQueued, msg.Kind)
	assert.Equal(t, "No connection. Operation saved for later synchronization.", msg.Text)
	assert.Empty(t, e.prompter.labels, "flow must stop after a queued lookup")
	assert.Equal(t, 1, e.store.Len())
}

func TestEntry_OfflineEntryIsQueued(t *testing.T) {
	e := newEnv(t, "123", "2")
	e.gw.FailAction(ops.ActionEntry)

	msg := e.svc.Entry(context.Background())

	assert.Equal(t, KindQueued, msg.Kind)
	require.Equal(t, 1, e.store.Len())
	assert.Equal(t, ops.ActionEntry, e.store.At(0).Action)
}

func TestExit_ShowsStockAndSubmits(t *testing.T) {
	e := newEnv(t, "123", "3")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": "OK", "stock": 10})

	msg := e.svc.Exit(context.Background())

	assert.Equal(t, Message{Text: "Exit recorded!", Kind: KindSuccess}, msg)
	require.Len(t, e.prompter.labels, 1)
	assert.Contains(t, e.prompter.labels[0], "Current stock: 10")
	calls := e.gw.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, ops.Params{"code": "123", "qty": float64(3)}, calls[1].Params)
}

func TestExit_UnknownProduct(t *testing.T) {
	e := newEnv(t, "123")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": ops.StatusNotFound})

	msg := e.svc.Exit(context.Background())

	assert.Equal(t, KindError, msg.Kind)
	assert.Equal(t, 1, e.gw.CallCount())
}

func TestLookup(t *testing.T) {
	e := newEnv(t, "123")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": "OK", "name": "Parafuso", "stock": 7, "price": 1.5})

	msg := e.svc.Lookup(context.Background())

	assert.Equal(t, Message{Text: "Code: 123\nName: Parafuso\nStock: 7\nPrice: €1.5", Kind: KindInfo}, msg)
}

func TestLookup_NotFound(t *testing.T) {
	e := newEnv(t, "123")
	e.gw.SetResponse(ops.ActionLookup, ops.Response{"status": ops.StatusNotFound})

	msg := e.svc.Lookup(context.Background())

	assert.Equal(t, Message{Text: "Product not found.", Kind: KindError}, msg)
}

func TestLookup_MalformedResponse(t *testing.T) {
	e := newEnv(t, "123")
	e.gw.MalformAction(ops.ActionLookup)

	msg := e.svc.Lookup(context.Background())

	assert.Equal(t, KindError, msg.Kind)
	assert.Contains(t, msg.Text, "malformed response")
	assert.Equal(t, 0, e.store.Len())
}

func TestScan_EmptyAndError(t *testing.T) {
	e := newEnv(t, "   ")
	msg := e.svc.Lookup(context.Background())
	assert.Equal(t, Message{Text: "No barcode read.", Kind: KindInfo}, msg)
	assert.Equal(t, 0, e.gw.CallCount())

	e = newEnv(t, "")
	e.scanner.err = errors.New("EOF")
	msg = e.svc.Lookup(context.Background())
	assert.Equal(t, KindError, msg.Kind)
}

func TestExport(t *testing.T) {
	e := newEnv(t, "")

	msg := e.svc.Export(context.Background())

	assert.Equal(t, KindSuccess, msg.Kind)
	calls := e.gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ops.ActionExport, calls[0].Action)
}

func TestSync_Messages(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	assert.Equal(t, Message{Text: "No pending operations.", Kind: KindInfo}, e.svc.Sync(ctx))

	e.gw.SetOffline(true)
	e.svc.Export(ctx)
	e.svc.Export(ctx)
	assert.Equal(t, Message{Text: "2 operations still waiting to be synchronized.", Kind: KindError}, e.svc.Sync(ctx))

	e.gw.SetOffline(false)
	assert.Equal(t, Message{Text: "Synchronization complete!", Kind: KindSuccess}, e.svc.Sync(ctx))
	assert.Equal(t, 0, e.store.Len())
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "1", want: 1},
		{in: " 2.5 ", want: 2.5},
		{in: "0,5", want: 0.5},
		{in: "0", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseQuantity(tt.in)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "quantity", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

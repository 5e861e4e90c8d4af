package table

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteBulkReceivesSelectionInRawOrder(t *testing.T) {
	cfg := fruitConfig()
	cfg.Audit.Enabled = true
	cfg.BulkActions = []Action{{
		ID:    "export",
		Label: "Export",
		Kind:  ActionBulk,
	}}

	var got []Row
	cfg.BulkActions[0].Handler = func(ctx context.Context, row *Row, selected []Row) error {
		got = selected
		return nil
	}

	store := NewStore(cfg, nil)
	store.SetData(fruitRows())
	store.SelectRow("3")
	store.SelectRow("1")

	NewDispatcher(store, nil).ExecuteBulk(context.Background(), "export")

	require.Len(t, got, 2)
	assert.Equal(t, "1", cfg.RowID(got[0]))
	assert.Equal(t, "3", cfg.RowID(got[1]))

	trail := store.AuditTrail()
	require.Len(t, trail, 1)
	assert.Equal(t, "Export", trail[0].Action)
	assert.Equal(t, "bulk (2 items)", trail[0].Target)
	assert.False(t, trail[0].At.IsZero())
}

func TestExecuteUnknownActionIsNoop(t *testing.T) {
	store := NewStore(fruitConfig(), nil)
	store.SetData(fruitRows())
	d := NewDispatcher(store, nil)

	d.Execute(context.Background(), "missing", nil)
	d.ExecuteBulk(context.Background(), "missing")

	assert.Empty(t, store.AuditTrail())
}

func TestFailingActionDoesNotPropagateOrAudit(t *testing.T) {
	cfg := fruitConfig()
	cfg.Audit.Enabled = true
	cfg.Actions = []Action{{
		ID:    "boom",
		Label: "Boom",
		Kind:  ActionButton,
		Handler: func(ctx context.Context, row *Row, selected []Row) error {
			return errors.New("backend unreachable")
		},
	}}

	store := NewStore(cfg, nil)
	store.SetData(fruitRows())
	row := store.Snapshot().Rows[0]

	NewDispatcher(store, nil).Execute(context.Background(), "boom", &row)

	assert.Empty(t, store.AuditTrail())
	assert.Len(t, store.Snapshot().Rows, 3)
}

func TestPanickingActionIsRecovered(t *testing.T) {
	cfg := fruitConfig()
	cfg.Actions = []Action{{
		ID:   "panic",
		Kind: ActionButton,
		Handler: func(ctx context.Context, row *Row, selected []Row) error {
			panic("bad callback")
		},
	}}

	store := NewStore(cfg, nil)
	store.SetData(fruitRows())
	row := store.Snapshot().Rows[0]

	assert.NotPanics(t, func() {
		NewDispatcher(store, nil).Execute(context.Background(), "panic", &row)
	})
}

func TestSingleRowActionAuditsRowID(t *testing.T) {
	cfg := fruitConfig()
	cfg.Audit.Enabled = true
	cfg.Actions = []Action{{
		ID:    "ship",
		Label: "Mark shipped",
		Kind:  ActionButton,
		Handler: func(ctx context.Context, row *Row, selected []Row) error {
			return nil
		},
	}}

	store := NewStore(cfg, nil)
	store.SetData(fruitRows())
	row := store.Snapshot().Rows[2]

	NewDispatcher(store, nil).Execute(context.Background(), "ship", &row)

	trail := store.AuditTrail()
	require.Len(t, trail, 1)
	assert.Equal(t, "Mark shipped", trail[0].Action)
	assert.Equal(t, "3", trail[0].Target)
}

func TestBulkActionRequiringSelectionSkipsEmpty(t *testing.T) {
	cfg := fruitConfig()
	invoked := false
	cfg.BulkActions = []Action{{
		ID:                "cancel",
		Kind:              ActionBulk,
		RequiresSelection: true,
		Handler: func(ctx context.Context, row *Row, selected []Row) error {
			invoked = true
			return nil
		},
	}}

	store := NewStore(cfg, nil)
	store.SetData(fruitRows())

	NewDispatcher(store, nil).ExecuteBulk(context.Background(), "cancel")
	assert.False(t, invoked)
}

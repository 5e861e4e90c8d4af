package table

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Dispatcher invokes configured action callbacks for a single row or the
// current selection. A failing or panicking callback is logged and absorbed;
// it must never corrupt table state or crash the caller.
type Dispatcher struct {
	store  *Store
	logger *slog.Logger
}

// NewDispatcher returns a dispatcher bound to a store.
func NewDispatcher(store *Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, logger: logger}
}

// Execute runs the single-row action with the given id. Unknown action ids
// are a no-op. On success an audit entry is appended when auditing is
// enabled.
func (d *Dispatcher) Execute(ctx context.Context, actionID string, row *Row) {
	cfg := d.store.Config()
	spec, ok := cfg.action(actionID)
	if !ok {
		return
	}

	if err := d.invoke(ctx, spec, row, nil); err != nil {
		d.logger.Error("table action failed",
			slog.String("table", cfg.ID),
			slog.String("action", actionID),
			slog.Any("error", err))
		return
	}

	if cfg.Audit.Enabled {
		target := "bulk"
		if row != nil {
			target = cfg.RowID(*row)
		}
		d.store.appendAudit(AuditEntry{Action: spec.Label, Target: target, At: time.Now()})
	}
}

// ExecuteBulk runs the bulk action with the given id against the current
// selection, materialized from the raw collection in its original order.
func (d *Dispatcher) ExecuteBulk(ctx context.Context, actionID string) {
	cfg := d.store.Config()
	spec, ok := cfg.bulkAction(actionID)
	if !ok {
		return
	}

	selected := d.store.SelectedRows()
	if spec.RequiresSelection && len(selected) == 0 {
		return
	}

	if err := d.invoke(ctx, spec, nil, selected); err != nil {
		d.logger.Error("table bulk action failed",
			slog.String("table", cfg.ID),
			slog.String("action", actionID),
			slog.Int("selected", len(selected)),
			slog.Any("error", err))
		return
	}

	if cfg.Audit.Enabled {
		target := fmt.Sprintf("bulk (%d items)", len(selected))
		d.store.appendAudit(AuditEntry{Action: spec.Label, Target: target, At: time.Now()})
	}
}

func (d *Dispatcher) invoke(ctx context.Context, spec Action, row *Row, selected []Row) (err error) {
	if spec.Handler == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %s panicked: %v", spec.ID, r)
		}
	}()
	return spec.Handler(ctx, row, selected)
}

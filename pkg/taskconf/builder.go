package taskconf

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSourceNotFound is returned by a SourceLookup for an unknown id.
var ErrSourceNotFound = errors.New("data source not found")

// SourceLookup resolves the type of a registered data source.
type SourceLookup interface {
	SourceType(ctx context.Context, id uint64) (SourceType, error)
}

// SourceLookupFunc adapts a function to SourceLookup.
type SourceLookupFunc func(ctx context.Context, id uint64) (SourceType, error)

func (f SourceLookupFunc) SourceType(ctx context.Context, id uint64) (SourceType, error) {
	return f(ctx, id)
}

// SyncSelections is what the user picked on the sync form. A zero SourceID
// means no source was selected.
type SyncSelections struct {
	SourceID    uint64
	SourceTable string
	TargetTable string
	Mode        SyncMode
}

// OperatorToggles holds one switch per cleaning operator plus the parameters
// of fill_na and rename.
type OperatorToggles struct {
	Explore     bool
	Dedup       bool
	DropNA      bool
	FillNA      bool
	FillValue   string
	Outliers    bool
	Standardize bool
	Rename      bool
	// RenameMapping is a JSON object or one old:new pair per line.
	RenameMapping string
}

// Builder turns form selections into a SyncConfig.
type Builder struct {
	sources SourceLookup
}

func NewBuilder(sources SourceLookup) *Builder {
	return &Builder{sources: sources}
}

// Build validates the selections and returns the canonical configuration.
// Validation happens before the source lookup, so invalid input never costs a
// round trip.
func (b *Builder) Build(ctx context.Context, taskType TaskType, sel SyncSelections, toggles OperatorToggles) (*SyncConfig, error) {
	if !taskType.IsSync() {
		return nil, newValidationError(KindUnsupportedTaskType, "task type %q cannot be built from sync selections", taskType)
	}

	sel.SourceTable = strings.TrimSpace(sel.SourceTable)
	sel.TargetTable = strings.TrimSpace(sel.TargetTable)
	if err := checkSelections(sel); err != nil {
		return nil, err
	}

	mode := sel.Mode
	if mode == "" {
		mode = ModeAppend
	}
	if !mode.IsValid() {
		return nil, newValidationError(KindInvalidConfig, "unknown sync mode %q", sel.Mode)
	}

	ops := Operators{}
	if taskType == TaskSyncProcess {
		var err error
		if ops, err = buildOperators(toggles); err != nil {
			return nil, err
		}
	}

	sourceType, err := lookupSource(ctx, b.sources, sel.SourceID)
	if err != nil {
		return nil, err
	}

	return &SyncConfig{
		SourceID: sel.SourceID,
		Source:   SourceSpec{Table: sel.SourceTable},
		Target: TargetSpec{
			Type:  DeriveTargetType(sourceType),
			Table: sel.TargetTable,
			Mode:  mode,
		},
		Operators: ops,
	}, nil
}

func checkSelections(sel SyncSelections) error {
	var missing []string
	if sel.SourceID == 0 {
		missing = append(missing, "source")
	}
	if sel.SourceTable == "" {
		missing = append(missing, "source table")
	}
	if sel.TargetTable == "" {
		missing = append(missing, "target table")
	}
	if len(missing) > 0 {
		return newValidationError(KindIncompleteSelection, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// buildOperators emits the enabled operators in canonical order. When both
// missing-value toggles are on, fill_na takes the slot.
func buildOperators(t OperatorToggles) (Operators, error) {
	ops := Operators{}
	if t.Explore {
		ops = append(ops, Explore{})
	}
	if t.Dedup {
		ops = append(ops, Dedup{})
	}
	switch {
	case t.FillNA:
		ops = append(ops, FillNA{Value: parseFillValue(t.FillValue)})
	case t.DropNA:
		ops = append(ops, DropNA{})
	}
	if t.Outliers {
		ops = append(ops, Outliers{})
	}
	if t.Standardize {
		ops = append(ops, Standardize{})
	}
	if t.Rename {
		mapping, err := ParseRenameMapping(t.RenameMapping)
		if err != nil {
			return nil, err
		}
		ops = append(ops, Rename{Mapping: mapping})
	}
	return ops, nil
}

// parseFillValue keeps numeric fill values numeric, anything else is a string.
func parseFillValue(s string) any {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

func lookupSource(ctx context.Context, sources SourceLookup, id uint64) (SourceType, error) {
	if sources == nil {
		return "", fmt.Errorf("no source lookup configured")
	}
	st, err := sources.SourceType(ctx, id)
	if errors.Is(err, ErrSourceNotFound) {
		return "", &ValidationError{Kind: KindUnknownSource, Message: fmt.Sprintf("data source %d does not exist", id), Err: err}
	}
	if err != nil {
		return "", fmt.Errorf("lookup data source %d: %w", id, err)
	}
	return st, nil
}

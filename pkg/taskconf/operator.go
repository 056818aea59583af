package taskconf

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OperatorType names a cleaning step.
type OperatorType string

const (
	OpExplore     OperatorType = "explore"
	OpDedup       OperatorType = "dedup"
	OpDropNA      OperatorType = "drop_na"
	OpFillNA      OperatorType = "fill_na"
	OpOutliers    OperatorType = "outliers"
	OpStandardize OperatorType = "standardize"
	OpRename      OperatorType = "rename"
)

// rank is the position of each operator in the canonical pipeline. drop_na and
// fill_na share the missing-value slot.
var rank = map[OperatorType]int{
	OpExplore:     0,
	OpDedup:       1,
	OpDropNA:      2,
	OpFillNA:      2,
	OpOutliers:    3,
	OpStandardize: 4,
	OpRename:      5,
}

// Operator is one cleaning step. The concrete types are Explore, Dedup,
// DropNA, FillNA, Outliers, Standardize and Rename.
type Operator interface {
	Type() OperatorType
}

type Explore struct{}

type Dedup struct{}

type DropNA struct{}

// FillNA replaces missing values with Value.
type FillNA struct {
	Value any `json:"value"`
}

// Outliers removes IQR outliers.
type Outliers struct{}

// Standardize applies a Z-score.
type Standardize struct{}

// Rename renames columns old -> new.
type Rename struct {
	Mapping map[string]string `json:"mapping"`
}

func (Explore) Type() OperatorType     { return OpExplore }
func (Dedup) Type() OperatorType       { return OpDedup }
func (DropNA) Type() OperatorType      { return OpDropNA }
func (FillNA) Type() OperatorType      { return OpFillNA }
func (Outliers) Type() OperatorType    { return OpOutliers }
func (Standardize) Type() OperatorType { return OpStandardize }
func (Rename) Type() OperatorType      { return OpRename }

// Operators is an ordered pipeline, encoded as [{"type": ..., params...}].
type Operators []Operator

// Types lists the operator types in order.
func (ops Operators) Types() []OperatorType {
	out := make([]OperatorType, len(ops))
	for i, op := range ops {
		out[i] = op.Type()
	}
	return out
}

// checkOrder verifies the canonical order with one operator per slot.
func (ops Operators) checkOrder() error {
	last := -1
	for _, op := range ops {
		r := rank[op.Type()]
		if r <= last {
			return fmt.Errorf("operator %q out of canonical order or duplicated", op.Type())
		}
		last = r
	}
	return nil
}

func (ops Operators) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, op := range ops {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalOperator(op)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalOperator(op Operator) ([]byte, error) {
	switch v := op.(type) {
	case FillNA:
		return json.Marshal(struct {
			Type  OperatorType `json:"type"`
			Value any          `json:"value"`
		}{v.Type(), v.Value})
	case Rename:
		mapping := v.Mapping
		if mapping == nil {
			mapping = map[string]string{}
		}
		return json.Marshal(struct {
			Type    OperatorType      `json:"type"`
			Mapping map[string]string `json:"mapping"`
		}{v.Type(), mapping})
	default:
		return json.Marshal(struct {
			Type OperatorType `json:"type"`
		}{op.Type()})
	}
}

func (ops *Operators) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Operators, 0, len(raw))
	for i, r := range raw {
		op, err := unmarshalOperator(r)
		if err != nil {
			return fmt.Errorf("operators[%d]: %w", i, err)
		}
		out = append(out, op)
	}
	*ops = out
	return nil
}

func unmarshalOperator(data []byte) (Operator, error) {
	var head struct {
		Type    OperatorType      `json:"type"`
		Value   any               `json:"value"`
		Mapping map[string]string `json:"mapping"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case OpExplore:
		return Explore{}, nil
	case OpDedup:
		return Dedup{}, nil
	case OpDropNA:
		return DropNA{}, nil
	case OpFillNA:
		return FillNA{Value: head.Value}, nil
	case OpOutliers:
		return Outliers{}, nil
	case OpStandardize:
		return Standardize{}, nil
	case OpRename:
		if len(head.Mapping) == 0 {
			return nil, fmt.Errorf("rename requires a non-empty mapping")
		}
		return Rename{Mapping: head.Mapping}, nil
	case "":
		return nil, fmt.Errorf("operator type is required")
	default:
		return nil, fmt.Errorf("unknown operator type %q", head.Type)
	}
}

package prediction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LabelKind is the encoding a classifier uses for a class label.
type LabelKind int

const (
	IntLabelKind LabelKind = iota
	FloatLabelKind
	StringLabelKind
)

// Label is an opaque class identifier. Artifacts may encode classes as
// integers, floats or strings; no meaning is assumed beyond equality.
type Label struct {
	kind LabelKind
	i    int64
	f    float64
	s    string
}

func IntLabel(v int64) Label     { return Label{kind: IntLabelKind, i: v} }
func FloatLabel(v float64) Label { return Label{kind: FloatLabelKind, f: v} }
func StringLabel(v string) Label { return Label{kind: StringLabelKind, s: v} }

func (l Label) Kind() LabelKind { return l.kind }

// Numeric returns the label as a float when it has a numeric encoding.
func (l Label) Numeric() (float64, bool) {
	switch l.kind {
	case IntLabelKind:
		return float64(l.i), true
	case FloatLabelKind:
		return l.f, true
	default:
		return 0, false
	}
}

// Compare reports whether l and o are equal. comparable is false when the
// two labels use incompatible encodings (a string against a number).
func (l Label) Compare(o Label) (equal, comparable bool) {
	if l.kind == StringLabelKind || o.kind == StringLabelKind {
		if l.kind != o.kind {
			return false, false
		}
		return l.s == o.s, true
	}
	if l.kind == IntLabelKind && o.kind == IntLabelKind {
		return l.i == o.i, true
	}
	a, _ := l.Numeric()
	b, _ := o.Numeric()
	return a == b, true
}

// String renders the label the way it is reported as raw_prediction.
func (l Label) String() string {
	switch l.kind {
	case IntLabelKind:
		return strconv.FormatInt(l.i, 10)
	case FloatLabelKind:
		s := strconv.FormatFloat(l.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	default:
		return l.s
	}
}

func (l Label) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case IntLabelKind:
		return []byte(strconv.FormatInt(l.i, 10)), nil
	case FloatLabelKind:
		if math.IsNaN(l.f) || math.IsInf(l.f, 0) {
			return nil, fmt.Errorf("label %v is not representable in JSON", l.f)
		}
		return json.Marshal(l.f)
	default:
		return json.Marshal(l.s)
	}
}

func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringLabel(s)
		return nil
	}

	raw := string(data)
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*l = IntLabel(i)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*l = FloatLabel(f)
		return nil
	}
	return fmt.Errorf("class label must be a number or a string, got %s", raw)
}

// ParseLabelText reads a label from text such as a CSV cell: integers and
// floats keep their numeric encoding, anything else is a string label.
func ParseLabelText(text string) Label {
	t := strings.TrimSpace(text)
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return IntLabel(i)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return FloatLabel(f)
	}
	return StringLabel(text)
}

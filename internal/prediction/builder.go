package prediction

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"risk-predictor/internal/common/errors"
)

// FeatureVector is a validated request record split by slot kind. Both
// slices follow schema order.
type FeatureVector struct {
	Numeric     []float64
	Categorical []interface{}
}

// BuildFeatureVector validates input against schema. It fails on the first
// offending slot in schema order. Keys not in the schema are ignored.
func BuildFeatureVector(input map[string]interface{}, schema *FeatureSchema) (*FeatureVector, error) {
	fv := &FeatureVector{}

	for _, slot := range schema.slots {
		raw, ok := input[slot.Name]
		if !ok {
			return nil, errors.NewMissingFeatureError(slot.Name)
		}

		if slot.Kind == Categorical {
			fv.Categorical = append(fv.Categorical, raw)
			continue
		}

		v, ok := coerceNumeric(raw)
		if !ok {
			return nil, errors.NewInvalidNumericValueError(slot.Name, raw)
		}
		fv.Numeric = append(fv.Numeric, v)
	}

	return fv, nil
}

// coerceNumeric accepts numbers and decimal numeric strings. null, booleans,
// hex literals, NaN and infinities are rejected.
func coerceNumeric(raw interface{}) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		s := strings.TrimSpace(n)
		if isHexLiteral(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

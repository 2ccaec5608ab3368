package prediction

import (
	"encoding/json"
	"fmt"
	"strconv"

	"risk-predictor/internal/common/errors"
)

// Encoder turns categorical raw values into numeric columns.
type Encoder interface {
	// Features lists the categorical features in fitted order.
	Features() []string
	Width() int
	Transform(values []interface{}) ([]float64, error)
}

// OneHotEncoder encodes each categorical feature as one column per fitted
// category. Unknown categories encode to an all-zero block.
type OneHotEncoder struct {
	features []string
	index    []map[string]int
	offsets  []int
	width    int
}

// NewOneHotEncoder builds an encoder from per-feature category lists, in
// fitted column order. Category values are normalized with CategoryKey.
func NewOneHotEncoder(features []string, categories [][]interface{}) (*OneHotEncoder, error) {
	if len(features) != len(categories) {
		return nil, fmt.Errorf("one-hot encoder has %d features but %d category lists", len(features), len(categories))
	}

	enc := &OneHotEncoder{
		features: append([]string(nil), features...),
		index:    make([]map[string]int, len(features)),
		offsets:  make([]int, len(features)),
	}

	for i, cats := range categories {
		if len(cats) == 0 {
			return nil, fmt.Errorf("feature %q has no categories", features[i])
		}
		enc.offsets[i] = enc.width
		enc.index[i] = make(map[string]int, len(cats))
		for j, c := range cats {
			key, ok := CategoryKey(c)
			if !ok {
				return nil, fmt.Errorf("feature %q has an unusable category %v", features[i], c)
			}
			if _, dup := enc.index[i][key]; dup {
				return nil, fmt.Errorf("feature %q has duplicate category %q", features[i], key)
			}
			enc.index[i][key] = j
		}
		enc.width += len(cats)
	}

	return enc, nil
}

func (e *OneHotEncoder) Features() []string { return append([]string(nil), e.features...) }

func (e *OneHotEncoder) Width() int { return e.width }

func (e *OneHotEncoder) Transform(values []interface{}) ([]float64, error) {
	if len(values) != len(e.features) {
		return nil, errors.NewEncodingWidthMismatchError(len(e.features), len(values))
	}

	row := make([]float64, e.width)
	for i, v := range values {
		key, ok := CategoryKey(v)
		if !ok {
			continue
		}
		if j, known := e.index[i][key]; known {
			row[e.offsets[i]+j] = 1
		}
	}
	return row, nil
}

// CategoryKey normalizes a raw categorical value so that a JSON number and
// its string form land on the same category. null has no key.
func CategoryKey(v interface{}) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		return c, true
	case bool:
		return strconv.FormatBool(c), true
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32), true
	case int:
		return strconv.Itoa(c), true
	case int64:
		return strconv.FormatInt(c, 10), true
	case json.Number:
		if f, err := c.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return c.String(), true
	default:
		return fmt.Sprint(c), true
	}
}

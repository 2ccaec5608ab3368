package prediction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-predictor/internal/common/errors"
)

func newSectorRegionEncoder(t *testing.T) *OneHotEncoder {
	t.Helper()
	enc, err := NewOneHotEncoder(
		[]string{"sector", "region"},
		[][]interface{}{
			{"energy", "retail", "tech"},
			{json.Number("1"), json.Number("2")},
		},
	)
	require.NoError(t, err)
	return enc
}

func TestOneHotEncoder_Transform(t *testing.T) {
	enc := newSectorRegionEncoder(t)
	assert.Equal(t, 5, enc.Width())
	assert.Equal(t, []string{"sector", "region"}, enc.Features())

	row, err := enc.Transform([]interface{}{"retail", 2.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, row)

	row, err = enc.Transform([]interface{}{"tech", "1"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 0}, row)
}

func TestOneHotEncoder_IgnoresUnknown(t *testing.T) {
	enc := newSectorRegionEncoder(t)

	row, err := enc.Transform([]interface{}{"mining", nil})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, row)
}

func TestOneHotEncoder_ValueCountMismatch(t *testing.T) {
	enc := newSectorRegionEncoder(t)

	_, err := enc.Transform([]interface{}{"retail"})
	assert.Equal(t, errors.ErrCodeEncodingWidthMismatch, errors.CodeOf(err))
}

func TestNewOneHotEncoder_Errors(t *testing.T) {
	_, err := NewOneHotEncoder([]string{"a"}, nil)
	assert.Error(t, err)

	_, err = NewOneHotEncoder([]string{"a"}, [][]interface{}{{}})
	assert.Error(t, err)

	_, err = NewOneHotEncoder([]string{"a"}, [][]interface{}{{"x", "x"}})
	assert.Error(t, err)

	_, err = NewOneHotEncoder([]string{"a"}, [][]interface{}{{nil}})
	assert.Error(t, err)
}

func TestCategoryKey(t *testing.T) {
	k1, _ := CategoryKey(3.0)
	k2, _ := CategoryKey(json.Number("3.0"))
	k3, _ := CategoryKey(3)
	assert.Equal(t, "3", k1)
	assert.Equal(t, k1, k2)
	assert.Equal(t, k1, k3)

	_, ok := CategoryKey(nil)
	assert.False(t, ok)
}

package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFiles() *UniformTable {
	return &UniformTable{
		Format: "pm100d",
		Series: []Series{
			{Index: 1, Time: []float64{0, 1, 2}, Signal: []float64{5, 6, 7}, TimeUnit: "s", SignalName: "Power_W"},
			{Index: 2, Time: []float64{0}, Signal: []float64{9}, TimeUnit: "s", SignalName: "Power_W"},
		},
	}
}

func TestUniformTableShape(t *testing.T) {
	tbl := twoFiles()
	assert.Equal(t, 2, tbl.Files())
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, []string{"file_1_Time_s", "file_1_Power_W", "file_2_Time_s", "file_2_Power_W"}, tbl.ColumnNames())
}

func TestColumnsDensePadsWithNaN(t *testing.T) {
	cols := Columns{
		{Index: 1, Name: "file_1_Time", Values: []float64{0, 1, 2}},
		{Index: 1, Name: "file_1_Power_W_Norm", Values: []float64{0, 0.2, 0.4}},
		{Index: 2, Name: "file_2_Time", Values: []float64{0}},
		{Index: 2, Name: "file_2_Power_W_Norm", Values: []float64{0}},
	}
	m := cols.Dense()
	require.NotNil(t, m)

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, 0.4, m.At(2, 1))
	assert.Equal(t, 0.0, m.At(0, 3))
	assert.True(t, math.IsNaN(m.At(1, 2)))
	assert.True(t, math.IsNaN(m.At(2, 3)))
}

func TestDenseEmpty(t *testing.T) {
	assert.Nil(t, Columns{}.Dense())
	assert.Nil(t, Columns{{Index: 1, Name: "empty"}}.Dense())
}

func TestSeriesLenUsesLongerColumn(t *testing.T) {
	s := Series{Time: []float64{0, 1}, Signal: []float64{1, 2, 3}}
	assert.Equal(t, 3, s.Len())
}

func TestColumns(t *testing.T) {
	cols := Columns{
		{Index: 1, Name: "a", Values: []float64{1, 2}},
		{Index: 2, Name: "b", Values: []float64{3}},
	}
	assert.Equal(t, []string{"a", "b"}, cols.Names())
	assert.Equal(t, 2, cols.Rows())
	assert.Equal(t, 3.0, cols.At(0, 1))
	assert.True(t, math.IsNaN(cols.At(1, 1)))

	nt := NormalizedTable{Columns: cols}
	assert.Equal(t, 2, nt.Rows())
}

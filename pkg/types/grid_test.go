package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type label string

func (l label) String() string { return "L" + string(l) }

func TestNewGridNormalizesKeysAndValues(t *testing.T) {
	raw := RawWorkbook{
		"Sheet1": RawSheet{
			0: {0: "a", 1: 3, 2: 2.5, 3: nil, 4: true},
			"7": {"B": float64(4), "C": int64(-2)},
		},
	}

	g := NewGrid(raw)

	assert.Equal(t, Grid{
		"Sheet1": Sheet{
			"0": Row{"0": "a", "1": "3", "2": "2.5", "3": "", "4": "true"},
			"7": Row{"B": "4", "C": "-2"},
		},
	}, g)
}

func TestNewGridEmptyInputs(t *testing.T) {
	assert.Equal(t, Grid{}, NewGrid(nil))
	assert.Equal(t, Grid{"Empty": Sheet{}}, NewGrid(RawWorkbook{"Empty": nil}))
}

func TestIntegerAndStringKeysCompareEqual(t *testing.T) {
	a := NewGrid(RawWorkbook{"S": RawSheet{3: {0: "x"}}})
	b := NewGrid(RawWorkbook{"S": RawSheet{"3": {"0": "x"}}})
	assert.Equal(t, a, b)
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"", ""},
		{"hello", "hello"},
		{[]byte("raw"), "raw"},
		{42, "42"},
		{int32(-7), "-7"},
		{uint16(9), "9"},
		{3.0, "3"},
		{0.1, "0.1"},
		{float32(1.5), "1.5"},
		{false, "false"},
		{label("x"), "Lx"},
		{struct{ A int }{1}, "{1}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CellText(tt.in), "CellText(%#v)", tt.in)
	}
}

func TestGridStatsAndNames(t *testing.T) {
	g := Grid{
		"b": Sheet{"0": Row{"0": "x", "1": "y"}},
		"a": Sheet{"0": Row{"0": "x"}, "1": Row{}},
	}
	sheets, rows, cells := g.Stats()
	assert.Equal(t, 2, sheets)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cells)
	assert.Equal(t, []string{"a", "b"}, g.SheetNames())
}

func TestSortedKeys(t *testing.T) {
	s := Sheet{"10": nil, "2": nil, "1": nil}
	assert.Equal(t, []string{"1", "2", "10"}, s.SortedKeys())

	r := Row{"AA": "", "B": "", "A": "", "Z": ""}
	assert.Equal(t, []string{"A", "B", "Z", "AA"}, r.SortedKeys())

	mixed := Row{"B": "", "3": "", "A": ""}
	assert.Equal(t, []string{"3", "A", "B"}, mixed.SortedKeys())
}

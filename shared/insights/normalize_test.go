package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected int64
	}{
		{"Nil", nil, 0},
		{"Empty string", "", 0},
		{"Letters only", "abc", 0},
		{"Thousands separators", "1,234 views", 1234},
		{"Dotted separators", "12.345", 12345},
		{"Plain string", "200", 200},
		{"Int", 42, 42},
		{"Int64", int64(9000000000), 9000000000},
		{"Float without fraction", float64(1500000), 1500000},
		{"Negative sign dropped", "-5", 5},
		{"Overflow", "99999999999999999999999", 0},
		{"Bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCount(tt.raw)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "dragon", NormalizeKeyword("  Dragon "))
	assert.Equal(t, "dragon ball", NormalizeKeyword("DRAGON   Ball"))
	assert.Equal(t, "", NormalizeKeyword("   "))
}

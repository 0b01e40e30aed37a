package dataprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"under a thousand", "799.99", "$799.99"},
		{"thousands grouping", "3411.44", "$3,411.44"},
		{"exact thousand", "1000", "$1,000.00"},
		{"millions", "1234567.8", "$1,234,567.80"},
		{"zero", "0", "$0.00"},
		{"negative", "-1234.5", "$-1,234.50"},
		{"rounds to cents", "5.999", "$6.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.input)
			assert.Equal(t, tt.want, formatDollars(d))
		})
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "7", formatCount(7))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "1,000", formatCount(1000))
	assert.Equal(t, "1,234,567", formatCount(1234567))
	assert.Equal(t, "-1,234", formatCount(-1234))
}

func TestParseIntField(t *testing.T) {
	got, err := parseIntField(" 1001 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), got)

	_, err = parseIntField("1001.0")
	assert.Error(t, err)

	_, err = parseIntField("")
	assert.Error(t, err)
}

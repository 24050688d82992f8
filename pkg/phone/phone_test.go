package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAcceptedForms(t *testing.T) {
	// Every accepted input form of the same local number yields one canonical value.
	inputs := []string{
		"501234567",
		"0501234567",
		"+966501234567",
		"966501234567",
		"00966501234567",
		"050 123 4567",
		"050-123-4567",
		"+966 50 123 4567",
	}
	for _, in := range inputs {
		got, ok := Normalize(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, "+966501234567", got, "input %q", in)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	inputs := []string{
		"",
		"12345",
		"50123456",       // 8 digits
		"50a123456",      // non-digit inside
		"abcdefghi",      // non-digit
		"+97150123456",   // wrong country code, 8 local digits
		"+971501234567",  // wrong country code
		"12966501234567", // garbage before country code
	}
	for _, in := range inputs {
		got, ok := Normalize(in)
		assert.False(t, ok, "input %q", in)
		assert.Empty(t, got, "input %q", in)
		assert.False(t, IsValid(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once, ok := Normalize("0501234567")
	require.True(t, ok)
	twice, ok := Normalize(once)
	require.True(t, ok)
	assert.Equal(t, once, twice)
}

func TestNormalizeForSMS(t *testing.T) {
	got, ok := NormalizeForSMS("0501234567")
	require.True(t, ok)
	assert.Equal(t, "966501234567", got)

	_, ok = NormalizeForSMS("not a phone")
	assert.False(t, ok)
}

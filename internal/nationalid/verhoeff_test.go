package nationalid

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validNumbers = []string{
	"444452518437",
	"123456789010",
	"234567890124",
	"499182064572",
	"999988887779",
	"200000000009",
}

func TestValidateAcceptsKnownGoodNumbers(t *testing.T) {
	for _, n := range validNumbers {
		assert.True(t, Validate(n), n)
	}
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	for _, n := range []string{"", "12345678901", "1234567890123", "12345678901a", "4444 5251 8437"} {
		assert.False(t, Validate(n), n)
	}
}

func TestValidateDetectsSingleDigitErrors(t *testing.T) {
	for _, n := range validNumbers {
		for pos := 0; pos < len(n); pos++ {
			for d := byte('0'); d <= '9'; d++ {
				if n[pos] == d {
					continue
				}
				altered := []byte(n)
				altered[pos] = d
				assert.False(t, Validate(string(altered)), "altered %s -> %s", n, string(altered))
			}
		}
	}
}

func TestValidateDetectsAdjacentTranspositions(t *testing.T) {
	for _, n := range validNumbers {
		for pos := 0; pos < len(n)-1; pos++ {
			if n[pos] == n[pos+1] {
				continue
			}
			swapped := []byte(n)
			swapped[pos], swapped[pos+1] = swapped[pos+1], swapped[pos]
			assert.False(t, Validate(string(swapped)), "transposed %s -> %s", n, string(swapped))
		}
	}
}

func TestCheckDigitRoundTrip(t *testing.T) {
	for _, base := range []string{"12345678901", "00000000001", "98765432109"} {
		d := CheckDigit(base)
		require.GreaterOrEqual(t, d, 0)
		assert.True(t, Validate(base+strconv.Itoa(d)))
	}
	assert.Equal(t, -1, CheckDigit("12a"))
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("123456789012"))
	assert.False(t, ValidFormat("12345678901"))
	assert.False(t, ValidFormat("12345678901x"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1234 5678 9012", Format("123456789012"))
	assert.Equal(t, "12345", Format("12345"))
}

// Package nationalid validates 12-digit national identity (Aadhaar) numbers.
package nationalid

// Length is the number of digits in a national identity number.
const Length = 12

var multiplication = [10][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

var permutation = [8][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

var inverse = [10]int{0, 4, 3, 2, 1, 5, 6, 7, 8, 9}

// ValidFormat reports whether s is exactly 12 ASCII digits.
func ValidFormat(s string) bool {
	if len(s) != Length {
		return false
	}
	return allDigits(s)
}

// Validate reports whether s is a well-formed number whose last digit is a
// correct Verhoeff check digit.
func Validate(s string) bool {
	if !ValidFormat(s) {
		return false
	}
	c := 0
	for i := 0; i < len(s); i++ {
		digit := int(s[len(s)-1-i] - '0')
		c = multiplication[c][permutation[i%8][digit]]
	}
	return c == 0
}

// CheckDigit computes the Verhoeff check digit to append to the digit string
// s. It returns -1 when s contains a non-digit.
func CheckDigit(s string) int {
	if !allDigits(s) {
		return -1
	}
	c := 0
	for i := 0; i < len(s); i++ {
		digit := int(s[len(s)-1-i] - '0')
		c = multiplication[c][permutation[(i+1)%8][digit]]
	}
	return inverse[c]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format groups a 12-digit number in blocks of four for display. Other input
// is returned unchanged.
func Format(s string) string {
	if !ValidFormat(s) {
		return s
	}
	return s[0:4] + " " + s[4:8] + " " + s[8:12]
}

// Package document validates Brazilian taxpayer documents (CPF for individuals, CNPJ for companies).
package document

import "strings"

const (
	cpfLength  = 11
	cnpjLength = 14
)

// Clean strips everything but digits from doc.
func Clean(doc string) string {
	var b strings.Builder
	b.Grow(len(doc))
	for _, r := range doc {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether doc, after cleaning, is a CPF or CNPJ with valid check digits.
func IsValid(doc string) bool {
	digits := Clean(doc)
	switch len(digits) {
	case cpfLength:
		return isValidCPF(digits)
	case cnpjLength:
		return isValidCNPJ(digits)
	default:
		return false
	}
}

func isValidCPF(d string) bool {
	if allSame(d) {
		return false
	}
	return checkDigit(d[:9], []int{10, 9, 8, 7, 6, 5, 4, 3, 2}) == int(d[9]-'0') &&
		checkDigit(d[:10], []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}) == int(d[10]-'0')
}

func isValidCNPJ(d string) bool {
	if allSame(d) {
		return false
	}
	return checkDigit(d[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == int(d[12]-'0') &&
		checkDigit(d[:13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == int(d[13]-'0')
}

// checkDigit computes the modulo-11 check digit of digits under weights.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

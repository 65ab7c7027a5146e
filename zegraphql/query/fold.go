package query

import "golang.org/x/text/cases"

// FoldFunction is the SQL function the store registers to case-fold text.
// LOWER and LIKE only fold ASCII.
const FoldFunction = "zg_fold"

// Fold returns the Unicode case folding of s, as FoldFunction computes it
func Fold(s string) string {
	return cases.Fold().String(s)
}

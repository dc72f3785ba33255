package cleaner

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff between the original and cleaned text with three
// lines of context. It returns "" when both are equal.
func Diff(original, cleaned string) (string, error) {
	if original == cleaned {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(cleaned),
		FromFile: "original",
		ToFile:   "cleaned",
		Context:  3,
	})
}

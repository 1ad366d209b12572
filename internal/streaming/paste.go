package streaming

import "strings"

const (
	pasteByteThreshold = 1000
	pasteLineThreshold = 10
)

// IsPaste classifies input longer than 1000 bytes or with more than 10
// lines as a paste, to be processed whole rather than line-by-line.
func IsPaste(input string) bool {
	if len(input) > pasteByteThreshold {
		return true
	}
	return strings.Count(input, "\n") > pasteLineThreshold
}

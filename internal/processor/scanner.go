package processor

import (
	"fmt"
	"strings"
)

// suspiciousPatterns are matched case-insensitively against the scan
// window of a document. This is a heuristic content check, not a virus
// scanner.
var suspiciousPatterns = []string{
	"<script",
	"eval(",
	"exec(",
	"javascript:",
}

// scanContent searches the given bytes for disallowed patterns. It
// returns a description of the first match and true when one is found.
func scanContent(data []byte) (string, bool) {
	content := strings.ToLower(string(data))
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(content, pattern) {
			return fmt.Sprintf("suspicious pattern %q detected", pattern), true
		}
	}
	return "", false
}

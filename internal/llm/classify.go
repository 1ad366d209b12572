package llm

import "strings"

// recoverableSignatures are substrings of upstream error messages that
// indicate a transient failure worth retrying: rate limits, timeouts, and
// 5xx server errors. Anything else (4xx client errors, auth failures,
// malformed requests) is treated as non-recoverable.
var recoverableSignatures = []string{
	"rate limit", "429", "500", "502", "503", "504",
	"timeout", "deadline exceeded", "connection reset", "eof",
}

// IsRecoverable classifies an upstream error by matching common transient
// failure signatures in its message, plus any provider-specific signatures
// passed in extra (e.g. Bedrock's "throttl", Gemini's "resource exhausted").
// Every provider package calls this instead of keeping its own copy of the
// substring list.
func IsRecoverable(err error, extra ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range recoverableSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	for _, sig := range extra {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

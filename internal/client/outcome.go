package client

import "strings"

// OutcomeStatus is the classified result of an attendance submission.
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeDuplicate
	OutcomeNoSession
	OutcomeInvalidToken
	OutcomeOther
)

// Outcome pairs the classified status with the message to show the user.
type Outcome struct {
	Status  OutcomeStatus
	Message string
}

// classifyCode maps the backend's structured status/error codes.
func classifyCode(code string) (OutcomeStatus, bool) {
	switch code {
	case "MARKED":
		return OutcomeSuccess, true
	case "DUPLICATE":
		return OutcomeDuplicate, true
	case "NO_SESSION":
		return OutcomeNoSession, true
	case "INVALID_TOKEN":
		return OutcomeInvalidToken, true
	}
	return OutcomeOther, false
}

// classifyText is the legacy fallback for backends that answer with free
// text only. The substrings mirror the historical response wording and are
// checked in an order where the most specific phrasing wins.
func classifyText(body string) OutcomeStatus {
	switch {
	case strings.Contains(body, "already marked"):
		return OutcomeDuplicate
	case strings.Contains(body, "No session"):
		return OutcomeNoSession
	case strings.Contains(body, "Invalid QR token"):
		return OutcomeInvalidToken
	case strings.Contains(body, "successfully"):
		return OutcomeSuccess
	}
	return OutcomeOther
}

// UserMessage renders the outcome the way the scan screen presents it.
func (o Outcome) UserMessage() string {
	switch o.Status {
	case OutcomeSuccess:
		return "✅ " + o.Message
	case OutcomeDuplicate:
		return "⚠️ " + o.Message
	case OutcomeNoSession:
		return "❌ No active session for today. Please contact your administrator."
	case OutcomeInvalidToken:
		return "❌ Invalid QR code. Please scan the correct QR code."
	}
	return "❌ Error: " + o.Message
}

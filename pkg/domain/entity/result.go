package entity

import "fmt"

// Status is the category a single check ends in
type Status int

const (
	StatusAvailable Status = iota
	StatusTaken
	StatusOnAuction
	StatusUnavailable
	StatusTransientError
	StatusProtocolError
)

var statusNames = map[Status]string{
	StatusAvailable:      "available",
	StatusTaken:          "taken",
	StatusOnAuction:      "on_auction",
	StatusUnavailable:    "unavailable",
	StatusTransientError: "transient_error",
	StatusProtocolError:  "protocol_error",
}

// String returns the snake_case name of the status
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsError reports whether the status is one of the error categories
func (s Status) IsError() bool {
	return s == StatusTransientError || s == StatusProtocolError
}

// CheckResult is the outcome of checking one identifier.
// Reason is set for transient errors, HTTPStatus for protocol errors.
type CheckResult struct {
	Status     Status `json:"status"`
	Reason     string `json:"reason,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// Available returns an available result
func Available() CheckResult { return CheckResult{Status: StatusAvailable} }

// Taken returns a taken result
func Taken() CheckResult { return CheckResult{Status: StatusTaken} }

// OnAuction returns an on-auction result
func OnAuction() CheckResult { return CheckResult{Status: StatusOnAuction} }

// Unavailable returns an unavailable (registered but inactive) result
func Unavailable() CheckResult { return CheckResult{Status: StatusUnavailable} }

// TransientError returns a transient error result carrying a short diagnostic
func TransientError(reason string) CheckResult {
	return CheckResult{Status: StatusTransientError, Reason: reason}
}

// ProtocolError returns a protocol error result for an unexpected HTTP status
func ProtocolError(code int) CheckResult {
	return CheckResult{Status: StatusProtocolError, HTTPStatus: code}
}

// String renders the result for log lines
func (r CheckResult) String() string {
	switch r.Status {
	case StatusTransientError:
		return fmt.Sprintf("%s: %s", r.Status, r.Reason)
	case StatusProtocolError:
		return fmt.Sprintf("%s: HTTP %d", r.Status, r.HTTPStatus)
	default:
		return r.Status.String()
	}
}

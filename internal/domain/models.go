package domain

import "time"

// Target is one URL handed to the pool. It is never validated here; the HTTP
// layer rejects what it cannot request.
type Target string

// CheckOutcome is the final result of checking one target after retries.
//
// Exactly one of StatusCode and Error is meaningful: StatusCode is set when
// some attempt got an HTTP response, Error when every attempt failed at the
// transport level.
type CheckOutcome struct {
	URL        string
	StatusCode uint16
	Error      string
	Elapsed    time.Duration
	ObservedAt time.Time
}

func Succeeded(url string, status uint16, elapsed time.Duration, at time.Time) CheckOutcome {
	return CheckOutcome{URL: url, StatusCode: status, Elapsed: elapsed, ObservedAt: at}
}

// Failed builds an error outcome. An empty message is replaced so the
// outcome can never be mistaken for a success.
func Failed(url, msg string, elapsed time.Duration, at time.Time) CheckOutcome {
	if msg == "" {
		msg = "unknown error"
	}
	return CheckOutcome{URL: url, Error: msg, Elapsed: elapsed, ObservedAt: at}
}

// OK reports whether the target answered with any HTTP status.
func (o CheckOutcome) OK() bool { return o.Error == "" }

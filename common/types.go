// Package common holds the wire types shared between the relayq daemon
// and its clients. Both transports (plain TCP and WebSocket) exchange
// exactly these JSON shapes.
package common

import "time"

// Submission is the untrusted payload a producer sends to schedule a
// deferred call. It mirrors the public wire format:
//
//	{
//	  "title": "...",
//	  "address": {"type": "http"|"socket", "link": "..."},
//	  "settings": {"time": <seconds>, "data": {...}}
//	}
//
// Pointer fields distinguish "absent" from "zero" so that validation can
// report the missing key precisely.
type Submission struct {
	Title    string              `json:"title"`
	Address  *SubmissionAddress  `json:"address"`
	Settings *SubmissionSettings `json:"settings"`
}

// SubmissionAddress describes the dispatch target of a submission.
type SubmissionAddress struct {
	Type string `json:"type"`
	Link string `json:"link"`
}

// SubmissionSettings carries the delay and the optional request data.
// Time is the delay in seconds before the call fires; Data may contain a
// "headers" entry which is either a header map or the literal "auto".
type SubmissionSettings struct {
	Time *float64       `json:"time"`
	Data map[string]any `json:"data,omitempty"`
}

// Response is the daemon's reply to a single submission.
type Response struct {
	Ok      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Message *SubmitResult `json:"message,omitempty"`
}

// SubmitResult reports the accepted task back to the producer.
type SubmitResult struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
	Pending  int       `json:"pending"`
}

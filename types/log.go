package types

import "strings"

// Alert is a matched log line, forwarded to the log writers
type Alert struct {
	Keyword  string `json:"keyword"`
	Path     string `json:"path"`
	Line     string `json:"line"`
	Hostname string `json:"hostname"`
	Datetime string `json:"datetime"`
}

// Message is a payload pushed to every subscriber
type Message struct {
	Kind string
	Text string
}

const (
	// KindHeartbeat .
	KindHeartbeat = "heartbeat"
	// KindAlert .
	KindAlert = "alert"
)

// Encode returns the wire bytes of the message, with a trailing newline when framed
func (m Message) Encode(framed bool) []byte {
	if framed {
		return []byte(m.Text + "\n")
	}
	return []byte(m.Text)
}

// MatchKeyword reports whether the line contains the keyword, case-sensitive
func MatchKeyword(line, keyword string) bool {
	return keyword != "" && strings.Contains(line, keyword)
}

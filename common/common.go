package common

const (
	// HeartbeatToken is sent to every subscriber on each heartbeat tick
	HeartbeatToken = "keep-alive"
	// AlertPrefix is prepended to every matched log line
	AlertPrefix = "Keyword alert: "

	// FramingLine terminates every message with a newline
	FramingLine = "line"
	// FramingRaw writes messages without any delimiter
	FramingRaw = "raw"

	// DateTimeFormat .
	DateTimeFormat = "2006-01-02 15:04:05.999999"

	// ForwardDiscard disables alert forwarding
	ForwardDiscard = "__discard__"

	// ReceiveBufferSize is the read size of the per-connection receiver
	ReceiveBufferSize = 1024
)

package types

import (
	"strings"

	"github.com/balusreekanth/LogCast/common"
)

// NewHeartbeat returns the liveness token message
func NewHeartbeat() Message {
	return Message{Kind: KindHeartbeat, Text: common.HeartbeatToken}
}

// NewAlert builds the alert for a matched line
func NewAlert(line string) Message {
	return Message{Kind: KindAlert, Text: common.AlertPrefix + strings.TrimSpace(line)}
}

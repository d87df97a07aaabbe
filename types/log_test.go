package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAlert(t *testing.T) {
	m := NewAlert("user bob LoggedIn at 10:00\n")
	assert.Equal(t, "Keyword alert: user bob LoggedIn at 10:00", m.Text)
	assert.Equal(t, KindAlert, m.Kind)
	assert.Equal(t, []byte("Keyword alert: user bob LoggedIn at 10:00\n"), m.Encode(true))
	assert.Equal(t, []byte("Keyword alert: user bob LoggedIn at 10:00"), m.Encode(false))

	hb := NewHeartbeat()
	assert.Equal(t, "keep-alive", hb.Text)
}

func TestMatchKeyword(t *testing.T) {
	assert.True(t, MatchKeyword("user bob LoggedIn", "LoggedIn"))
	assert.True(t, MatchKeyword("LoggedIn LoggedIn LoggedIn", "LoggedIn"))
	assert.False(t, MatchKeyword("user bob loggedin", "LoggedIn"))
	assert.False(t, MatchKeyword("anything", ""))
}

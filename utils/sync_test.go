package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicBool(t *testing.T) {
	var a AtomicBool
	assert.False(t, a.Bool())
	assert.True(t, a.CompareAndSet())
	assert.True(t, a.Bool())
	assert.False(t, a.CompareAndSet())
	a.Unset()
	assert.False(t, a.Bool())
}

package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
	assert.Len(t, Short(), 8)

	prev := NewFunc
	NewFunc = func() string { return "abc" }
	defer func() { NewFunc = prev }()
	assert.Equal(t, "abc", Short())
}

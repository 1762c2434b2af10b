package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvValue(t *testing.T) {
	t.Parallel()

	env := []string{"LANG=en_US.UTF-8", "COLORTERM=truecolor", "EMPTY="}
	assert.Equal(t, "truecolor", envValue(env, "COLORTERM"))
	assert.Equal(t, "", envValue(env, "EMPTY"))
	assert.Equal(t, "", envValue(env, "TERM"))
}

func TestSizeTracker(t *testing.T) {
	t.Parallel()

	s := newSizeTracker(80, 24)
	w, h, err := s.getSize()
	assert.NoError(t, err)
	assert.Equal(t, [2]int{80, 24}, [2]int{w, h})

	s.update(120, 40)
	w, h, _ = s.getSize()
	assert.Equal(t, [2]int{120, 40}, [2]int{w, h})
}

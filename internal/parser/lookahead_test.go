package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_TriggerWithPrevious(t *testing.T) {
	lines := normalize([]string{"+ yes", "% do you like pie", "- great"})

	st := resolve(lines, 0)
	assert.Equal(t, "yes", st.arg)
	assert.Equal(t, "do you like pie", st.previous)
	assert.Equal(t, 1, st.consumed)
}

func TestResolve_TriggerContinuationClearsPrevious(t *testing.T) {
	lines := normalize([]string{"+ hello", "^ there", "- hi"})

	st := resolve(lines, 0)
	assert.Equal(t, "hellothere", st.arg)
	assert.Empty(t, st.previous)
}

func TestResolve_ReplyContinuation(t *testing.T) {
	lines := normalize([]string{
		"- Hello ",
		"^ there,",
		"",
		"^  friend.",
		"+ next",
		"^ not mine",
	})

	st := resolve(lines, 0)
	assert.Equal(t, "Hellothere,friend.", st.arg)
	assert.Equal(t, 2, st.consumed)
}

func TestResolve_ReplySkipsPrevious(t *testing.T) {
	lines := normalize([]string{"- a", "% ignored", "^ b"})

	st := resolve(lines, 0)
	assert.Equal(t, "ab", st.arg)
}

func TestResolve_DefinitionKeepsLineBreaks(t *testing.T) {
	lines := normalize([]string{
		"! array colors = red green",
		"^ blue",
		"^ light\\sgray",
		"% stop here",
		"^ not reached",
	})

	st := resolve(lines, 0)
	assert.Equal(t, "array colors = red green<crlf>blue<crlf>light\\sgray", st.arg)
}

func TestResolve_StopsAtOtherCommand(t *testing.T) {
	lines := normalize([]string{"- a", "- b", "^ c"})

	st := resolve(lines, 0)
	assert.Equal(t, "a", st.arg)
	assert.Zero(t, st.consumed)
}

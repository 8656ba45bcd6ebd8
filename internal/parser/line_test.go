package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DropsBlankAndComments(t *testing.T) {
	lines := normalize([]string{
		"",
		"   \t",
		"// a comment",
		"+ hello\r",
		"/* start",
		"- inside the block",
		"end */",
		"- hi",
	})

	require.Len(t, lines, 2)
	assert.Equal(t, Line{Num: 4, Cmd: '+', Arg: "hello", Text: "+ hello"}, lines[0])
	assert.Equal(t, 8, lines[1].Num)
	assert.Equal(t, "hi", lines[1].Arg)
}

func TestNormalize_SingleLineBlockComment(t *testing.T) {
	lines := normalize([]string{"/* short */", "+ hello"})

	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0].Arg)
}

func TestNormalize_ObjectBodyKept(t *testing.T) {
	lines := normalize([]string{
		"> object f javascript",
		"// helper",
		"var a = 1;",
		"",
		"/* not a block */",
		"return a;",
		"< object",
		"// dropped again",
		"+ hi",
	})

	require.Len(t, lines, 8)
	assert.Equal(t, '>', lines[0].Cmd)
	var body []string
	for _, ln := range lines[1:6] {
		assert.Equal(t, rune(0), ln.Cmd)
		body = append(body, ln.Text)
	}
	assert.Equal(t, []string{"// helper", "var a = 1;", "", "/* not a block */", "return a;"}, body)
	assert.Equal(t, Line{Num: 7, Cmd: '<', Arg: "object", Text: "< object"}, lines[6])
	assert.Equal(t, "hi", lines[7].Arg)
}

func TestNormalize_ObjectWithoutNameIsNotABody(t *testing.T) {
	lines := normalize([]string{"> object", "", "+ hi"})

	require.Len(t, lines, 2)
	assert.Equal(t, '+', lines[1].Cmd)
}

func TestNormalize_KeepsUnknownCommands(t *testing.T) {
	lines := normalize([]string{"? what"})

	require.Len(t, lines, 1)
	assert.Equal(t, '?', lines[0].Cmd)
	assert.False(t, isCommand(lines[0].Cmd))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		cmd  rune
		arg  string
	}{
		{"trigger", "+   hello bot", '+', "hello bot"},
		{"no space", "-hi", '-', "hi"},
		{"inline comment", "- hello // greet them", '-', "hello"},
		{"url is not a comment", "- see http://example.com", '-', "see http://example.com"},
		{"bare command", "^", '^', ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, arg := classify(tt.in)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

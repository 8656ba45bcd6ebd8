package parser

import (
	"strings"
	"unicode/utf8"
)

const whitespace = " \t\r\n"

// Line is a normalized, non-empty source line split into command and argument.
type Line struct {
	Num  int    // 1-based line number in the document
	Cmd  rune   // command character; 0 for object body lines
	Arg  string // trimmed argument, inline comment removed
	Text string // the whole trimmed line
}

// normalize drops blank lines and comments and classifies what remains.
// Object bodies are kept line for line, blank and comment lines included,
// up to the "< object" terminator.
func normalize(code []string) []Line {
	lines := make([]Line, 0, len(code))
	comment, object := false, false

	for i, raw := range code {
		text := strings.Trim(raw, whitespace)

		if object {
			cmd, arg := classify(text)
			if cmd == '<' && arg == "object" {
				object = false
				lines = append(lines, Line{Num: i + 1, Cmd: cmd, Arg: arg, Text: text})
				continue
			}
			lines = append(lines, Line{Num: i + 1, Arg: text, Text: text})
			continue
		}
		if comment {
			if strings.Contains(text, "*/") {
				comment = false
			}
			continue
		}
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		if strings.HasPrefix(text, "/*") {
			// "/* ... */" on one line doesn't open a block.
			comment = !strings.Contains(text[2:], "*/")
			continue
		}

		cmd, arg := classify(text)
		lines = append(lines, Line{Num: i + 1, Cmd: cmd, Arg: arg, Text: text})
		object = cmd == '>' && opensObject(arg)
	}
	return lines
}

// opensObject reports whether a label argument starts an object body.
func opensObject(arg string) bool {
	parts := strings.Fields(arg)
	return len(parts) > 1 && parts[0] == "object"
}

// classify splits a trimmed line into its command character and argument.
func classify(text string) (rune, string) {
	cmd, size := utf8.DecodeRuneInString(text)
	arg := strings.Trim(text[size:], whitespace)

	if i := strings.Index(arg, " // "); i > -1 {
		arg = strings.Trim(arg[:i], whitespace)
	}
	return cmd, arg
}

func isCommand(cmd rune) bool {
	switch cmd {
	case '!', '>', '<', '+', '-', '%', '^', '@', '*':
		return true
	}
	return false
}

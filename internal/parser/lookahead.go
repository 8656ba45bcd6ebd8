package parser

// statement is a line with its continuation lines folded in.
type statement struct {
	arg      string
	previous string // %Previous qualifier, only for '+'
	consumed int    // ^ and % lines scanned past
}

// resolve looks past lines[i] for ^Continue and %Previous lines. It never
// mutates anything; the caller applies the result.
func resolve(lines []Line, i int) statement {
	cur := lines[i]
	st := statement{arg: cur.Arg}

	for _, next := range lines[i+1:] {
		if next.Arg == "" {
			continue
		}
		if next.Cmd != '^' && next.Cmd != '%' {
			break
		}

		switch cur.Cmd {
		case '+':
			if next.Cmd == '%' {
				st.previous = next.Arg
				st.consumed++
				return st
			}
			st.previous = ""
			st.arg += next.Arg
		case '!':
			if next.Cmd != '^' {
				return st
			}
			st.arg += crlf + next.Arg
		default:
			if next.Cmd == '^' {
				st.arg += next.Arg
			}
		}
		st.consumed++
	}
	return st
}

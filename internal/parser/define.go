package parser

import (
	"strconv"
	"strings"
)

const (
	// undefined on the right-hand side deletes a definition.
	undefined = "<undef>"
	// crlf joins the ^Continue lines of a definition.
	crlf = "<crlf>"
)

// define handles a "! type name = value" line.
func (p *Parser) define(st *state, ln Line, arg string) error {
	what, is, _ := strings.Cut(arg, "=")
	what = strings.Trim(what, whitespace)
	is = strings.Trim(is, whitespace)

	if what == "version" {
		return p.version(st, ln, is)
	}

	kind, name, ok := strings.Cut(what, " ")
	name = strings.Trim(name, whitespace)
	if !ok || name == "" {
		p.warn(st, ln, "Malformed definition %q", arg)
		return nil
	}
	p.trace(st, ln, "Definition type=%s name=%s value=%s", kind, name, is)

	if kind == "array" {
		if is == undefined {
			delete(p.brain.Arrays, name)
		} else {
			p.brain.Arrays[name] = splitArray(is)
		}
		return nil
	}

	// Only arrays keep the line structure of ^Continue lines.
	is = strings.ReplaceAll(is, crlf, "")

	var table map[string]string
	switch kind {
	case "global":
		table = p.brain.Globals
	case "var", "bot":
		table = p.brain.Vars
	case "sub":
		table = p.brain.Subs
	case "person":
		table = p.brain.Person
	default:
		p.warn(st, ln, "Unknown definition type %q", kind)
		return nil
	}

	if is == undefined {
		delete(table, name)
	} else {
		table[name] = is
	}
	return nil
}

func (p *Parser) version(st *state, ln Line, is string) error {
	v, err := strconv.ParseFloat(is, 64)
	if err != nil {
		p.warn(st, ln, "Invalid version %q", is)
		return nil
	}
	if v > p.supported {
		return &VersionError{File: st.file, Line: ln.Num, Declared: v, Supported: p.supported}
	}
	p.trace(st, ln, "Using RiveScript version %g", v)
	p.brain.Version = v
	return nil
}

// splitArray turns an array definition into its fields. Each ^Continue part
// is split on pipes when it has any, otherwise on runs of whitespace.
func splitArray(value string) []string {
	fields := []string{}
	for _, part := range strings.Split(value, crlf) {
		if strings.Contains(part, "|") {
			for _, f := range strings.Split(part, "|") {
				if f != "" {
					fields = append(fields, f)
				}
			}
			continue
		}
		fields = append(fields, strings.Fields(part)...)
	}

	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, `\s`, " ")
	}
	return fields
}

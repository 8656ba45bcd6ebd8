// Package parser compiles RiveScript documents into a model.Brain.
//
// A document is a sequence of lines, each starting with a one-character
// command:
//
//	! definition      > label open     < label close
//	+ trigger         - reply          @ redirect
//	* condition       % previous       ^ continuation
//
// Parsing never fails on malformed lines; those are reported to the
// Reporter and skipped. The only fatal condition is a "! version" directive
// newer than the supported version.
package parser

import (
	"fmt"
	"strings"

	"github.com/rcliao/rivebrain/internal/model"
)

// DefaultSupportedVersion is the newest document syntax version accepted.
const DefaultSupportedVersion = 2.0

// Options configures a Parser.
type Options struct {
	SupportedVersion float64  // 0 means DefaultSupportedVersion
	Reporter         Reporter // nil discards diagnostics
}

// Parser feeds documents into one brain. It is not safe for concurrent use.
type Parser struct {
	brain     *model.Brain
	supported float64
	reporter  Reporter
}

// New returns a parser that accumulates into brain.
func New(brain *model.Brain, opts Options) *Parser {
	p := &Parser{
		brain:     brain,
		supported: opts.SupportedVersion,
		reporter:  opts.Reporter,
	}
	if p.supported <= 0 {
		p.supported = DefaultSupportedVersion
	}
	if p.reporter == nil {
		p.reporter = discard{}
	}
	return p
}

// Brain returns the knowledge base being built.
func (p *Parser) Brain() *model.Brain {
	return p.brain
}

// Parse parses the lines of one document. file only labels diagnostics.
// On a *VersionError the rest of the document is skipped; whatever was
// parsed before it stays in the brain.
func (p *Parser) Parse(file string, code []string) error {
	p.reporter.Report(Diagnostic{Severity: Trace, File: file, Message: "Parsing " + file})

	lines := normalize(code)
	st := newState(file)

	for i, ln := range lines {
		if st.object != nil {
			if ln.Cmd == '<' && ln.Arg == "object" {
				p.trace(st, ln, "End object %s", st.object.Name)
				st.object = nil
				continue
			}
			st.object.Code = append(st.object.Code, ln.Text)
			continue
		}

		if !isCommand(ln.Cmd) {
			p.warn(st, ln, "Unrecognized command %q", string(ln.Cmd))
			continue
		}

		stmt := resolve(lines, i)
		if ln.Cmd == '+' {
			st.previous = stmt.previous
		}
		p.trace(st, ln, "Cmd [%c] Line: %s (Topic: %s)", ln.Cmd, stmt.arg, st.topic)

		if err := p.handle(st, ln, stmt.arg); err != nil {
			return err
		}
	}

	if st.object != nil {
		p.warn(st, Line{}, "Object %s is never closed", st.object.Name)
	}
	return nil
}

func (p *Parser) handle(st *state, ln Line, arg string) error {
	switch ln.Cmd {
	case '!':
		return p.define(st, ln, arg)
	case '>':
		p.openLabel(st, ln, arg)
	case '<':
		p.closeLabel(st, ln, arg)
	case '+':
		st.trigger = arg
		p.brain.DropTrigger(st.topic, st.previous, arg)
	case '-':
		if st.trigger == "" {
			p.warn(st, ln, "Reply found before a trigger")
			return nil
		}
		trig := p.brain.EnsureTrigger(st.topic, st.previous, st.trigger)
		trig.Replies = append(trig.Replies, arg)
	case '@':
		if st.trigger == "" {
			p.warn(st, ln, "Redirect found before a trigger")
			return nil
		}
		p.brain.EnsureTrigger(st.topic, st.previous, st.trigger).Redirect = arg
	case '*':
		if st.trigger == "" {
			p.warn(st, ln, "Condition found before a trigger")
			return nil
		}
		trig := p.brain.EnsureTrigger(st.topic, st.previous, st.trigger)
		trig.Conditions = append(trig.Conditions, arg)
	case '%', '^':
		// Folded into the preceding statement by resolve.
	}
	return nil
}

func (p *Parser) openLabel(st *state, ln Line, arg string) {
	parts := strings.Fields(arg)
	if len(parts) == 0 {
		p.warn(st, ln, "Empty label")
		return
	}
	kind, name := parts[0], ""
	if len(parts) > 1 {
		name = parts[1]
	}

	switch kind {
	case "begin":
		st.enterTopic(model.BeginTopic)
		p.brain.EnsureTopic(model.BeginTopic)
	case "topic":
		if name == "" {
			p.warn(st, ln, "Topic label without a name")
			return
		}
		st.enterTopic(name)
		p.linkTopic(st, ln, name, parts[2:])
	case "object":
		if name == "" {
			p.warn(st, ln, "Object label without a name")
			return
		}
		obj := &model.Object{Name: name}
		if len(parts) > 2 {
			obj.Lang = parts[2]
		}
		p.trace(st, ln, "Found an object definition named %s of language %s", obj.Name, obj.Lang)
		p.brain.Objects[name] = obj
		st.object = obj
	default:
		p.warn(st, ln, "Unknown label type %q", kind)
	}
}

// linkTopic applies "inherits a b includes c" style words to topic name.
func (p *Parser) linkTopic(st *state, ln Line, name string, words []string) {
	topic := p.brain.EnsureTopic(name)

	mode := ""
	for _, w := range words {
		switch w {
		case "inherits", "includes":
			mode = w
			continue
		}

		switch mode {
		case "inherits":
			topic.Inherits = appendUnique(topic.Inherits, w)
		case "includes":
			topic.Includes = appendUnique(topic.Includes, w)
		default:
			p.warn(st, ln, "Topic %s: unexpected %q", name, w)
			continue
		}
		p.brain.EnsureTopic(w)
	}
}

func (p *Parser) closeLabel(st *state, ln Line, arg string) {
	switch arg {
	case "begin", "topic":
		st.enterTopic(model.DefaultTopic)
	case "object":
		p.warn(st, ln, "Object close without an open object")
	default:
		p.warn(st, ln, "Unknown label type %q", arg)
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func (p *Parser) trace(st *state, ln Line, format string, args ...any) {
	p.reporter.Report(Diagnostic{Severity: Trace, File: st.file, Line: ln.Num, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) warn(st *state, ln Line, format string, args ...any) {
	p.reporter.Report(Diagnostic{Severity: Warning, File: st.file, Line: ln.Num, Message: fmt.Sprintf(format, args...)})
}

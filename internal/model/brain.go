// Package model defines the knowledge base data types.
package model

import "sort"

// DefaultTopic is the topic triggers land in outside of any topic label.
const DefaultTopic = "random"

// BeginTopic is the topic opened by a "> begin" label.
const BeginTopic = "__begin__"

// Trigger is a pattern-keyed rule: its replies, conditions and redirect.
type Trigger struct {
	Replies    []string `json:"replies,omitempty" yaml:"replies,omitempty"`
	Conditions []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Redirect   string   `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

// Topic groups triggers and records edges to other topics.
type Topic struct {
	Triggers map[string]*Trigger `json:"triggers" yaml:"triggers"`
	Includes []string            `json:"includes,omitempty" yaml:"includes,omitempty"`
	Inherits []string            `json:"inherits,omitempty" yaml:"inherits,omitempty"`
}

// Object is an object macro block. Its code is kept but never executed.
type Object struct {
	Name string   `json:"name" yaml:"name"`
	Lang string   `json:"lang,omitempty" yaml:"lang,omitempty"`
	Code []string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Brain is the compiled knowledge base shared by every loaded document.
type Brain struct {
	Version  float64                                   `json:"version,omitempty" yaml:"version,omitempty"`
	Topics   map[string]*Topic                         `json:"topics" yaml:"topics"`
	Previous map[string]map[string]map[string]*Trigger `json:"previous,omitempty" yaml:"previous,omitempty"`
	Globals  map[string]string                         `json:"globals,omitempty" yaml:"globals,omitempty"`
	Vars     map[string]string                         `json:"vars,omitempty" yaml:"vars,omitempty"`
	Subs     map[string]string                         `json:"subs,omitempty" yaml:"subs,omitempty"`
	Person   map[string]string                         `json:"person,omitempty" yaml:"person,omitempty"`
	Arrays   map[string][]string                       `json:"arrays,omitempty" yaml:"arrays,omitempty"`
	Objects  map[string]*Object                        `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// NewBrain returns an empty knowledge base.
func NewBrain() *Brain {
	return &Brain{
		Topics:   make(map[string]*Topic),
		Previous: make(map[string]map[string]map[string]*Trigger),
		Globals:  make(map[string]string),
		Vars:     make(map[string]string),
		Subs:     make(map[string]string),
		Person:   make(map[string]string),
		Arrays:   make(map[string][]string),
		Objects:  make(map[string]*Object),
	}
}

// Topic returns the named topic, or nil.
func (b *Brain) Topic(name string) *Topic {
	return b.Topics[name]
}

// TopicNames returns all topic names in sorted order.
func (b *Brain) TopicNames() []string {
	names := make([]string, 0, len(b.Topics))
	for name := range b.Topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PreviousTriggers returns the triggers of topic that only apply after the bot said
// something matching previous.
func (b *Brain) PreviousTriggers(topic, previous string) map[string]*Trigger {
	return b.Previous[topic][previous]
}

// Global returns a global variable.
func (b *Brain) Global(name string) (string, bool) {
	v, ok := b.Globals[name]
	return v, ok
}

// Var returns a bot variable.
func (b *Brain) Var(name string) (string, bool) {
	v, ok := b.Vars[name]
	return v, ok
}

// Sub returns a substitution.
func (b *Brain) Sub(name string) (string, bool) {
	v, ok := b.Subs[name]
	return v, ok
}

// PersonSub returns a person substitution.
func (b *Brain) PersonSub(name string) (string, bool) {
	v, ok := b.Person[name]
	return v, ok
}

// Array returns a named array.
func (b *Brain) Array(name string) ([]string, bool) {
	v, ok := b.Arrays[name]
	return v, ok
}

// EnsureTopic returns the named topic, creating it on first reference.
func (b *Brain) EnsureTopic(name string) *Topic {
	t, ok := b.Topics[name]
	if !ok {
		t = &Topic{Triggers: make(map[string]*Trigger)}
		b.Topics[name] = t
	}
	return t
}

// EnsureTrigger returns the trigger for pattern in topic. A non-empty
// previous addresses the previous-reply index instead of the topic itself.
func (b *Brain) EnsureTrigger(topic, previous, pattern string) *Trigger {
	var triggers map[string]*Trigger
	if previous == "" {
		triggers = b.EnsureTopic(topic).Triggers
	} else {
		byPrev, ok := b.Previous[topic]
		if !ok {
			byPrev = make(map[string]map[string]*Trigger)
			b.Previous[topic] = byPrev
		}
		triggers, ok = byPrev[previous]
		if !ok {
			triggers = make(map[string]*Trigger)
			byPrev[previous] = triggers
		}
	}

	trig, ok := triggers[pattern]
	if !ok {
		trig = &Trigger{}
		triggers[pattern] = trig
	}
	return trig
}

// DropTrigger forgets pattern so that a redeclared trigger starts over.
func (b *Brain) DropTrigger(topic, previous, pattern string) {
	if previous == "" {
		if t, ok := b.Topics[topic]; ok {
			delete(t.Triggers, pattern)
		}
		return
	}
	delete(b.Previous[topic][previous], pattern)
}

// Counts summarizes the size of a brain.
type Counts struct {
	Topics   int `json:"topics" yaml:"topics"`
	Triggers int `json:"triggers" yaml:"triggers"`
	Previous int `json:"previous" yaml:"previous"`
	Replies  int `json:"replies" yaml:"replies"`
	Globals  int `json:"globals" yaml:"globals"`
	Vars     int `json:"vars" yaml:"vars"`
	Subs     int `json:"subs" yaml:"subs"`
	Person   int `json:"person" yaml:"person"`
	Arrays   int `json:"arrays" yaml:"arrays"`
	Objects  int `json:"objects" yaml:"objects"`
}

// Count tallies the brain's contents.
func (b *Brain) Count() Counts {
	c := Counts{
		Topics:  len(b.Topics),
		Globals: len(b.Globals),
		Vars:    len(b.Vars),
		Subs:    len(b.Subs),
		Person:  len(b.Person),
		Arrays:  len(b.Arrays),
		Objects: len(b.Objects),
	}
	for _, t := range b.Topics {
		c.Triggers += len(t.Triggers)
		for _, trig := range t.Triggers {
			c.Replies += len(trig.Replies)
		}
	}
	for _, byPrev := range b.Previous {
		for _, triggers := range byPrev {
			c.Previous += len(triggers)
			for _, trig := range triggers {
				c.Replies += len(trig.Replies)
			}
		}
	}
	return c
}

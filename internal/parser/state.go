package parser

import "github.com/rcliao/rivebrain/internal/model"

// state is what the parser carries from one line to the next within a
// single document.
type state struct {
	file     string
	topic    string
	trigger  string        // current +Trigger, empty before the first one
	previous string        // %Previous qualifier of the current trigger
	object   *model.Object // open object block, if any
}

func newState(file string) *state {
	return &state{file: file, topic: model.DefaultTopic}
}

// enterTopic switches to topic and drops the trigger context.
func (st *state) enterTopic(topic string) {
	st.topic = topic
	st.trigger = ""
	st.previous = ""
}

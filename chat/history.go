package chat

// History is the ordered, append-only record of one conversation. It is owned
// by the caller of the completion engine; the engine may append but never
// removes or reorders entries.
//
// History is not safe for concurrent use. Running two completions over the
// same History at once violates the engine contract.
type History struct {
	msgs []Message
}

// NewHistory returns a history seeded with the given messages.
func NewHistory(msgs ...Message) *History {
	h := &History{msgs: make([]Message, 0, len(msgs)+16)}
	h.msgs = append(h.msgs, msgs...)
	return h
}

// Append adds messages to the end of the history.
func (h *History) Append(msgs ...Message) {
	h.msgs = append(h.msgs, msgs...)
}

// Messages returns the current messages oldest to newest. The returned slice
// must be treated as read-only; it aliases the history's backing array.
func (h *History) Messages() []Message {
	return h.msgs
}

// Len returns the number of messages recorded.
func (h *History) Len() int {
	return len(h.msgs)
}

// Last returns the newest message and true, or a zero Message and false when
// the history is empty.
func (h *History) Last() (Message, bool) {
	if len(h.msgs) == 0 {
		return Message{}, false
	}
	return h.msgs[len(h.msgs)-1], true
}

// Package message defines the single data-carrying type the graph moves:
// an opaque, shared-ownership byte buffer.
//
// Design principles, carried over from the teacher's message package:
//   - Infrastructure-agnostic: a Message carries only bytes, never routing
//     or storage metadata.
//   - Shared ownership: once a Message has been handed to a Port it is
//     treated as read-only by every observer; Go's garbage collector frees
//     it once the last holder drops its reference, so there is no explicit
//     refcounting to get wrong.
//   - No framing: routing is by graph topology, not payload inspection,
//     except inside domain plug-ins (Framer, Prefix Router) that are
//     explicitly in the business of looking at bytes.
package message

// Message is an owned byte buffer with a length. Zero-length messages are
// permitted and are a no-op in most consumers.
type Message struct {
	payload []byte
}

// New constructs a Message with a freshly allocated payload of size bytes
// (all zero).
func New(size int) *Message {
	return &Message{payload: make([]byte, size)}
}

// NewFromBytes constructs a Message by copying src; the caller's slice
// remains theirs to mutate afterward.
func NewFromBytes(src []byte) *Message {
	payload := make([]byte, len(src))
	copy(payload, src)
	return &Message{payload: payload}
}

// wrap constructs a Message that takes ownership of buf without copying.
// It is the implementation behind the exported Wrap, which producers that
// already hold a buffer they will not mutate again use (e.g. a Framer
// handing off an extracted frame).
func wrap(buf []byte) *Message {
	return &Message{payload: buf}
}

// Wrap constructs a Message that takes ownership of buf without copying it.
// Callers must not mutate buf after calling Wrap.
func Wrap(buf []byte) *Message {
	return wrap(buf)
}

// Bytes returns the message's byte range. Callers must treat it as
// read-only once the message has left their hands.
func (m *Message) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.payload
}

// Len returns the number of bytes the message carries.
func (m *Message) Len() int {
	if m == nil {
		return 0
	}
	return len(m.payload)
}

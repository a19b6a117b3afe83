package testutil

import (
	"sync"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
)

// RecordingSender captures every message sent to each connection
type RecordingSender struct {
	mu       sync.Mutex
	messages map[model.ConnID][]protocol.Envelope

	// Fail makes Send return the given error for a connection
	Fail map[model.ConnID]error
}

// NewRecordingSender creates an empty RecordingSender
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{
		messages: make(map[model.ConnID][]protocol.Envelope),
		Fail:     make(map[model.ConnID]error),
	}
}

// Send records the decoded message
func (s *RecordingSender) Send(conn model.ConnID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Fail[conn]; err != nil {
		return err
	}
	env, err := protocol.Decode(data)
	if err != nil {
		return err
	}
	s.messages[conn] = append(s.messages[conn], env)
	return nil
}

// Messages returns everything sent to a connection, in order
func (s *RecordingSender) Messages(conn model.ConnID) []protocol.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Envelope, len(s.messages[conn]))
	copy(out, s.messages[conn])
	return out
}

// OfType returns the messages of one type sent to a connection
func (s *RecordingSender) OfType(conn model.ConnID, t protocol.MessageType) []protocol.Envelope {
	var out []protocol.Envelope
	for _, env := range s.Messages(conn) {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

// Last returns the most recent message of one type sent to a connection
func (s *RecordingSender) Last(conn model.ConnID, t protocol.MessageType) (protocol.Envelope, bool) {
	msgs := s.OfType(conn, t)
	if len(msgs) == 0 {
		return protocol.Envelope{}, false
	}
	return msgs[len(msgs)-1], true
}

// Clear forgets all recorded messages
func (s *RecordingSender) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make(map[model.ConnID][]protocol.Envelope)
}

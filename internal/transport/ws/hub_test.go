package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/testutil"
)

func TestHubSendDeliversToClient(t *testing.T) {
	h := NewHub(testutil.NopLogger())
	c1 := NewClient("c1", "main", nil)
	c2 := NewClient("c2", "main", nil)
	h.Register(c1)
	h.Register(c2)

	require.NoError(t, h.Send("c1", []byte("hello")))

	assert.Equal(t, []byte("hello"), <-c1.send)
	select {
	case <-c2.send:
		t.Fatal("c2 should not receive c1's message")
	default:
	}
}

func TestHubSendUnknownConnection(t *testing.T) {
	h := NewHub(testutil.NopLogger())

	err := h.Send("ghost", []byte("x"))
	assert.ErrorIs(t, err, model.ErrConnectionNotFound)
}

func TestHubSendDropsWhenFull(t *testing.T) {
	h := NewHub(testutil.NopLogger())
	c := NewClient("c1", "main", nil)
	h.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, h.Send("c1", []byte("filler")))
	}

	err := h.Send("c1", []byte("dropped"))
	assert.ErrorIs(t, err, ErrSendBufferFull)
	assert.Len(t, c.send, sendBufferSize)
}

func TestHubUnregisterClosesQueue(t *testing.T) {
	h := NewHub(testutil.NopLogger())
	c := NewClient("c1", "main", nil)
	h.Register(c)

	h.Unregister("c1")

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, h.ClientCount())
	assert.ErrorIs(t, h.Send("c1", []byte("x")), model.ErrConnectionNotFound)
}

func TestHubUnregisterNonexistent(t *testing.T) {
	h := NewHub(testutil.NopLogger())
	assert.NotPanics(t, func() { h.Unregister("nonexistent") })
}

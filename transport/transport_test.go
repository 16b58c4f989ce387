package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSendRecordsCall(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Send(context.Background(), "peer-1", []byte("hi")))

	sent := m.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "peer-1", sent[0].Peer)
	assert.Equal(t, []byte("hi"), sent[0].Data)
}

func TestMockSendFuncOverride(t *testing.T) {
	m := NewMock()
	m.SendFunc = func(ctx context.Context, peer string, data []byte) error {
		return assert.AnError
	}

	err := m.Send(context.Background(), "peer-1", []byte("hi"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, m.SentMessages(), 1)
}

func TestMockEmitDeliversEvent(t *testing.T) {
	m := NewMock()
	m.Emit(Event{Kind: Connected, Peer: "peer-1"})

	ev := <-m.Events()
	assert.Equal(t, Connected, ev.Kind)
	assert.Equal(t, "peer-1", ev.Peer)
}

func TestMockResetClearsSentMessages(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Send(context.Background(), "peer-1", []byte("hi")))
	m.Reset()
	assert.Empty(t, m.SentMessages())
}

func TestMockCloseClosesEventChannel(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Close())

	_, ok := <-m.Events()
	assert.False(t, ok)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "Connected", Connected.String())
	assert.Equal(t, "Disconnected", Disconnected.String())
	assert.Equal(t, "Received", Received.String())
	assert.Equal(t, "Listening", Listening.String())
	assert.Equal(t, "Sent", Sent.String())
}

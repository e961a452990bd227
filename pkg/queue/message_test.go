package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_WireForm(t *testing.T) {
	raw, err := Message{Data: map[string]any{"content": "hi"}, Status: StatusProcessing}.encode()
	require.NoError(t, err)

	msg, err := decodeMessage(string(raw))
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, msg.Status)
	assert.Equal(t, "hi", msg.Data["content"])
	// the status field does not leak into the payload
	_, hasStatus := msg.Data["status"]
	assert.False(t, hasStatus)
}

func TestDecodeMessage_Invalid(t *testing.T) {
	_, err := decodeMessage(`not json`)
	assert.Error(t, err)

	_, err = decodeMessage(`{"status": "exploded"}`)
	assert.Error(t, err)

	_, err = decodeMessage(`{"status": 7}`)
	assert.Error(t, err)
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusComplete.Terminal())
	assert.True(t, StatusExit.Terminal())
	assert.True(t, StatusCancel.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusError.Terminal())
	assert.False(t, Status("").Terminal())
}

package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc": "2.0", "id": 7, "method": "ping"}` + "\n")
	tr := NewTransport(in, &bytes.Buffer{})

	req, err := tr.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
	assert.Equal(t, "7", string(req.ID))

	_, err = tr.ReadMessage()
	assert.Equal(t, io.EOF, err)
}

func TestReadMessageMalformed(t *testing.T) {
	in := bytes.NewBufferString("{not json\n" + `{"jsonrpc": "2.0", "id": 1, "method": "ping"}` + "\n")
	tr := NewTransport(in, &bytes.Buffer{})

	_, err := tr.ReadMessage()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	// A parse failure consumes only its line; the stream stays usable.
	req, err := tr.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
}

func TestReadMessageOversizedLine(t *testing.T) {
	in := &bytes.Buffer{}
	in.WriteString(`{"jsonrpc": "2.0", "method": "`)
	in.Write(bytes.Repeat([]byte("x"), maxMessageBytes+1))
	in.WriteString("\"}\n")
	in.WriteString(`{"jsonrpc": "2.0", "id": 1, "method": "ping"}` + "\n")
	tr := NewTransport(in, &bytes.Buffer{})

	_, err := tr.ReadMessage()
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.NotErrorIs(t, err, ErrParse)

	// The scanner never recovers; the same terminal error repeats.
	_, err = tr.ReadMessage()
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.NotEqual(t, io.EOF, err)
}

func TestWriteNotification(t *testing.T) {
	out := &bytes.Buffer{}
	tr := NewTransport(&bytes.Buffer{}, out)

	require.NoError(t, tr.WriteNotification("notifications/tools/list_changed", nil))
	require.NoError(t, tr.WriteNotification("notifications/progress", map[string]any{"progress": 1}))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first Notification
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "2.0", first.JSONRPC)
	assert.Equal(t, "notifications/tools/list_changed", first.Method)
	assert.Empty(t, first.Params)

	var second Notification
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.JSONEq(t, `{"progress": 1}`, string(second.Params))
}

func TestWriteResponseOnePerLine(t *testing.T) {
	out := &bytes.Buffer{}
	tr := NewTransport(&bytes.Buffer{}, out)

	resp, err := NewResponse(json.RawMessage("1"), map[string]any{"ok": true})
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(resp))
	require.NoError(t, tr.WriteResponse(NewErrorResponse(json.RawMessage("2"), InvalidParams, "bad")))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first Response
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.JSONEq(t, `{"ok": true}`, string(first.Result))

	var second Response
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.NotNil(t, second.Error)
	assert.Equal(t, InvalidParams, second.Error.Code)
}

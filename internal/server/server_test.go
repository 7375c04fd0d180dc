package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceninja/catalog-mcp/internal/probe"
	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/internal/tools"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

func setupServer(t *testing.T, in *bytes.Buffer, out *bytes.Buffer) *Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "catalog_server_test_*.db")
	require.NoError(t, err)
	tmpFile.Close()

	db, err := sql.Open("sqlite3", tmpFile.Name())
	require.NoError(t, err)

	st, err := store.New(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		st.Close()
		os.Remove(tmpFile.Name())
	})

	handler := tools.NewHandler(st, probe.New())
	return New(in, out, st, handler, Config{Name: "catalog-mcp", Version: "test"})
}

func request(t *testing.T, method, id, params string) *mcp.Request {
	t.Helper()
	req := &mcp.Request{JSONRPC: "2.0", Method: method}
	if id != "" {
		req.ID = json.RawMessage(id)
	}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return req
}

func decodeToolResult(t *testing.T, resp *mcp.Response) *mcp.CallToolResult {
	t.Helper()
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	return &result
}

func TestInitialize(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "initialize", "1", "{}"))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result mcp.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "catalog-mcp", result.ServerInfo.Name)
	require.NotNil(t, result.Capabilities.Tools)
	assert.False(t, result.Capabilities.Tools.ListChanged)
	assert.NotNil(t, result.Capabilities.Resources)
}

func TestNotificationGetsNoResponse(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	resp := s.handleRequest(context.Background(), request(t, "notifications/initialized", "", ""))
	assert.Nil(t, resp)
}

func TestListTools(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "tools/list", "2", ""))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result mcp.ListToolsResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Len(t, result.Tools, 29)

	names := map[string]bool{}
	for _, tool := range result.Tools {
		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
		assert.NotEmpty(t, tool.InputSchema, "tool %s has no input schema", tool.Name)
		names[tool.Name] = true
	}
	for _, want := range []string{"create_project", "search_contacts", "check_environment_health"} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestUnknownMethod(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "prompts/list", "3", ""))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.MethodNotFound, resp.Error.Code)
}

func TestPing(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "ping", "4", ""))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{}`, string(resp.Result))
}

func TestCallToolMalformedParams(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "tools/call", "5", `{"name": 42}`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.InvalidParams, resp.Error.Code)
}

func TestCallToolUnknownName(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "tools/call", "6",
		`{"name": "summon_dragons", "arguments": {}}`))
	result := decodeToolResult(t, resp)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "unknown tool")
}

func TestCallToolSchemaViolation(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	// create_project requires name and description
	resp := s.handleRequest(context.Background(), request(t, "tools/call", "7",
		`{"name": "create_project", "arguments": {"name": "Acme"}}`))
	result := decodeToolResult(t, resp)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "invalid arguments for create_project")
}

func TestCallToolWrongArgumentType(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "tools/call", "8",
		`{"name": "get_project_by_id", "arguments": {"id": "not-a-number"}}`))
	result := decodeToolResult(t, resp)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "invalid arguments")
}

func TestCallToolHappyPath(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "tools/call", "9",
		`{"name": "create_project", "arguments": {"name": "Acme", "description": "Flagship"}}`))
	result := decodeToolResult(t, resp)
	require.False(t, result.IsError)

	var project store.Project
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &project))
	assert.Equal(t, "Acme", project.Name)
	assert.NotZero(t, project.ID)
}

func TestListAndReadResources(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	ctx := context.Background()

	_, err := s.store.Projects.Create(ctx, "Acme", "d")
	require.NoError(t, err)

	resp := s.handleRequest(ctx, request(t, "resources/list", "10", ""))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var list mcp.ListResourcesResult
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	require.Len(t, list.Resources, 5)
	assert.Equal(t, "catalog://projects", list.Resources[0].URI)

	resp = s.handleRequest(ctx, request(t, "resources/read", "11", `{"uri": "catalog://projects"}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var read mcp.ReadResourceResult
	require.NoError(t, json.Unmarshal(resp.Result, &read))
	require.Len(t, read.Contents, 1)
	assert.Contains(t, read.Contents[0].Text, "Acme")
	assert.Equal(t, "application/json", read.Contents[0].MimeType)
}

func TestReadResourceUnknownURI(t *testing.T) {
	s := setupServer(t, &bytes.Buffer{}, &bytes.Buffer{})

	resp := s.handleRequest(context.Background(), request(t, "resources/read", "12", `{"uri": "catalog://nope"}`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.InvalidParams, resp.Error.Code)
}

func TestRunSkipsMalformedLine(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}

	in.WriteString("{not json\n")
	in.WriteString(`{"jsonrpc": "2.0", "id": 1, "method": "ping"}` + "\n")

	s := setupServer(t, in, out)
	require.NoError(t, s.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)

	var resp mcp.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Equal(t, "1", string(resp.ID))
	assert.Nil(t, resp.Error)
}

func TestRunStopsOnOversizedLine(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}

	// One line over the transport cap leaves the scanner in a terminal
	// error state; the loop must bail out rather than spin on it.
	in.WriteString(`{"jsonrpc": "2.0", "method": "`)
	in.WriteString(strings.Repeat("x", 4*1024*1024+1))
	in.WriteString("\"}\n")
	in.WriteString(`{"jsonrpc": "2.0", "id": 1, "method": "ping"}` + "\n")

	s := setupServer(t, in, out)
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token too long")
	assert.Empty(t, strings.TrimSpace(out.String()))
}

func TestRunOverWire(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}

	in.WriteString(`{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {}}` + "\n")
	in.WriteString(`{"jsonrpc": "2.0", "method": "notifications/initialized"}` + "\n")
	in.WriteString(`{"jsonrpc": "2.0", "id": 2, "method": "tools/call", "params": {"name": "list_projects", "arguments": {}}}` + "\n")

	s := setupServer(t, in, out)
	require.NoError(t, s.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2) // the notification produces no output

	var first, second mcp.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "1", string(first.ID))
	assert.Equal(t, "2", string(second.ID))
	assert.Nil(t, second.Error)

	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(second.Result, &result))
	assert.False(t, result.IsError)
	assert.JSONEq(t, `[]`, result.Content[0].Text)
}

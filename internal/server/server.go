// Package server adapts the tool handler to the MCP wire protocol: a
// line-delimited JSON-RPC loop over stdio with JSON Schema argument
// validation at the dispatch boundary.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/serviceninja/catalog-mcp/internal/catalog"
	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/internal/tools"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

// Config identifies the server during the initialize handshake.
type Config struct {
	Name    string
	Version string
}

// Server is the MCP catalog server.
type Server struct {
	transport *mcp.Transport
	handler   *tools.Handler
	store     *store.Store
	cfg       Config

	tools     []mcp.Tool
	toolIndex map[string]mcp.Tool
}

// New creates a server reading requests from in and writing responses to out.
func New(in io.Reader, out io.Writer, st *store.Store, handler *tools.Handler, cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "catalog-mcp"
	}
	if cfg.Version == "" {
		cfg.Version = "0.0.0"
	}

	catalogue := catalog.Tools()
	index := make(map[string]mcp.Tool, len(catalogue))
	for _, t := range catalogue {
		index[t.Name] = t
	}

	return &Server{
		transport: mcp.NewTransport(in, out),
		handler:   handler,
		store:     st,
		cfg:       cfg,
		tools:     catalogue,
		toolIndex: index,
	}
}

// Run drives the message loop until EOF or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	logf("serving %d tools as %s %s", len(s.tools), s.cfg.Name, s.cfg.Version)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := s.transport.ReadMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, mcp.ErrParse) {
				logf("dropping malformed message: %v", err)
				continue
			}
			// A scanner failure (an oversized line included) leaves the
			// stream unusable; bail out instead of spinning on it.
			return fmt.Errorf("transport failed: %w", err)
		}

		resp := s.handleRequest(ctx, req)
		if resp != nil {
			if err := s.transport.WriteResponse(resp); err != nil {
				logf("error writing response: %v", err)
			}
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req *mcp.Request) *mcp.Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Notifications get no response.
		return nil
	case "tools/list":
		return s.handleListTools(req)
	case "tools/call":
		return s.handleCallTool(ctx, req)
	case "resources/list":
		return s.handleListResources(req)
	case "resources/read":
		return s.handleReadResource(ctx, req)
	case "ping":
		return s.handlePing(req)
	default:
		return mcp.NewErrorResponse(req.ID, mcp.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *mcp.Request) *mcp.Response {
	result := mcp.InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities: mcp.ServerCapabilities{
			Tools:     &mcp.ToolsCapability{ListChanged: false},
			Resources: &mcp.ResourcesCapability{},
		},
		ServerInfo: mcp.ServerInfo{
			Name:    s.cfg.Name,
			Version: s.cfg.Version,
		},
	}

	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleListTools(req *mcp.Request) *mcp.Response {
	resp, err := mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: s.tools})
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleCallTool(ctx context.Context, req *mcp.Request) *mcp.Response {
	var params mcp.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: "+err.Error())
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	// An unknown tool is a tool-level failure, not a protocol failure:
	// agents expect an isError result they can read, not a dropped call.
	if tool, ok := s.toolIndex[params.Name]; ok {
		if err := validateArgs(tool.Name, tool.InputSchema, args); err != nil {
			result := &mcp.CallToolResult{
				Content: []mcp.ContentBlock{{Type: "text", Text: "Error: " + err.Error()}},
				IsError: true,
			}
			resp, respErr := mcp.NewResponse(req.ID, result)
			if respErr != nil {
				return mcp.NewErrorResponse(req.ID, mcp.InternalError, respErr.Error())
			}
			return resp
		}
	}

	result, err := s.handler.Handle(ctx, params.Name, args)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}

	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handlePing(req *mcp.Request) *mcp.Response {
	resp, _ := mcp.NewResponse(req.ID, map[string]any{})
	return resp
}

func logf(format string, args ...any) {
	// stdout carries the wire; diagnostics go to stderr.
	fmt.Fprintf(os.Stderr, "[catalog-mcp] "+format+"\n", args...)
}

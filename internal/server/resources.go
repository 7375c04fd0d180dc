package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

// Entity collections advertised as MCP resources. Each reads back as the
// JSON listing the matching list tool would produce.
var collections = []mcp.ResourceDescriptor{
	{URI: "catalog://projects", Name: "Projects", Description: "All projects in the catalog", MimeType: "application/json"},
	{URI: "catalog://environments", Name: "Environments", Description: "All environments across projects", MimeType: "application/json"},
	{URI: "catalog://resources", Name: "Resources", Description: "All registered resources", MimeType: "application/json"},
	{URI: "catalog://contacts", Name: "Contacts", Description: "All contacts", MimeType: "application/json"},
	{URI: "catalog://resource-contacts", Name: "Resource contacts", Description: "Resource-contact associations with resolved names", MimeType: "application/json"},
}

func (s *Server) handleListResources(req *mcp.Request) *mcp.Response {
	resp, err := mcp.NewResponse(req.ID, mcp.ListResourcesResult{Resources: collections})
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.Request) *mcp.Response {
	var params mcp.ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: "+err.Error())
	}

	payload, err := s.readCollection(ctx, params.URI)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, err.Error())
	}

	result := mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{
			{URI: params.URI, MimeType: "application/json", Text: payload},
		},
	}
	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) readCollection(ctx context.Context, uri string) (string, error) {
	var v any
	var err error

	switch uri {
	case "catalog://projects":
		v, err = s.store.Projects.List(ctx)
	case "catalog://environments":
		v, err = s.store.Environments.List(ctx, 0)
	case "catalog://resources":
		v, err = s.store.Resources.List(ctx, store.ResourceFilter{})
	case "catalog://contacts":
		v, err = s.store.Contacts.List(ctx)
	case "catalog://resource-contacts":
		v, err = s.store.Links.ListDetails(ctx, 0, 0)
	default:
		return "", fmt.Errorf("unknown resource URI: %s", uri)
	}
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Package tools implements the catalog tool handlers. Every handler takes
// raw JSON arguments (already schema-validated at the dispatch boundary),
// decodes them into its typed input struct, and returns a uniform
// CallToolResult. Business failures become error results, never raw errors
// across the protocol boundary.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/serviceninja/catalog-mcp/internal/probe"
	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

// Handler processes catalog tool calls.
type Handler struct {
	store  *store.Store
	prober *probe.Prober
}

// NewHandler creates a handler over the given store and prober.
func NewHandler(st *store.Store, p *probe.Prober) *Handler {
	return &Handler{store: st, prober: p}
}

// Handle dispatches a tool call by name. The set of names is closed; an
// unknown name yields an error result rather than a transport error.
func (h *Handler) Handle(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	switch name {
	case "create_project":
		return h.createProject(ctx, args)
	case "get_project_by_id":
		return h.getProjectByID(ctx, args)
	case "get_project_by_name":
		return h.getProjectByName(ctx, args)
	case "list_projects":
		return h.listProjects(ctx, args)
	case "update_project":
		return h.updateProject(ctx, args)
	case "delete_project":
		return h.deleteProject(ctx, args)

	case "create_environment":
		return h.createEnvironment(ctx, args)
	case "get_environment":
		return h.getEnvironment(ctx, args)
	case "list_environments":
		return h.listEnvironments(ctx, args)
	case "update_environment":
		return h.updateEnvironment(ctx, args)
	case "delete_environment":
		return h.deleteEnvironment(ctx, args)

	case "create_resource":
		return h.createResource(ctx, args)
	case "get_resource":
		return h.getResource(ctx, args)
	case "list_resources":
		return h.listResources(ctx, args)
	case "update_resource":
		return h.updateResource(ctx, args)
	case "delete_resource":
		return h.deleteResource(ctx, args)

	case "create_contact":
		return h.createContact(ctx, args)
	case "get_contact":
		return h.getContact(ctx, args)
	case "list_contacts":
		return h.listContacts(ctx, args)
	case "search_contacts":
		return h.searchContacts(ctx, args)
	case "update_contact":
		return h.updateContact(ctx, args)
	case "delete_contact":
		return h.deleteContact(ctx, args)

	case "create_resource_contact":
		return h.createResourceContact(ctx, args)
	case "list_resource_contacts":
		return h.listResourceContacts(ctx, args)
	case "update_resource_contact":
		return h.updateResourceContact(ctx, args)
	case "delete_resource_contact":
		return h.deleteResourceContact(ctx, args)

	case "get_resource_health_status":
		return h.getResourceHealthStatus(ctx, args)
	case "get_resource_alive_status":
		return h.getResourceAliveStatus(ctx, args)
	case "check_environment_health":
		return h.checkEnvironmentHealth(ctx, args)

	default:
		return errorResult(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: text}}}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: "Error: " + msg}}, IsError: true}
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(string(b))
}

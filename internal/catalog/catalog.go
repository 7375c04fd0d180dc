// Package catalog declares the static tool catalogue advertised over
// tools/list. Schemas live inline next to the tool they describe; the
// dispatcher compiles them once and validates every call against them.
package catalog

import (
	"encoding/json"

	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

// Tools returns the full catalogue in its advertised order.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a new project. Project names are unique, case-insensitively.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Project name (unique)"},
					"description": {"type": "string", "description": "What the project is"}
				},
				"required": ["name", "description"]
			}`),
		},
		{
			Name:        "get_project_by_id",
			Description: "Fetch a single project by its numeric id.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Project id"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        "get_project_by_name",
			Description: "Fetch a single project by name (case-insensitive).",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Project name"}
				},
				"required": ["name"]
			}`),
		},
		{
			Name:        "list_projects",
			Description: "List all projects.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        "update_project",
			Description: "Update a project's name and/or description. At least one field is required.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Project id"},
					"name": {"type": "string", "description": "New name"},
					"description": {"type": "string", "description": "New description"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        "delete_project",
			Description: "Delete a project and everything under it: environments, resources, and resource-contact associations. Runs as one transaction.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Project id"}
				},
				"required": ["id"]
			}`),
		},

		// Environments
		{
			Name:        "create_environment",
			Description: "Create an environment inside a project. Environment names are unique per project, case-insensitively.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Environment name (e.g. dev, staging, prod)"},
					"description": {"type": "string", "description": "Optional description"},
					"project_id": {"type": "integer", "description": "Owning project id"}
				},
				"required": ["name", "project_id"]
			}`),
		},
		{
			Name:        "get_environment",
			Description: "Fetch an environment by id, or by project_id + name.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Environment id"},
					"project_id": {"type": "integer", "description": "Project id (with name)"},
					"name": {"type": "string", "description": "Environment name (with project_id)"}
				}
			}`),
		},
		{
			Name:        "list_environments",
			Description: "List environments, optionally scoped to one project.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"project_id": {"type": "integer", "description": "Restrict to this project"}
				}
			}`),
		},
		{
			Name:        "update_environment",
			Description: "Update an environment's name and/or description. At least one field is required.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Environment id"},
					"name": {"type": "string", "description": "New name"},
					"description": {"type": "string", "description": "New description"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        "delete_environment",
			Description: "Delete an environment together with its resources and their contact associations. Runs as one transaction.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Environment id"}
				},
				"required": ["id"]
			}`),
		},

		// Resources
		{
			Name:        "create_resource",
			Description: "Register a resource (service, database, api, queue, cache, storage) in a project environment. Resource names are unique per project + environment.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Resource name"},
					"description": {"type": "string", "description": "What the resource is"},
					"type": {"type": "string", "description": "Resource kind", "enum": ["service", "database", "api", "queue", "cache", "storage"]},
					"project_id": {"type": "integer", "description": "Owning project id"},
					"env_id": {"type": "integer", "description": "Owning environment id (must belong to project_id)"},
					"health_check_url": {"type": "string", "description": "Optional HTTP health endpoint"},
					"alive_check_url": {"type": "string", "description": "Optional HTTP liveness endpoint"},
					"headers": {"type": "object", "description": "Optional request headers for probes, e.g. {\"apikey\": \"...\"}", "additionalProperties": {"type": "string"}},
					"is_ih_service": {"type": "boolean", "description": "Whether this is an in-house service", "default": false}
				},
				"required": ["name", "description", "type", "project_id", "env_id"]
			}`),
		},
		{
			Name:        "get_resource",
			Description: "Fetch a resource by id, or by project_id + env_id + name.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Resource id"},
					"project_id": {"type": "integer", "description": "Project id (with env_id and name)"},
					"env_id": {"type": "integer", "description": "Environment id (with project_id and name)"},
					"name": {"type": "string", "description": "Resource name (with project_id and env_id)"}
				}
			}`),
		},
		{
			Name:        "list_resources",
			Description: "List resources, optionally filtered by project, environment, and/or type.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"project_id": {"type": "integer", "description": "Restrict to this project"},
					"env_id": {"type": "integer", "description": "Restrict to this environment"},
					"type": {"type": "string", "description": "Restrict to this resource kind", "enum": ["service", "database", "api", "queue", "cache", "storage"]}
				}
			}`),
		},
		{
			Name:        "update_resource",
			Description: "Update fields of a resource. At least one field besides id is required.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Resource id"},
					"name": {"type": "string", "description": "New name"},
					"description": {"type": "string", "description": "New description"},
					"type": {"type": "string", "description": "New resource kind", "enum": ["service", "database", "api", "queue", "cache", "storage"]},
					"health_check_url": {"type": "string", "description": "New health endpoint (empty string clears it)"},
					"alive_check_url": {"type": "string", "description": "New liveness endpoint (empty string clears it)"},
					"headers": {"type": "object", "description": "New probe headers (empty object clears them)", "additionalProperties": {"type": "string"}},
					"is_ih_service": {"type": "boolean", "description": "New in-house flag"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        "delete_resource",
			Description: "Delete a resource and its contact associations.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Resource id"}
				},
				"required": ["id"]
			}`),
		},

		// Contacts
		{
			Name:        "create_contact",
			Description: "Create a contact. Emails are unique, case-insensitively.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"first_name": {"type": "string", "description": "First name"},
					"last_name": {"type": "string", "description": "Last name"},
					"email": {"type": "string", "description": "Email address (unique)"},
					"phone": {"type": "string", "description": "Optional phone number"}
				},
				"required": ["first_name", "last_name", "email"]
			}`),
		},
		{
			Name:        "get_contact",
			Description: "Fetch a contact by id or by email (case-insensitive).",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Contact id"},
					"email": {"type": "string", "description": "Contact email"}
				}
			}`),
		},
		{
			Name:        "list_contacts",
			Description: "List all contacts ordered by last name, then first name.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        "search_contacts",
			Description: "Fuzzy-search contacts by name or email fragment.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Search text (e.g. part of a name or email)"}
				},
				"required": ["query"]
			}`),
		},
		{
			Name:        "update_contact",
			Description: "Update fields of a contact. At least one field besides id is required.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Contact id"},
					"first_name": {"type": "string", "description": "New first name"},
					"last_name": {"type": "string", "description": "New last name"},
					"email": {"type": "string", "description": "New email"},
					"phone": {"type": "string", "description": "New phone number (empty string clears it)"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        "delete_contact",
			Description: "Delete a contact and its resource associations.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Contact id"}
				},
				"required": ["id"]
			}`),
		},

		// Resource-contact associations
		{
			Name:        "create_resource_contact",
			Description: "Associate a contact with a resource under a role (e.g. owner, oncall). A resource-contact pair can exist at most once.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"resource_id": {"type": "integer", "description": "Resource id"},
					"contact_id": {"type": "integer", "description": "Contact id"},
					"role": {"type": "string", "description": "Role of the contact for this resource"}
				},
				"required": ["resource_id", "contact_id", "role"]
			}`),
		},
		{
			Name:        "list_resource_contacts",
			Description: "List resource-contact associations with resolved names, optionally filtered by resource and/or contact.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"resource_id": {"type": "integer", "description": "Restrict to this resource"},
					"contact_id": {"type": "integer", "description": "Restrict to this contact"}
				}
			}`),
		},
		{
			Name:        "update_resource_contact",
			Description: "Change the role of an existing resource-contact association.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"resource_id": {"type": "integer", "description": "Resource id"},
					"contact_id": {"type": "integer", "description": "Contact id"},
					"role": {"type": "string", "description": "New role"}
				},
				"required": ["resource_id", "contact_id", "role"]
			}`),
		},
		{
			Name:        "delete_resource_contact",
			Description: "Remove the association between a resource and a contact.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"resource_id": {"type": "integer", "description": "Resource id"},
					"contact_id": {"type": "integer", "description": "Contact id"}
				},
				"required": ["resource_id", "contact_id"]
			}`),
		},

		// Monitoring
		{
			Name:        "get_resource_health_status",
			Description: "Probe a resource's health check URL and report the response. Identify the resource by id, or by project_id + env_id + name.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Resource id"},
					"project_id": {"type": "integer", "description": "Project id (with env_id and name)"},
					"env_id": {"type": "integer", "description": "Environment id (with project_id and name)"},
					"name": {"type": "string", "description": "Resource name (with project_id and env_id)"}
				}
			}`),
		},
		{
			Name:        "get_resource_alive_status",
			Description: "Probe a resource's liveness URL. Any HTTP response means alive; a connection failure is reported as alive=false, not as an error.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Resource id"},
					"project_id": {"type": "integer", "description": "Project id (with env_id and name)"},
					"env_id": {"type": "integer", "description": "Environment id (with project_id and name)"},
					"name": {"type": "string", "description": "Resource name (with project_id and env_id)"}
				}
			}`),
		},
		{
			Name:        "check_environment_health",
			Description: "Probe every resource in a project environment concurrently and report per-resource outcomes under a single check-run id.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"project_id": {"type": "integer", "description": "Project id"},
					"env_id": {"type": "integer", "description": "Environment id"}
				},
				"required": ["project_id", "env_id"]
			}`),
		},
	}
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

type createResourceInput struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Type           string            `json:"type"`
	ProjectID      int64             `json:"project_id"`
	EnvID          int64             `json:"env_id"`
	HealthCheckURL string            `json:"health_check_url"`
	AliveCheckURL  string            `json:"alive_check_url"`
	Headers        map[string]string `json:"headers"`
	IsIHService    bool              `json:"is_ih_service"`
}

// environmentInProject resolves an environment and verifies it belongs to
// the given project. Resources must never straddle a project boundary.
func (h *Handler) environmentInProject(ctx context.Context, projectID, envID int64) (*store.Environment, *mcp.CallToolResult) {
	if _, err := h.store.Projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errorResult(fmt.Sprintf("Project with ID %d not found", projectID))
		}
		return nil, errorResult(err.Error())
	}
	env, err := h.store.Environments.GetByID(ctx, envID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errorResult(fmt.Sprintf("Environment with ID %d not found", envID))
	}
	if err != nil {
		return nil, errorResult(err.Error())
	}
	if env.ProjectID != projectID {
		return nil, errorResult(fmt.Sprintf("Environment %d belongs to project %d, not project %d", envID, env.ProjectID, projectID))
	}
	return env, nil
}

func (h *Handler) createResource(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in createResourceInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(in.Name) == "" {
		return errorResult("name is required"), nil
	}
	if strings.TrimSpace(in.Description) == "" {
		return errorResult("description is required"), nil
	}
	if !store.ValidResourceType(in.Type) {
		return errorResult(fmt.Sprintf("invalid resource type '%s' (want one of %s)", in.Type, strings.Join(store.ResourceTypes, ", "))), nil
	}
	if in.ProjectID <= 0 || in.EnvID <= 0 {
		return errorResult("project_id and env_id are required"), nil
	}

	if _, errRes := h.environmentInProject(ctx, in.ProjectID, in.EnvID); errRes != nil {
		return errRes, nil
	}

	if _, err := h.store.Resources.GetByName(ctx, in.ProjectID, in.EnvID, in.Name); err == nil {
		return errorResult(fmt.Sprintf("Resource with name '%s' already exists in this environment", in.Name)), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return errorResult(err.Error()), nil
	}

	headers, err := store.EncodeHeaders(in.Headers)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	created, err := h.store.Resources.Create(ctx, &store.Resource{
		Name:           in.Name,
		Description:    in.Description,
		HealthCheckURL: in.HealthCheckURL,
		AliveCheckURL:  in.AliveCheckURL,
		Headers:        headers,
		IsIHService:    in.IsIHService,
		Type:           in.Type,
		ProjectID:      in.ProjectID,
		EnvID:          in.EnvID,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Resource with name '%s' already exists in this environment", in.Name)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(created), nil
}

type resourceKeyInput struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	EnvID     int64  `json:"env_id"`
	Name      string `json:"name"`
}

// resolveResource looks up a resource by id, or by its (project, env, name)
// natural key. Every monitoring tool shares this lookup.
func (h *Handler) resolveResource(ctx context.Context, in resourceKeyInput) (*store.Resource, *mcp.CallToolResult) {
	switch {
	case in.ID > 0:
		res, err := h.store.Resources.GetByID(ctx, in.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, errorResult(fmt.Sprintf("Resource with ID %d not found", in.ID))
		}
		if err != nil {
			return nil, errorResult(err.Error())
		}
		return res, nil

	case in.ProjectID > 0 && in.EnvID > 0 && in.Name != "":
		res, err := h.store.Resources.GetByName(ctx, in.ProjectID, in.EnvID, in.Name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, errorResult(fmt.Sprintf("Resource with name '%s' not found in project %d environment %d", in.Name, in.ProjectID, in.EnvID))
		}
		if err != nil {
			return nil, errorResult(err.Error())
		}
		return res, nil

	default:
		return nil, errorResult("provide either id, or project_id, env_id and name")
	}
}

func (h *Handler) getResource(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in resourceKeyInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	res, errRes := h.resolveResource(ctx, in)
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(res), nil
}

type listResourcesInput struct {
	ProjectID int64  `json:"project_id"`
	EnvID     int64  `json:"env_id"`
	Type      string `json:"type"`
}

func (h *Handler) listResources(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in listResourcesInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.Type != "" && !store.ValidResourceType(in.Type) {
		return errorResult(fmt.Sprintf("invalid resource type '%s' (want one of %s)", in.Type, strings.Join(store.ResourceTypes, ", "))), nil
	}

	resources, err := h.store.Resources.List(ctx, store.ResourceFilter{
		ProjectID: in.ProjectID,
		EnvID:     in.EnvID,
		Type:      in.Type,
	})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(resources), nil
}

type updateResourceInput struct {
	ID             int64              `json:"id"`
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Type           *string            `json:"type"`
	HealthCheckURL *string            `json:"health_check_url"`
	AliveCheckURL  *string            `json:"alive_check_url"`
	Headers        *map[string]string `json:"headers"`
	IsIHService    *bool              `json:"is_ih_service"`
}

func (h *Handler) updateResource(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in updateResourceInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	res, err := h.store.Resources.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Resource with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	if in.Name != nil {
		if existing, err := h.store.Resources.GetByName(ctx, res.ProjectID, res.EnvID, *in.Name); err == nil && existing.ID != in.ID {
			return errorResult(fmt.Sprintf("Resource with name '%s' already exists in this environment", *in.Name)), nil
		}
	}

	patch := store.ResourcePatch{
		Name:           in.Name,
		Description:    in.Description,
		Type:           in.Type,
		HealthCheckURL: in.HealthCheckURL,
		AliveCheckURL:  in.AliveCheckURL,
		IsIHService:    in.IsIHService,
	}
	if in.Headers != nil {
		encoded, err := store.EncodeHeaders(*in.Headers)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		patch.Headers = &encoded
	}

	err = h.store.Resources.Update(ctx, in.ID, patch)
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Resource with name '%s' already exists in this environment", *in.Name)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	updated, err := h.store.Resources.GetByID(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(updated), nil
}

func (h *Handler) deleteResource(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in idInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	res, err := h.store.Resources.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Resource with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	links, err := h.store.Links.DeleteByResource(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := h.store.Resources.Delete(ctx, in.ID); err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("Deleted resource '%s' (ID %d) with %d contact association(s)", res.Name, res.ID, links)), nil
}

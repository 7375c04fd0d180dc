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

type createEnvironmentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectID   int64  `json:"project_id"`
}

func (h *Handler) createEnvironment(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in createEnvironmentInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(in.Name) == "" {
		return errorResult("name is required"), nil
	}
	if in.ProjectID <= 0 {
		return errorResult("project_id is required"), nil
	}

	project, err := h.store.Projects.GetByID(ctx, in.ProjectID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Project with ID %d not found", in.ProjectID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	if _, err := h.store.Environments.GetByName(ctx, in.ProjectID, in.Name); err == nil {
		return errorResult(fmt.Sprintf("Environment with name '%s' already exists in project '%s'", in.Name, project.Name)), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return errorResult(err.Error()), nil
	}

	env, err := h.store.Environments.Create(ctx, in.Name, in.Description, in.ProjectID)
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Environment with name '%s' already exists in project '%s'", in.Name, project.Name)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(env), nil
}

type getEnvironmentInput struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

func (h *Handler) getEnvironment(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getEnvironmentInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}

	switch {
	case in.ID > 0:
		env, err := h.store.Environments.GetByID(ctx, in.ID)
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Environment with ID %d not found", in.ID)), nil
		}
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(env), nil

	case in.ProjectID > 0 && in.Name != "":
		env, err := h.store.Environments.GetByName(ctx, in.ProjectID, in.Name)
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Environment with name '%s' not found in project %d", in.Name, in.ProjectID)), nil
		}
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(env), nil

	default:
		return errorResult("provide either id, or project_id and name"), nil
	}
}

type listEnvironmentsInput struct {
	ProjectID int64 `json:"project_id"`
}

func (h *Handler) listEnvironments(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in listEnvironmentsInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}

	envs, err := h.store.Environments.List(ctx, in.ProjectID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(envs), nil
}

type updateEnvironmentInput struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) updateEnvironment(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in updateEnvironmentInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	env, err := h.store.Environments.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Environment with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	if in.Name != nil {
		if existing, err := h.store.Environments.GetByName(ctx, env.ProjectID, *in.Name); err == nil && existing.ID != in.ID {
			return errorResult(fmt.Sprintf("Environment with name '%s' already exists in project %d", *in.Name, env.ProjectID)), nil
		}
	}

	err = h.store.Environments.Update(ctx, in.ID, store.EnvironmentPatch{Name: in.Name, Description: in.Description})
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Environment with name '%s' already exists in project %d", *in.Name, env.ProjectID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	updated, err := h.store.Environments.GetByID(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(updated), nil
}

func (h *Handler) deleteEnvironment(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in idInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	env, err := h.store.Environments.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Environment with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	counts, err := h.store.DeleteEnvironmentCascade(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf(
		"Deleted environment '%s' (ID %d) with %d resource(s) and %d contact association(s)",
		env.Name, env.ID, counts.Resources, counts.Links)), nil
}

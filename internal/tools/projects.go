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

type createProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createProject(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in createProjectInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(in.Name) == "" {
		return errorResult("name is required"), nil
	}

	// Pre-check for a friendly message; the unique index stays authoritative.
	if _, err := h.store.Projects.GetByName(ctx, in.Name); err == nil {
		return errorResult(fmt.Sprintf("Project with name '%s' already exists", in.Name)), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return errorResult(err.Error()), nil
	}

	created, err := h.store.Projects.Create(ctx, in.Name, in.Description)
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Project with name '%s' already exists", in.Name)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(created), nil
}

type idInput struct {
	ID int64 `json:"id"`
}

func (h *Handler) getProjectByID(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in idInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	project, err := h.store.Projects.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Project with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(project), nil
}

type nameInput struct {
	Name string `json:"name"`
}

func (h *Handler) getProjectByName(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in nameInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.Name == "" {
		return errorResult("name is required"), nil
	}

	project, err := h.store.Projects.GetByName(ctx, in.Name)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Project with name '%s' not found", in.Name)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(project), nil
}

func (h *Handler) listProjects(ctx context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	projects, err := h.store.Projects.List(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(projects), nil
}

type updateProjectInput struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) updateProject(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in updateProjectInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	if in.Name != nil {
		if existing, err := h.store.Projects.GetByName(ctx, *in.Name); err == nil && existing.ID != in.ID {
			return errorResult(fmt.Sprintf("Project with name '%s' already exists", *in.Name)), nil
		}
	}

	err := h.store.Projects.Update(ctx, in.ID, store.ProjectPatch{Name: in.Name, Description: in.Description})
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Project with ID %d not found", in.ID)), nil
	}
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Project with name '%s' already exists", *in.Name)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	project, err := h.store.Projects.GetByID(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(project), nil
}

func (h *Handler) deleteProject(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in idInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	project, err := h.store.Projects.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Project with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	counts, err := h.store.DeleteProjectCascade(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf(
		"Deleted project '%s' (ID %d) with %d environment(s), %d resource(s), and %d contact association(s)",
		project.Name, project.ID, counts.Environments, counts.Resources, counts.Links)), nil
}

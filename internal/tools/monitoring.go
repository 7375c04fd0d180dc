package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/serviceninja/catalog-mcp/internal/probe"
	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

func (h *Handler) getResourceHealthStatus(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in resourceKeyInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	res, errRes := h.resolveResource(ctx, in)
	if errRes != nil {
		return errRes, nil
	}
	if res.HealthCheckURL == "" {
		return errorResult(fmt.Sprintf("Resource '%s' has no health check URL configured", res.Name)), nil
	}
	headers, err := res.DecodeHeaders()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	result := h.prober.Health(ctx, res.HealthCheckURL, headers)
	if !result.Healthy {
		// Unhealthy is a finding, but the caller asked for health and did
		// not get it; flag the result so agents treat it as a failure.
		out := errorResult(fmt.Sprintf("Resource '%s' is unhealthy: %s", res.Name, result.Error))
		if result.Body != "" {
			out.Content = append(out.Content, mcp.ContentBlock{Type: "text", Text: result.Body})
		}
		return out, nil
	}
	return jsonResult(map[string]any{
		"resourceId":   res.ID,
		"resourceName": res.Name,
		"healthy":      true,
		"statusCode":   result.StatusCode,
		"body":         result.Body,
	}), nil
}

func (h *Handler) getResourceAliveStatus(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in resourceKeyInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	res, errRes := h.resolveResource(ctx, in)
	if errRes != nil {
		return errRes, nil
	}
	if res.AliveCheckURL == "" {
		return errorResult(fmt.Sprintf("Resource '%s' has no alive check URL configured", res.Name)), nil
	}
	headers, err := res.DecodeHeaders()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	// alive=false is a valid monitoring answer, so it is never an error
	// result; the probe outcome is the payload either way.
	result := h.prober.Alive(ctx, res.AliveCheckURL, headers)
	return jsonResult(map[string]any{
		"resourceId":   res.ID,
		"resourceName": res.Name,
		"alive":        result.Alive,
		"statusCode":   result.StatusCode,
		"error":        result.Error,
	}), nil
}

type checkEnvironmentHealthInput struct {
	ProjectID int64 `json:"project_id"`
	EnvID     int64 `json:"env_id"`
}

func (h *Handler) checkEnvironmentHealth(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in checkEnvironmentHealthInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ProjectID <= 0 || in.EnvID <= 0 {
		return errorResult("project_id and env_id are required"), nil
	}

	env, errRes := h.environmentInProject(ctx, in.ProjectID, in.EnvID)
	if errRes != nil {
		return errRes, nil
	}

	resources, err := h.store.Resources.List(ctx, store.ResourceFilter{ProjectID: in.ProjectID, EnvID: in.EnvID})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if len(resources) == 0 {
		return errorResult(fmt.Sprintf("No resources found in environment '%s'", env.Name)), nil
	}

	targets := make([]probe.Target, 0, len(resources))
	for _, res := range resources {
		target := probe.Target{ID: res.ID, Name: res.Name, URL: res.HealthCheckURL}
		// Unreadable stored headers fail this one resource, not the check.
		if headers, err := res.DecodeHeaders(); err != nil {
			target.Err = err.Error()
		} else {
			target.Headers = headers
		}
		targets = append(targets, target)
	}

	report := h.prober.CheckFleet(ctx, targets)
	return jsonResult(report), nil
}

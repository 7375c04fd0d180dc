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

type linkInput struct {
	ResourceID int64  `json:"resource_id"`
	ContactID  int64  `json:"contact_id"`
	Role       string `json:"role"`
}

// resolveLinkEnds verifies both ends of an association exist before any
// mutation touches the link table.
func (h *Handler) resolveLinkEnds(ctx context.Context, resourceID, contactID int64) (*store.Resource, *store.Contact, *mcp.CallToolResult) {
	res, err := h.store.Resources.GetByID(ctx, resourceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, errorResult(fmt.Sprintf("Resource with ID %d not found", resourceID))
	}
	if err != nil {
		return nil, nil, errorResult(err.Error())
	}
	contact, err := h.store.Contacts.GetByID(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, errorResult(fmt.Sprintf("Contact with ID %d not found", contactID))
	}
	if err != nil {
		return nil, nil, errorResult(err.Error())
	}
	return res, contact, nil
}

func (h *Handler) createResourceContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in linkInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ResourceID <= 0 || in.ContactID <= 0 {
		return errorResult("resource_id and contact_id are required"), nil
	}
	if strings.TrimSpace(in.Role) == "" {
		return errorResult("role is required"), nil
	}

	res, contact, errRes := h.resolveLinkEnds(ctx, in.ResourceID, in.ContactID)
	if errRes != nil {
		return errRes, nil
	}

	if existing, err := h.store.Links.Get(ctx, in.ResourceID, in.ContactID); err == nil {
		return errorResult(fmt.Sprintf("Contact '%s %s' is already associated with resource '%s' as '%s'",
			contact.FirstName, contact.LastName, res.Name, existing.Role)), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return errorResult(err.Error()), nil
	}

	link := &store.ResourceContact{ResourceID: in.ResourceID, ContactID: in.ContactID, Role: in.Role}
	if err := h.store.Links.Create(ctx, link); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return errorResult(fmt.Sprintf("Contact '%s %s' is already associated with resource '%s'",
				contact.FirstName, contact.LastName, res.Name)), nil
		}
		return errorResult(err.Error()), nil
	}
	return jsonResult(link), nil
}

type listLinksInput struct {
	ResourceID int64 `json:"resource_id"`
	ContactID  int64 `json:"contact_id"`
}

func (h *Handler) listResourceContacts(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in listLinksInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}

	details, err := h.store.Links.ListDetails(ctx, in.ResourceID, in.ContactID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(details), nil
}

func (h *Handler) updateResourceContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in linkInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ResourceID <= 0 || in.ContactID <= 0 {
		return errorResult("resource_id and contact_id are required"), nil
	}
	if strings.TrimSpace(in.Role) == "" {
		return errorResult("role is required"), nil
	}

	err := h.store.Links.UpdateRole(ctx, in.ResourceID, in.ContactID, in.Role)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("No association between resource %d and contact %d", in.ResourceID, in.ContactID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	link, err := h.store.Links.Get(ctx, in.ResourceID, in.ContactID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(link), nil
}

type deleteLinkInput struct {
	ResourceID int64 `json:"resource_id"`
	ContactID  int64 `json:"contact_id"`
}

func (h *Handler) deleteResourceContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in deleteLinkInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ResourceID <= 0 || in.ContactID <= 0 {
		return errorResult("resource_id and contact_id are required"), nil
	}

	err := h.store.Links.Delete(ctx, in.ResourceID, in.ContactID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("No association between resource %d and contact %d", in.ResourceID, in.ContactID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("Removed association between resource %d and contact %d", in.ResourceID, in.ContactID)), nil
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/pkg/mcp"
)

type createContactInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (h *Handler) createContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in createContactInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(in.Email) == "" {
		return errorResult("email is required"), nil
	}

	if _, err := h.store.Contacts.GetByEmail(ctx, in.Email); err == nil {
		return errorResult(fmt.Sprintf("Contact with email '%s' already exists", in.Email)), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return errorResult(err.Error()), nil
	}

	created, err := h.store.Contacts.Create(ctx, &store.Contact{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Contact with email '%s' already exists", in.Email)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(created), nil
}

type getContactInput struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (h *Handler) getContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getContactInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}

	switch {
	case in.ID > 0:
		contact, err := h.store.Contacts.GetByID(ctx, in.ID)
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Contact with ID %d not found", in.ID)), nil
		}
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(contact), nil

	case in.Email != "":
		contact, err := h.store.Contacts.GetByEmail(ctx, in.Email)
		if errors.Is(err, store.ErrNotFound) {
			return errorResult(fmt.Sprintf("Contact with email '%s' not found", in.Email)), nil
		}
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(contact), nil

	default:
		return errorResult("provide either id or email"), nil
	}
}

func (h *Handler) listContacts(ctx context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	contacts, err := h.store.Contacts.List(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(contacts), nil
}

type searchContactsInput struct {
	Query string `json:"query"`
}

// searchContacts fuzzy-matches the query against each contact's full name
// and email, ranked by Levenshtein distance.
func (h *Handler) searchContacts(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in searchContactsInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(in.Query) == "" {
		return errorResult("query is required"), nil
	}

	contacts, err := h.store.Contacts.List(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	type ranked struct {
		contact store.Contact
		rank    int
	}
	matches := []ranked{}
	for _, c := range contacts {
		haystacks := []string{
			c.FirstName + " " + c.LastName,
			c.Email,
		}
		best := -1
		for _, hay := range haystacks {
			if r := fuzzy.RankMatchNormalizedFold(in.Query, hay); r >= 0 && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			matches = append(matches, ranked{contact: c, rank: best})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	results := make([]store.Contact, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.contact)
	}
	return jsonResult(results), nil
}

type updateContactInput struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

func (h *Handler) updateContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in updateContactInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	if _, err := h.store.Contacts.GetByID(ctx, in.ID); errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Contact with ID %d not found", in.ID)), nil
	} else if err != nil {
		return errorResult(err.Error()), nil
	}

	if in.Email != nil {
		if existing, err := h.store.Contacts.GetByEmail(ctx, *in.Email); err == nil && existing.ID != in.ID {
			return errorResult(fmt.Sprintf("Contact with email '%s' already exists", *in.Email)), nil
		}
	}

	err := h.store.Contacts.Update(ctx, in.ID, store.ContactPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return errorResult(fmt.Sprintf("Contact with email '%s' already exists", *in.Email)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	contact, err := h.store.Contacts.GetByID(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(contact), nil
}

func (h *Handler) deleteContact(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in idInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid parameters: " + err.Error()), nil
	}
	if in.ID <= 0 {
		return errorResult("id is required"), nil
	}

	contact, err := h.store.Contacts.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Sprintf("Contact with ID %d not found", in.ID)), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}

	links, err := h.store.Links.DeleteByContact(ctx, in.ID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := h.store.Contacts.Delete(ctx, in.ID); err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("Deleted contact '%s %s' (ID %d) with %d resource association(s)",
		contact.FirstName, contact.LastName, contact.ID, links)), nil
}

package client

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// Organization is an account that owns databases.
type Organization struct {
	ID               string    `json:"id" validate:"required"`
	Name             string    `json:"name" validate:"required"`
	Plan             string    `json:"plan,omitempty"`
	BillingEmail     string    `json:"billing_email,omitempty"`
	SSO              bool      `json:"sso"`
	DatabaseCount    int       `json:"database_count"`
	ValidBillingInfo bool      `json:"valid_billing_info"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ListOrganizationsInput selects a page of organizations.
type ListOrganizationsInput struct {
	model.PageParams
}

// GetOrganizationInput identifies an organization. An empty Organization
// defaults to the credential's.
type GetOrganizationInput struct {
	Organization string `json:"organization"`
}

var (
	ErrListOrganizationsUnauthorized = sentinel("ListOrganizations", unauthorized)
	ErrListOrganizationsForbidden    = sentinel("ListOrganizations", forbidden)

	ErrGetOrganizationUnauthorized = sentinel("GetOrganization", unauthorized)
	ErrGetOrganizationForbidden    = sentinel("GetOrganization", forbidden)
	ErrGetOrganizationNotFound     = sentinel("GetOrganization", notFound)
)

var listOrganizations = operation.MakePaginated[ListOrganizationsInput, Organization](func() operation.Descriptor[ListOrganizationsInput] {
	return operation.Descriptor[ListOrganizationsInput]{
		Name:   "listOrganizations",
		Method: http.MethodGet,
		Path:   "/organizations",
		Errors: declare("ListOrganizations", []failure{unauthorized, forbidden}),
	}
})

var getOrganization = operation.Make[GetOrganizationInput, Organization](func() operation.Descriptor[GetOrganizationInput] {
	return operation.Descriptor[GetOrganizationInput]{
		Name:       "getOrganization",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}",
		PathParams: []string{"organization"},
		Errors:     declare("GetOrganization", readFailures),
	}
})

// ListOrganizations fetches one page of organizations.
func (c *Client) ListOrganizations(ctx context.Context, in ListOrganizationsInput) (model.Page[Organization], error) {
	return call(ctx, c, listOrganizations.Operation, in)
}

// OrganizationPages streams pages of organizations starting at in.Page.
func (c *Client) OrganizationPages(ctx context.Context, in ListOrganizationsInput) iter.Seq2[model.Page[Organization], error] {
	return pages(ctx, c, listOrganizations, in)
}

// AllOrganizations streams every organization visible to the credential.
func (c *Client) AllOrganizations(ctx context.Context, in ListOrganizationsInput) iter.Seq2[Organization, error] {
	return items(ctx, c, listOrganizations, in)
}

// GetOrganization fetches one organization.
func (c *Client) GetOrganization(ctx context.Context, in GetOrganizationInput) (Organization, error) {
	return call(ctx, c, getOrganization, in)
}

package client

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// Role is a database credential scoped to one branch.
type Role struct {
	ID            string     `json:"id" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	Role          string     `json:"role,omitempty"`
	Username      string     `json:"username,omitempty"`
	AccessHostURL string     `json:"access_host_url,omitempty"`
	DatabaseName  string     `json:"database_name,omitempty"`
	PlainText     string     `json:"plain_text,omitempty"` // only returned on create
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ListRolesInput selects a page of roles on a branch.
type ListRolesInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
	model.PageParams
}

// RoleInput identifies a role.
type RoleInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
	ID           string `json:"id" validate:"required"`
}

// CreateRoleInput describes a new role.
type CreateRoleInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
	Name         string `json:"name,omitempty" validate:"omitempty,max=64"`
	Role         string `json:"role" validate:"required,oneof=reader writer admin readwriter"`
	TTL          int    `json:"ttl,omitempty" validate:"omitempty,min=60"`
}

var (
	ErrListRolesUnauthorized = sentinel("ListRoles", unauthorized)
	ErrListRolesForbidden    = sentinel("ListRoles", forbidden)
	ErrListRolesNotFound     = sentinel("ListRoles", notFound)

	ErrGetRoleUnauthorized = sentinel("GetRole", unauthorized)
	ErrGetRoleForbidden    = sentinel("GetRole", forbidden)
	ErrGetRoleNotFound     = sentinel("GetRole", notFound)

	ErrCreateRoleUnauthorized        = sentinel("CreateRole", unauthorized)
	ErrCreateRoleForbidden           = sentinel("CreateRole", forbidden)
	ErrCreateRoleNotFound            = sentinel("CreateRole", notFound)
	ErrCreateRoleUnprocessableEntity = sentinel("CreateRole", unprocessable)
	ErrCreateRoleConflict            = sentinel("CreateRole", conflict)

	ErrDeleteRoleUnauthorized = sentinel("DeleteRole", unauthorized)
	ErrDeleteRoleForbidden    = sentinel("DeleteRole", forbidden)
	ErrDeleteRoleNotFound     = sentinel("DeleteRole", notFound)
)

const rolesPath = "/organizations/{organization}/databases/{database}/branches/{branch}/roles"

var listRoles = operation.MakePaginated[ListRolesInput, Role](func() operation.Descriptor[ListRolesInput] {
	return operation.Descriptor[ListRolesInput]{
		Name:       "listRoles",
		Method:     http.MethodGet,
		Path:       rolesPath,
		PathParams: []string{"organization", "database", "branch"},
		Errors:     declare("ListRoles", readFailures),
	}
})

var createRole = operation.Make[CreateRoleInput, Role](func() operation.Descriptor[CreateRoleInput] {
	return operation.Descriptor[CreateRoleInput]{
		Name:       "createRole",
		Method:     http.MethodPost,
		Path:       rolesPath,
		PathParams: []string{"organization", "database", "branch"},
		Errors:     declare("CreateRole", writeFailures),
	}
})

var getRole = operation.Make[RoleInput, Role](func() operation.Descriptor[RoleInput] {
	return operation.Descriptor[RoleInput]{
		Name:       "getRole",
		Method:     http.MethodGet,
		Path:       rolesPath + "/{id}",
		PathParams: []string{"organization", "database", "branch", "id"},
		Errors:     declare("GetRole", readFailures),
	}
})

var deleteRole = operation.Make[RoleInput, model.Empty](func() operation.Descriptor[RoleInput] {
	return operation.Descriptor[RoleInput]{
		Name:       "deleteRole",
		Method:     http.MethodDelete,
		Path:       rolesPath + "/{id}",
		PathParams: []string{"organization", "database", "branch", "id"},
		Errors:     declare("DeleteRole", readFailures),
	}
})

// ListRoles fetches one page of roles.
func (c *Client) ListRoles(ctx context.Context, in ListRolesInput) (model.Page[Role], error) {
	return call(ctx, c, listRoles.Operation, in)
}

// RolePages streams pages of roles starting at in.Page.
func (c *Client) RolePages(ctx context.Context, in ListRolesInput) iter.Seq2[model.Page[Role], error] {
	return pages(ctx, c, listRoles, in)
}

// AllRoles streams every role on the branch.
func (c *Client) AllRoles(ctx context.Context, in ListRolesInput) iter.Seq2[Role, error] {
	return items(ctx, c, listRoles, in)
}

// CreateRole creates a role. The returned PlainText password is not
// retrievable afterwards.
func (c *Client) CreateRole(ctx context.Context, in CreateRoleInput) (Role, error) {
	return call(ctx, c, createRole, in)
}

// GetRole fetches one role.
func (c *Client) GetRole(ctx context.Context, in RoleInput) (Role, error) {
	return call(ctx, c, getRole, in)
}

// DeleteRole revokes a role.
func (c *Client) DeleteRole(ctx context.Context, in RoleInput) error {
	_, err := call(ctx, c, deleteRole, in)
	return err
}

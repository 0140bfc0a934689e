package client

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// Branch is an isolated copy of a database schema.
type Branch struct {
	ID             string    `json:"id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	ParentBranch   string    `json:"parent_branch,omitempty"`
	Production     bool      `json:"production"`
	Ready          bool      `json:"ready"`
	SafeMigrations bool      `json:"safe_migrations"`
	Region         Region    `json:"region"`
	HTMLURL        string    `json:"html_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListBranchesInput selects a page of branches of a database.
type ListBranchesInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Production   bool   `json:"production,omitempty"`
	model.PageParams
}

// BranchInput identifies a branch.
type BranchInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
}

// CreateBranchInput describes a new branch.
type CreateBranchInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Name         string `json:"name" validate:"required,max=64"`
	ParentBranch string `json:"parent_branch" validate:"required"`
	BackupID     string `json:"backup_id,omitempty"`
	Region       string `json:"region,omitempty"`
}

var (
	ErrListBranchesUnauthorized = sentinel("ListBranches", unauthorized)
	ErrListBranchesForbidden    = sentinel("ListBranches", forbidden)
	ErrListBranchesNotFound     = sentinel("ListBranches", notFound)

	ErrGetBranchUnauthorized = sentinel("GetBranch", unauthorized)
	ErrGetBranchForbidden    = sentinel("GetBranch", forbidden)
	ErrGetBranchNotFound     = sentinel("GetBranch", notFound)

	ErrCreateBranchUnauthorized        = sentinel("CreateBranch", unauthorized)
	ErrCreateBranchForbidden           = sentinel("CreateBranch", forbidden)
	ErrCreateBranchNotFound            = sentinel("CreateBranch", notFound)
	ErrCreateBranchUnprocessableEntity = sentinel("CreateBranch", unprocessable)
	ErrCreateBranchConflict            = sentinel("CreateBranch", conflict)

	ErrDeleteBranchUnauthorized = sentinel("DeleteBranch", unauthorized)
	ErrDeleteBranchForbidden    = sentinel("DeleteBranch", forbidden)
	ErrDeleteBranchNotFound     = sentinel("DeleteBranch", notFound)

	ErrPromoteBranchUnauthorized        = sentinel("PromoteBranch", unauthorized)
	ErrPromoteBranchForbidden           = sentinel("PromoteBranch", forbidden)
	ErrPromoteBranchNotFound            = sentinel("PromoteBranch", notFound)
	ErrPromoteBranchUnprocessableEntity = sentinel("PromoteBranch", unprocessable)
	ErrPromoteBranchConflict            = sentinel("PromoteBranch", conflict)
)

var listBranches = operation.MakePaginated[ListBranchesInput, Branch](func() operation.Descriptor[ListBranchesInput] {
	return operation.Descriptor[ListBranchesInput]{
		Name:       "listBranches",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/databases/{database}/branches",
		PathParams: []string{"organization", "database"},
		Errors:     declare("ListBranches", readFailures),
	}
})

var getBranch = operation.Make[BranchInput, Branch](func() operation.Descriptor[BranchInput] {
	return operation.Descriptor[BranchInput]{
		Name:       "getBranch",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/databases/{database}/branches/{branch}",
		PathParams: []string{"organization", "database", "branch"},
		Errors:     declare("GetBranch", readFailures),
	}
})

var createBranch = operation.Make[CreateBranchInput, Branch](func() operation.Descriptor[CreateBranchInput] {
	return operation.Descriptor[CreateBranchInput]{
		Name:       "createBranch",
		Method:     http.MethodPost,
		Path:       "/organizations/{organization}/databases/{database}/branches",
		PathParams: []string{"organization", "database"},
		Errors:     declare("CreateBranch", writeFailures),
	}
})

var deleteBranch = operation.Make[BranchInput, model.Empty](func() operation.Descriptor[BranchInput] {
	return operation.Descriptor[BranchInput]{
		Name:       "deleteBranch",
		Method:     http.MethodDelete,
		Path:       "/organizations/{organization}/databases/{database}/branches/{branch}",
		PathParams: []string{"organization", "database", "branch"},
		Errors:     declare("DeleteBranch", readFailures),
	}
})

var promoteBranch = operation.Make[BranchInput, Branch](func() operation.Descriptor[BranchInput] {
	return operation.Descriptor[BranchInput]{
		Name:       "promoteBranch",
		Method:     http.MethodPost,
		Path:       "/organizations/{organization}/databases/{database}/branches/{branch}/promote",
		PathParams: []string{"organization", "database", "branch"},
		Errors:     declare("PromoteBranch", writeFailures),
	}
})

// ListBranches fetches one page of branches.
func (c *Client) ListBranches(ctx context.Context, in ListBranchesInput) (model.Page[Branch], error) {
	return call(ctx, c, listBranches.Operation, in)
}

// BranchPages streams pages of branches starting at in.Page.
func (c *Client) BranchPages(ctx context.Context, in ListBranchesInput) iter.Seq2[model.Page[Branch], error] {
	return pages(ctx, c, listBranches, in)
}

// AllBranches streams every branch of the database.
func (c *Client) AllBranches(ctx context.Context, in ListBranchesInput) iter.Seq2[Branch, error] {
	return items(ctx, c, listBranches, in)
}

// GetBranch fetches one branch.
func (c *Client) GetBranch(ctx context.Context, in BranchInput) (Branch, error) {
	return call(ctx, c, getBranch, in)
}

// CreateBranch creates a branch from ParentBranch.
func (c *Client) CreateBranch(ctx context.Context, in CreateBranchInput) (Branch, error) {
	return call(ctx, c, createBranch, in)
}

// DeleteBranch deletes a development branch.
func (c *Client) DeleteBranch(ctx context.Context, in BranchInput) error {
	_, err := call(ctx, c, deleteBranch, in)
	return err
}

// PromoteBranch makes a development branch a production branch.
func (c *Client) PromoteBranch(ctx context.Context, in BranchInput) (Branch, error) {
	return call(ctx, c, promoteBranch, in)
}

package client

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// Region is a deployment location.
type Region struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// Database is a logical database within an organization.
type Database struct {
	ID                      string    `json:"id" validate:"required"`
	Name                    string    `json:"name" validate:"required"`
	State                   string    `json:"state,omitempty"`
	Region                  Region    `json:"region"`
	Plan                    string    `json:"plan,omitempty"`
	Notes                   string    `json:"notes,omitempty"`
	HTMLURL                 string    `json:"html_url,omitempty"`
	BranchesCount           int       `json:"branches_count"`
	DefaultBranch           string    `json:"default_branch,omitempty"`
	ProductionBranchesCount int       `json:"production_branches_count"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// ListDatabasesInput selects a page of databases in an organization.
type ListDatabasesInput struct {
	Organization string `json:"organization"`
	model.PageParams
}

// GetDatabaseInput identifies a database.
type GetDatabaseInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
}

// CreateDatabaseInput describes a new database.
type CreateDatabaseInput struct {
	Organization string `json:"organization"`
	Name         string `json:"name" validate:"required,max=64"`
	Region       string `json:"region,omitempty"`
	ClusterSize  string `json:"cluster_size,omitempty"`
	Plan         string `json:"plan,omitempty" validate:"omitempty,oneof=hobby scaler scaler_pro enterprise"`
	Notes        string `json:"notes,omitempty"`
}

// DeleteDatabaseInput identifies a database to delete.
type DeleteDatabaseInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
}

var (
	ErrListDatabasesUnauthorized = sentinel("ListDatabases", unauthorized)
	ErrListDatabasesForbidden    = sentinel("ListDatabases", forbidden)
	ErrListDatabasesNotFound     = sentinel("ListDatabases", notFound)

	ErrGetDatabaseUnauthorized = sentinel("GetDatabase", unauthorized)
	ErrGetDatabaseForbidden    = sentinel("GetDatabase", forbidden)
	ErrGetDatabaseNotFound     = sentinel("GetDatabase", notFound)

	ErrCreateDatabaseUnauthorized        = sentinel("CreateDatabase", unauthorized)
	ErrCreateDatabaseForbidden           = sentinel("CreateDatabase", forbidden)
	ErrCreateDatabaseNotFound            = sentinel("CreateDatabase", notFound)
	ErrCreateDatabaseUnprocessableEntity = sentinel("CreateDatabase", unprocessable)
	ErrCreateDatabaseConflict            = sentinel("CreateDatabase", conflict)

	ErrDeleteDatabaseUnauthorized = sentinel("DeleteDatabase", unauthorized)
	ErrDeleteDatabaseForbidden    = sentinel("DeleteDatabase", forbidden)
	ErrDeleteDatabaseNotFound     = sentinel("DeleteDatabase", notFound)
)

var listDatabases = operation.MakePaginated[ListDatabasesInput, Database](func() operation.Descriptor[ListDatabasesInput] {
	return operation.Descriptor[ListDatabasesInput]{
		Name:       "listDatabases",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/databases",
		PathParams: []string{"organization"},
		Errors:     declare("ListDatabases", readFailures),
	}
})

var getDatabase = operation.Make[GetDatabaseInput, Database](func() operation.Descriptor[GetDatabaseInput] {
	return operation.Descriptor[GetDatabaseInput]{
		Name:       "getDatabase",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/databases/{database}",
		PathParams: []string{"organization", "database"},
		Errors:     declare("GetDatabase", readFailures),
	}
})

var createDatabase = operation.Make[CreateDatabaseInput, Database](func() operation.Descriptor[CreateDatabaseInput] {
	return operation.Descriptor[CreateDatabaseInput]{
		Name:       "createDatabase",
		Method:     http.MethodPost,
		Path:       "/organizations/{organization}/databases",
		PathParams: []string{"organization"},
		Errors:     declare("CreateDatabase", writeFailures),
	}
})

var deleteDatabase = operation.Make[DeleteDatabaseInput, model.Empty](func() operation.Descriptor[DeleteDatabaseInput] {
	return operation.Descriptor[DeleteDatabaseInput]{
		Name:       "deleteDatabase",
		Method:     http.MethodDelete,
		Path:       "/organizations/{organization}/databases/{database}",
		PathParams: []string{"organization", "database"},
		Errors:     declare("DeleteDatabase", readFailures),
	}
})

// ListDatabases fetches one page of databases.
func (c *Client) ListDatabases(ctx context.Context, in ListDatabasesInput) (model.Page[Database], error) {
	return call(ctx, c, listDatabases.Operation, in)
}

// DatabasePages streams pages of databases starting at in.Page.
func (c *Client) DatabasePages(ctx context.Context, in ListDatabasesInput) iter.Seq2[model.Page[Database], error] {
	return pages(ctx, c, listDatabases, in)
}

// AllDatabases streams every database in the organization.
func (c *Client) AllDatabases(ctx context.Context, in ListDatabasesInput) iter.Seq2[Database, error] {
	return items(ctx, c, listDatabases, in)
}

// GetDatabase fetches one database.
func (c *Client) GetDatabase(ctx context.Context, in GetDatabaseInput) (Database, error) {
	return call(ctx, c, getDatabase, in)
}

// CreateDatabase creates a database.
func (c *Client) CreateDatabase(ctx context.Context, in CreateDatabaseInput) (Database, error) {
	return call(ctx, c, createDatabase, in)
}

// DeleteDatabase deletes a database and all of its branches.
func (c *Client) DeleteDatabase(ctx context.Context, in DeleteDatabaseInput) error {
	_, err := call(ctx, c, deleteDatabase, in)
	return err
}

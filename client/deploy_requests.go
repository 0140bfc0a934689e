package client

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// DeployRequest proposes merging a branch's schema into another branch.
type DeployRequest struct {
	ID              string     `json:"id" validate:"required"`
	Number          int        `json:"number" validate:"required"`
	Branch          string     `json:"branch" validate:"required"`
	IntoBranch      string     `json:"into_branch" validate:"required"`
	State           string     `json:"state" validate:"omitempty,oneof=open closed"`
	DeploymentState string     `json:"deployment_state,omitempty"`
	Approved        bool       `json:"approved"`
	Notes           string     `json:"notes,omitempty"`
	HTMLURL         string     `json:"html_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	DeployedAt      *time.Time `json:"deployed_at,omitempty"`
}

// ListDeployRequestsInput selects a page of deploy requests of a database,
// optionally filtered by state and source branch.
type ListDeployRequestsInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	State        string `json:"state,omitempty" validate:"omitempty,oneof=open closed"`
	Branch       string `json:"branch,omitempty"`
	IntoBranch   string `json:"into_branch,omitempty"`
	model.PageParams
}

// DeployRequestInput identifies a deploy request by number.
type DeployRequestInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Number       int    `json:"number" validate:"required,min=1"`
}

// CreateDeployRequestInput opens a deploy request from Branch.
type CreateDeployRequestInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
	IntoBranch   string `json:"into_branch,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// closeDeployRequestInput carries the PATCH body sent when closing.
type closeDeployRequestInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Number       int    `json:"number" validate:"required,min=1"`
	State        string `json:"state" validate:"eq=closed"`
}

var (
	ErrListDeployRequestsUnauthorized = sentinel("ListDeployRequests", unauthorized)
	ErrListDeployRequestsForbidden    = sentinel("ListDeployRequests", forbidden)
	ErrListDeployRequestsNotFound     = sentinel("ListDeployRequests", notFound)

	ErrGetDeployRequestUnauthorized = sentinel("GetDeployRequest", unauthorized)
	ErrGetDeployRequestForbidden    = sentinel("GetDeployRequest", forbidden)
	ErrGetDeployRequestNotFound     = sentinel("GetDeployRequest", notFound)

	ErrCreateDeployRequestUnauthorized        = sentinel("CreateDeployRequest", unauthorized)
	ErrCreateDeployRequestForbidden           = sentinel("CreateDeployRequest", forbidden)
	ErrCreateDeployRequestNotFound            = sentinel("CreateDeployRequest", notFound)
	ErrCreateDeployRequestUnprocessableEntity = sentinel("CreateDeployRequest", unprocessable)
	ErrCreateDeployRequestConflict            = sentinel("CreateDeployRequest", conflict)

	ErrDeployDeployRequestUnauthorized        = sentinel("DeployDeployRequest", unauthorized)
	ErrDeployDeployRequestForbidden           = sentinel("DeployDeployRequest", forbidden)
	ErrDeployDeployRequestNotFound            = sentinel("DeployDeployRequest", notFound)
	ErrDeployDeployRequestUnprocessableEntity = sentinel("DeployDeployRequest", unprocessable)
	ErrDeployDeployRequestConflict            = sentinel("DeployDeployRequest", conflict)

	ErrCloseDeployRequestUnauthorized        = sentinel("CloseDeployRequest", unauthorized)
	ErrCloseDeployRequestForbidden           = sentinel("CloseDeployRequest", forbidden)
	ErrCloseDeployRequestNotFound            = sentinel("CloseDeployRequest", notFound)
	ErrCloseDeployRequestUnprocessableEntity = sentinel("CloseDeployRequest", unprocessable)
	ErrCloseDeployRequestConflict            = sentinel("CloseDeployRequest", conflict)
)

const deployRequestsPath = "/organizations/{organization}/databases/{database}/deploy-requests"

var listDeployRequests = operation.MakePaginated[ListDeployRequestsInput, DeployRequest](func() operation.Descriptor[ListDeployRequestsInput] {
	return operation.Descriptor[ListDeployRequestsInput]{
		Name:       "listDeployRequests",
		Method:     http.MethodGet,
		Path:       deployRequestsPath,
		PathParams: []string{"organization", "database"},
		Errors:     declare("ListDeployRequests", readFailures),
	}
})

var getDeployRequest = operation.Make[DeployRequestInput, DeployRequest](func() operation.Descriptor[DeployRequestInput] {
	return operation.Descriptor[DeployRequestInput]{
		Name:       "getDeployRequest",
		Method:     http.MethodGet,
		Path:       deployRequestsPath + "/{number}",
		PathParams: []string{"organization", "database", "number"},
		Errors:     declare("GetDeployRequest", readFailures),
	}
})

var createDeployRequest = operation.Make[CreateDeployRequestInput, DeployRequest](func() operation.Descriptor[CreateDeployRequestInput] {
	return operation.Descriptor[CreateDeployRequestInput]{
		Name:       "createDeployRequest",
		Method:     http.MethodPost,
		Path:       deployRequestsPath,
		PathParams: []string{"organization", "database"},
		Errors:     declare("CreateDeployRequest", writeFailures),
	}
})

var deployDeployRequest = operation.Make[DeployRequestInput, DeployRequest](func() operation.Descriptor[DeployRequestInput] {
	return operation.Descriptor[DeployRequestInput]{
		Name:       "deployDeployRequest",
		Method:     http.MethodPost,
		Path:       deployRequestsPath + "/{number}/deploy",
		PathParams: []string{"organization", "database", "number"},
		Errors:     declare("DeployDeployRequest", writeFailures),
	}
})

var closeDeployRequest = operation.Make[closeDeployRequestInput, DeployRequest](func() operation.Descriptor[closeDeployRequestInput] {
	return operation.Descriptor[closeDeployRequestInput]{
		Name:       "closeDeployRequest",
		Method:     http.MethodPatch,
		Path:       deployRequestsPath + "/{number}",
		PathParams: []string{"organization", "database", "number"},
		Errors:     declare("CloseDeployRequest", writeFailures),
	}
})

// ListDeployRequests fetches one page of deploy requests.
func (c *Client) ListDeployRequests(ctx context.Context, in ListDeployRequestsInput) (model.Page[DeployRequest], error) {
	return call(ctx, c, listDeployRequests.Operation, in)
}

// DeployRequestPages streams pages of deploy requests starting at in.Page.
func (c *Client) DeployRequestPages(ctx context.Context, in ListDeployRequestsInput) iter.Seq2[model.Page[DeployRequest], error] {
	return pages(ctx, c, listDeployRequests, in)
}

// AllDeployRequests streams every matching deploy request.
func (c *Client) AllDeployRequests(ctx context.Context, in ListDeployRequestsInput) iter.Seq2[DeployRequest, error] {
	return items(ctx, c, listDeployRequests, in)
}

// GetDeployRequest fetches one deploy request.
func (c *Client) GetDeployRequest(ctx context.Context, in DeployRequestInput) (DeployRequest, error) {
	return call(ctx, c, getDeployRequest, in)
}

// CreateDeployRequest opens a deploy request.
func (c *Client) CreateDeployRequest(ctx context.Context, in CreateDeployRequestInput) (DeployRequest, error) {
	return call(ctx, c, createDeployRequest, in)
}

// DeployDeployRequest queues an open deploy request for deployment.
func (c *Client) DeployDeployRequest(ctx context.Context, in DeployRequestInput) (DeployRequest, error) {
	return call(ctx, c, deployDeployRequest, in)
}

// CloseDeployRequest closes a deploy request without deploying it.
func (c *Client) CloseDeployRequest(ctx context.Context, in DeployRequestInput) (DeployRequest, error) {
	return call(ctx, c, closeDeployRequest, closeDeployRequestInput{
		Organization: in.Organization,
		Database:     in.Database,
		Number:       in.Number,
		State:        "closed",
	})
}

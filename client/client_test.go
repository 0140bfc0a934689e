package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitabwire/pscale/internal/fakeapi"
	"github.com/pitabwire/pscale/internal/invoker"
	"github.com/pitabwire/pscale/internal/observability"
	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

const testToken = "pscale_tkn_test"

func fakeRoutes() []fakeapi.Route {
	routes := Routes()
	out := make([]fakeapi.Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, fakeapi.Route{Operation: r.Name, Method: r.Method, Pattern: r.Path})
	}
	return out
}

func newTestClient(t *testing.T, opts ...operation.Option) (*Client, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(t, fakeRoutes(), fakeapi.WithToken(testToken))
	cred := model.StaticCredential{
		Token:        testToken,
		Organization: "acme",
		APIBaseURL:   srv.URL() + "/",
	}
	return New(invoker.NewHTTPTransportWithClient(srv.Client(), 0), cred, opts...), srv
}

func branchJSON(name string) map[string]any {
	return map[string]any{"id": "br_" + name, "name": name, "production": name == "main", "ready": true}
}

func TestGetBranchChangeRequest_notFound(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("getBranchChangeRequest").RespondWithError(http.StatusNotFound, "not_found", "branch change request not found")

	_, err := c.GetBranchChangeRequest(context.Background(), BranchChangeRequestInput{
		Organization: "acme",
		Database:     "x",
		Branch:       "main",
		ID:           "nope",
	})
	require.Error(t, err)

	var opErr *model.OperationError
	require.True(t, errors.As(err, &opErr), "err = %T %v", err, err)
	assert.True(t, errors.Is(err, ErrGetBranchChangeRequestNotFound))
	assert.False(t, errors.Is(err, ErrGetBranchNotFound))
	assert.Equal(t, "GetBranchChangeRequestNotFound", opErr.Tag)
	assert.Equal(t, "acme", opErr.Organization())
	assert.Equal(t, "nope", opErr.ID())
	assert.Equal(t, "branch change request not found", opErr.Message)
	assert.Equal(t, http.StatusNotFound, opErr.Status)
	assert.True(t, model.IsNotFound(err))

	rec := srv.LastRequest("getBranchChangeRequest")
	require.NotNil(t, rec)
	assert.Equal(t, "/organizations/acme/databases/x/branches/main/changes/nope", rec.Path)
	assert.Equal(t, rec.Headers.Get("X-Request-Id"), opErr.RequestID)
}

func TestGetDatabase_defaultsOrganization(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("getDatabase").RespondWith(http.StatusOK, map[string]any{
		"id":   "db_1",
		"name": "app",
		"region": map[string]any{
			"slug": "us-east",
		},
	})

	db, err := c.GetDatabase(context.Background(), GetDatabaseInput{Database: "app"})
	require.NoError(t, err)
	assert.Equal(t, "app", db.Name)
	assert.Equal(t, "us-east", db.Region.Slug)

	rec := srv.LastRequest("getDatabase")
	require.NotNil(t, rec)
	assert.Equal(t, "acme", rec.PathParams["organization"])
	assert.Equal(t, "Bearer "+testToken, rec.Headers.Get("Authorization"))
	assert.Equal(t, "application/json", rec.Headers.Get("Accept"))
	assert.Equal(t, "pscale-go", rec.Headers.Get("User-Agent"))
	assert.Empty(t, rec.Query)
}

func TestGetDatabase_contextCredentialWins(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("getDatabase").RespondWith(http.StatusOK, map[string]any{"id": "db_1", "name": "app"})

	ctx := model.WithCredential(context.Background(), model.Credential{
		Token:        testToken,
		Organization: "other",
		APIBaseURL:   srv.URL(),
	})
	_, err := c.GetDatabase(ctx, GetDatabaseInput{Database: "app"})
	require.NoError(t, err)
	assert.Equal(t, "other", srv.LastRequest("getDatabase").PathParams["organization"])
}

func TestAllBranches_followsPages(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("listBranches").RespondWithPages(
		[]any{branchJSON("main"), branchJSON("dev")},
		[]any{branchJSON("feature-a")},
		[]any{branchJSON("feature-b")},
	)

	branches, err := operation.Collect(c.AllBranches(context.Background(), ListBranchesInput{Database: "app"}))
	require.NoError(t, err)

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"main", "dev", "feature-a", "feature-b"}, names)

	reqs := srv.Requests("listBranches")
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[0].Query["page"])
	assert.Equal(t, "2", reqs[1].Query["page"])
	assert.Equal(t, "3", reqs[2].Query["page"])
}

func TestBranchPages_yieldsEachPage(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("listBranches").RespondWithPages(
		[]any{branchJSON("main")},
		[]any{branchJSON("dev")},
		[]any{},
	)

	var current []int
	for page, err := range c.BranchPages(context.Background(), ListBranchesInput{Database: "app"}) {
		require.NoError(t, err)
		current = append(current, page.CurrentPage)
	}
	assert.Equal(t, []int{1, 2, 3}, current)
}

func TestAllDatabases_takeOneIsLazy(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("listDatabases").RespondWithPages(
		[]any{map[string]any{"id": "db_1", "name": "one"}, map[string]any{"id": "db_2", "name": "two"}},
		[]any{map[string]any{"id": "db_3", "name": "three"}},
		[]any{map[string]any{"id": "db_4", "name": "four"}},
	)

	dbs, err := operation.Collect(operation.Take(c.AllDatabases(context.Background(), ListDatabasesInput{}), 1))
	require.NoError(t, err)
	require.Len(t, dbs, 1)
	assert.Equal(t, "one", dbs[0].Name)
	srv.AssertCalled(t, "listDatabases", 1)
}

func TestListDeployRequests_query(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("listDeployRequests").RespondWithPages([]any{})

	_, err := c.ListDeployRequests(context.Background(), ListDeployRequestsInput{
		Database:   "app",
		State:      "open",
		Branch:     "dev",
		PageParams: model.PageParams{PerPage: 50},
	})
	require.NoError(t, err)

	rec := srv.LastRequest("listDeployRequests")
	require.NotNil(t, rec)
	assert.Equal(t, map[string]string{"state": "open", "branch": "dev", "per_page": "50"}, rec.Query)
}

func TestCreateRole_invalidInputSendsNothing(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.CreateRole(context.Background(), CreateRoleInput{
		Database: "app",
		Branch:   "main",
		Role:     "superuser",
	})
	require.Error(t, err)

	var valErr *model.ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Len(t, valErr.Details, 1)
	assert.Equal(t, "role", valErr.Details[0].Field)
	assert.Equal(t, "oneof", valErr.Details[0].Code)
	srv.AssertCalled(t, "createRole", 0)
}

func TestListDatabases_invalidPerPage(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.ListDatabases(context.Background(), ListDatabasesInput{PageParams: model.PageParams{PerPage: 500}})

	var valErr *model.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "per_page", valErr.Details[0].Field)
	srv.AssertCalled(t, "listDatabases", 0)
}

func TestCreateRole_sendsBodyWithoutPathFields(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("createRole").RespondWith(http.StatusCreated, map[string]any{
		"id":         "role_1",
		"name":       "ci",
		"role":       "reader",
		"plain_text": "pscale_pw_secret",
	})

	role, err := c.CreateRole(context.Background(), CreateRoleInput{
		Database: "app",
		Branch:   "main",
		Name:     "ci",
		Role:     "reader",
	})
	require.NoError(t, err)
	assert.Equal(t, "pscale_pw_secret", role.PlainText)

	rec := srv.LastRequest("createRole")
	require.NotNil(t, rec)
	assert.Equal(t, map[string]any{"name": "ci", "role": "reader"}, rec.Body)
	assert.Equal(t, "application/json", rec.Headers.Get("Content-Type"))
}

func TestCreateBranch_conflict(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("createBranch").RespondWithError(http.StatusConflict, "conflict", "branch already exists")

	_, err := c.CreateBranch(context.Background(), CreateBranchInput{
		Database:     "app",
		Name:         "dev",
		ParentBranch: "main",
	})
	assert.True(t, errors.Is(err, ErrCreateBranchConflict))
	assert.Equal(t, model.CodeConflict, model.ErrorCode(err))
}

func TestCloseDeployRequest_patchesState(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("closeDeployRequest").RespondWith(http.StatusOK, map[string]any{
		"id":          "dr_1",
		"number":      7,
		"branch":      "dev",
		"into_branch": "main",
		"state":       "closed",
	})

	dr, err := c.CloseDeployRequest(context.Background(), DeployRequestInput{Database: "app", Number: 7})
	require.NoError(t, err)
	assert.Equal(t, "closed", dr.State)

	rec := srv.LastRequest("closeDeployRequest")
	require.NotNil(t, rec)
	assert.Equal(t, http.MethodPatch, rec.Method)
	assert.Equal(t, "/organizations/acme/databases/app/deploy-requests/7", rec.Path)
	assert.Equal(t, map[string]any{"state": "closed"}, rec.Body)
}

func TestDeployDeployRequest_identifyingNumber(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("deployDeployRequest").RespondWithError(http.StatusUnprocessableEntity, "unprocessable_entity", "deploy request is not deployable")

	_, err := c.DeployDeployRequest(context.Background(), DeployRequestInput{Database: "app", Number: 12})

	var opErr *model.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.True(t, errors.Is(err, ErrDeployDeployRequestUnprocessableEntity))
	assert.Equal(t, "12", opErr.Field("number"))
	assert.Equal(t, "app", opErr.Database())
}

func TestDeleteBranch_noContent(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("deleteBranch").RespondWith(http.StatusNoContent, nil)

	err := c.DeleteBranch(context.Background(), BranchInput{Database: "app", Branch: "dev"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, srv.LastRequest("deleteBranch").Method)
}

func TestListDatabases_unauthorized(t *testing.T) {
	srv := fakeapi.New(t, fakeRoutes(), fakeapi.WithToken(testToken))
	c := New(invoker.NewHTTPTransportWithClient(srv.Client(), 0), model.StaticCredential{
		Token:        "wrong",
		Organization: "acme",
		APIBaseURL:   srv.URL(),
	})

	_, err := c.ListDatabases(context.Background(), ListDatabasesInput{})
	assert.True(t, errors.Is(err, ErrListDatabasesUnauthorized))
	assert.True(t, model.IsUnauthorized(err))
	srv.AssertCalled(t, "listDatabases", 0)
}

func TestGetInvoice_undeclaredStatus(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("getInvoice").RespondWithError(http.StatusServiceUnavailable, "unavailable", "billing is down")

	_, err := c.GetInvoice(context.Background(), InvoiceInput{ID: "inv_1"})

	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "billing is down", apiErr.Message)
	assert.True(t, model.IsAPIError(err))
}

func TestGetOrganization_malformedBody(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("getOrganization").RespondWith(http.StatusOK, map[string]any{"name": "acme"})

	_, err := c.GetOrganization(context.Background(), GetOrganizationInput{})

	var decErr *model.DecodeError
	require.True(t, errors.As(err, &decErr), "err = %v", err)
	assert.Equal(t, "getOrganization", decErr.Operation)
}

func TestGetBranch_transportError(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On("getBranch").RespondWithConnectionError()

	_, err := c.GetBranch(context.Background(), BranchInput{Database: "app", Branch: "main"})

	var trErr *model.TransportError
	require.True(t, errors.As(err, &trErr), "err = %v", err)
	assert.Equal(t, "getBranch", trErr.Operation)
}

func TestClient_recordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.InitMetrics(reg)
	c, srv := newTestClient(t, operation.WithRecorder(metrics))
	srv.On("listInvoices").RespondWithPages(
		[]any{map[string]any{"id": "inv_1"}},
		[]any{map[string]any{"id": "inv_2"}},
	)
	srv.On("getInvoice").RespondWithError(http.StatusNotFound, "not_found", "no such invoice")

	invoices, err := operation.Collect(c.AllInvoices(context.Background(), ListInvoicesInput{}))
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
	_, err = c.GetInvoice(context.Background(), InvoiceInput{ID: "inv_9"})
	require.Error(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.PagesFetchedTotal.WithLabelValues("listInvoices")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("listInvoices", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("getInvoice", "declared")))
}

package client

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pitabwire/pscale/internal/openapi"
	"github.com/pitabwire/pscale/operation"
)

type routed interface {
	Route() operation.Route
}

// catalog lists every endpoint the client declares.
var catalog = []routed{
	listOrganizations, getOrganization,
	listDatabases, getDatabase, createDatabase, deleteDatabase,
	listBranches, getBranch, createBranch, deleteBranch, promoteBranch,
	listRoles, createRole, getRole, deleteRole,
	listDeployRequests, getDeployRequest, createDeployRequest, deployDeployRequest, closeDeployRequest,
	getBranchChangeRequest,
	listInvoices, getInvoice,
}

// Routes returns the binding of every declared endpoint, sorted by name.
func Routes() []operation.Route {
	routes := make([]operation.Route, 0, len(catalog))
	for _, op := range catalog {
		routes = append(routes, op.Route())
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

// Mismatch is one endpoint that disagrees with the OpenAPI document.
type Mismatch struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}

// Report is the outcome of checking the catalog against a document.
type Report struct {
	Matched    []string   `json:"matched"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether every endpoint matched.
func (r Report) OK() bool { return len(r.Mismatches) == 0 }

// Error summarises the mismatches.
func (r Report) Error() string {
	lines := make([]string, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		lines = append(lines, m.Operation+": "+m.Reason)
	}
	return strings.Join(lines, "\n")
}

// Verify checks every declared endpoint against idx: the method and path
// template must exist, declare the same path parameters, and agree on
// whether a request body is sent.
func Verify(idx *openapi.Index) Report {
	var report Report
	for _, route := range Routes() {
		if reason := verifyRoute(idx, route); reason != "" {
			report.Mismatches = append(report.Mismatches, Mismatch{Operation: route.Name, Reason: reason})
			continue
		}
		report.Matched = append(report.Matched, route.Name)
	}
	return report
}

// VerifyFile loads the OpenAPI document at path and verifies against it.
func VerifyFile(path string) (Report, error) {
	idx, err := openapi.Load(path)
	if err != nil {
		return Report{}, err
	}
	return Verify(idx), nil
}

func verifyRoute(idx *openapi.Index, route operation.Route) string {
	op, ok := idx.Lookup(route.Method, route.Path)
	if !ok {
		return fmt.Sprintf("%s %s not in document", route.Method, route.Path)
	}
	declared := slices.Clone(route.PathParams)
	sort.Strings(declared)
	if !slices.Equal(declared, op.PathParams) {
		return fmt.Sprintf("path parameters %v, document declares %v", declared, op.PathParams)
	}
	if op.HasRequestBody && !route.HasBody {
		return "document expects a request body"
	}
	return ""
}

package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitabwire/pscale/operation"
)

func TestRoutes_consistent(t *testing.T) {
	routes := Routes()
	require.Len(t, routes, len(catalog))

	seen := make(map[string]bool)
	for _, r := range routes {
		assert.False(t, seen[r.Name], "duplicate operation %s", r.Name)
		seen[r.Name] = true
		assert.ElementsMatch(t, operation.Placeholders(r.Path), r.PathParams, r.Name)
		assert.NotEmpty(t, r.Errors, r.Name)
	}
}

func TestRoutes_variantTagsUnique(t *testing.T) {
	tags := make(map[string]string)
	for _, r := range Routes() {
		for _, v := range r.Errors {
			if other, ok := tags[v.Tag]; ok {
				t.Errorf("tag %s declared by %s and %s", v.Tag, other, r.Name)
			}
			tags[v.Tag] = r.Name
		}
	}
}

func TestVerifyFile_fullDocument(t *testing.T) {
	report, err := VerifyFile("testdata/platform.yaml")
	require.NoError(t, err)
	assert.True(t, report.OK(), report.Error())
	assert.Len(t, report.Matched, len(catalog))
}

func TestVerifyFile_partialDocument(t *testing.T) {
	report, err := VerifyFile("../internal/openapi/testdata/branches.yaml")
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.ElementsMatch(t, []string{"createBranch", "getBranch", "listBranches"}, report.Matched)
	assert.Len(t, report.Mismatches, len(catalog)-3)
	assert.Contains(t, report.Error(), "getDatabase: GET /organizations/{organization}/databases/{database} not in document")
}

func TestVerifyFile_missing(t *testing.T) {
	_, err := VerifyFile("testdata/nope.yaml")
	assert.Error(t, err)
}

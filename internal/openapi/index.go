// Package openapi loads an OpenAPI document and indexes its operations by
// method and path template, for checking endpoint declarations against it.
package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation is one indexed OpenAPI operation.
type Operation struct {
	OperationID    string
	Method         string
	PathTemplate   string
	PathParams     []string
	QueryParams    []string
	HasRequestBody bool
	Statuses       []string
}

// Index is an in-memory index of the operations in one document.
type Index struct {
	byRoute map[string]Operation // key: "METHOD path"
	byID    map[string]string    // operationId → route key
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Load reads, validates and indexes the document at path.
func Load(path string) (*Index, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: loading %s: %w", path, err)
	}
	return build(doc)
}

// LoadData validates and indexes an in-memory document.
func LoadData(data []byte) (*Index, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: parsing document: %w", err)
	}
	return build(doc)
}

func build(doc *openapi3.T) (*Index, error) {
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("openapi: validating document: %w", err)
	}

	idx := &Index{
		byRoute: make(map[string]Operation),
		byID:    make(map[string]string),
	}
	for path, pathItem := range doc.Paths.Map() {
		for method, op := range pathItem.Operations() {
			indexed := Operation{
				OperationID:    op.OperationID,
				Method:         strings.ToUpper(method),
				PathTemplate:   path,
				HasRequestBody: op.RequestBody != nil && op.RequestBody.Value != nil,
			}

			// Operation-level parameters override path-level ones of the
			// same name and location.
			seen := make(map[string]bool)
			for _, refs := range []openapi3.Parameters{op.Parameters, pathItem.Parameters} {
				for _, ref := range refs {
					p := ref.Value
					if p == nil || seen[p.In+":"+p.Name] {
						continue
					}
					seen[p.In+":"+p.Name] = true
					switch p.In {
					case openapi3.ParameterInPath:
						indexed.PathParams = append(indexed.PathParams, p.Name)
					case openapi3.ParameterInQuery:
						indexed.QueryParams = append(indexed.QueryParams, p.Name)
					}
				}
			}
			sort.Strings(indexed.PathParams)
			sort.Strings(indexed.QueryParams)

			if op.Responses != nil {
				for status := range op.Responses.Map() {
					indexed.Statuses = append(indexed.Statuses, status)
				}
				sort.Strings(indexed.Statuses)
			}

			key := routeKey(method, path)
			idx.byRoute[key] = indexed
			if op.OperationID != "" {
				idx.byID[op.OperationID] = key
			}
		}
	}
	return idx, nil
}

// Lookup returns the operation declared for method and path template.
func (idx *Index) Lookup(method, path string) (Operation, bool) {
	op, ok := idx.byRoute[routeKey(method, path)]
	return op, ok
}

// GetOperation returns the operation with the given operationId.
func (idx *Index) GetOperation(operationID string) (Operation, bool) {
	key, ok := idx.byID[operationID]
	if !ok {
		return Operation{}, false
	}
	return idx.byRoute[key], true
}

// Len returns the number of indexed operations.
func (idx *Index) Len() int {
	return len(idx.byRoute)
}

// AllOperationIDs returns every operationId in the document, sorted.
func (idx *Index) AllOperationIDs() []string {
	ids := make([]string, 0, len(idx.byID))
	for id := range idx.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package operation

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"

	"github.com/pitabwire/pscale/model"
)

// Descriptor is the immutable binding of one endpoint: how an In value
// becomes an HTTP request and which typed failures it can produce.
type Descriptor[In any] struct {
	// Name is the stable operation id, e.g. "getBranch".
	Name   string
	Method string

	// Path is a template with {name} placeholders. PathFunc, when set,
	// replaces template expansion; Path then only documents the route.
	Path     string
	PathFunc func(In) (string, error)

	// PathParams are the input fields (by json name) consumed by the path.
	// They are never sent in the query string or body.
	PathParams []string

	Errors []model.ErrorVariant
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Placeholders returns the parameter names in a path template, in order.
func Placeholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Check reports whether the descriptor is internally consistent.
func (d Descriptor[In]) Check() error {
	if d.Name == "" {
		return fmt.Errorf("operation: descriptor has no name")
	}
	switch d.Method {
	case http.MethodGet, http.MethodDelete, http.MethodPost, http.MethodPatch, http.MethodPut:
	default:
		return fmt.Errorf("operation: %s: unsupported method %q", d.Name, d.Method)
	}
	if d.PathFunc == nil {
		if d.Path == "" {
			return fmt.Errorf("operation: %s: descriptor has neither Path nor PathFunc", d.Name)
		}
		holders := Placeholders(d.Path)
		for _, h := range holders {
			if !slices.Contains(d.PathParams, h) {
				return fmt.Errorf("operation: %s: placeholder {%s} has no path parameter", d.Name, h)
			}
		}
		for _, p := range d.PathParams {
			if !slices.Contains(holders, p) {
				return fmt.Errorf("operation: %s: path parameter %q not in template %q", d.Name, p, d.Path)
			}
		}
	}
	for i, v := range d.Errors {
		if v.Tag == "" {
			return fmt.Errorf("operation: %s: error variant %d has no tag", d.Name, i)
		}
		if v.Status == 0 && v.Code == "" {
			return fmt.Errorf("operation: %s: error variant %s has neither status nor code", d.Name, v.Tag)
		}
	}
	return nil
}

// Route is the type-erased HTTP binding of a descriptor.
type Route struct {
	Name       string
	Method     string
	Path       string
	PathParams []string
	HasBody    bool
	Errors     []model.ErrorVariant
}

// Route returns the descriptor's binding without its input type.
func (d Descriptor[In]) Route() Route {
	return Route{
		Name:       d.Name,
		Method:     d.Method,
		Path:       d.Path,
		PathParams: slices.Clone(d.PathParams),
		HasBody:    d.hasBody(),
		Errors:     slices.Clone(d.Errors),
	}
}

func (d Descriptor[In]) hasBody() bool {
	switch d.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	}
	return false
}

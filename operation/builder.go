package operation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/pitabwire/pscale/model"
)

// Built is a request ready for the transport together with the values the
// resolver needs to construct typed errors.
type Built struct {
	model.Request

	// Fields holds the identifying input fields echoed into typed errors.
	Fields    map[string]string
	RequestID string
}

var queryEncoder = newQueryEncoder()

func newQueryEncoder() *schema.Encoder {
	enc := schema.NewEncoder()
	enc.SetAliasTag("json")
	return enc
}

// BuildRequest validates in and turns it into a request for desc. It
// performs no I/O.
func BuildRequest[In any](cred model.Credential, desc Descriptor[In], in In) (Built, error) {
	if err := validateStruct(in); err != nil {
		return Built{}, toValidationError(desc.Name, reflect.TypeOf(in), err)
	}

	values, err := inputValues(in)
	if err != nil {
		return Built{}, fmt.Errorf("operation: %s: encode input: %w", desc.Name, err)
	}
	if stringify(values["organization"]) == "" && cred.Organization != "" && slices.Contains(desc.PathParams, "organization") {
		values["organization"] = cred.Organization
	}

	path, err := resolvePath(desc, in, values)
	if err != nil {
		return Built{}, err
	}

	reqURL := cred.BaseURL() + path
	var body []byte
	if desc.hasBody() {
		body, err = encodeBody(in, desc.PathParams)
		if err != nil {
			return Built{}, fmt.Errorf("operation: %s: encode body: %w", desc.Name, err)
		}
	} else {
		query, err := encodeQuery(in, desc.PathParams)
		if err != nil {
			return Built{}, fmt.Errorf("operation: %s: encode query: %w", desc.Name, err)
		}
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}
	}

	requestID := uuid.NewString()
	return Built{
		Request: model.Request{
			Operation: desc.Name,
			Method:    desc.Method,
			URL:       reqURL,
			Header:    buildHeaders(cred, requestID, body != nil),
			Body:      body,
		},
		Fields:    identifyingFields(values, desc.PathParams),
		RequestID: requestID,
	}, nil
}

// resolvePath expands the descriptor's template. Missing or empty path
// parameters are validation errors; template/parameter mismatches were
// rejected by Check before any call.
func resolvePath[In any](desc Descriptor[In], in In, values map[string]any) (string, error) {
	if desc.PathFunc != nil {
		p, err := desc.PathFunc(in)
		if err != nil {
			return "", &model.ValidationError{
				Operation: desc.Name,
				Details:   []model.FieldError{{Code: "path", Message: err.Error()}},
			}
		}
		return p, nil
	}

	var missing []model.FieldError
	path := desc.Path
	for _, name := range desc.PathParams {
		s := stringify(values[name])
		if s == "" {
			missing = append(missing, model.FieldError{Field: name, Code: "required", Message: "required"})
			continue
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(s))
	}
	if len(missing) > 0 {
		return "", &model.ValidationError{Operation: desc.Name, Details: missing}
	}
	return path, nil
}

func encodeQuery(in any, pathParams []string) (url.Values, error) {
	dst := map[string][]string{}
	if err := queryEncoder.Encode(in, dst); err != nil {
		return nil, err
	}
	for _, p := range pathParams {
		delete(dst, p)
	}
	return url.Values(dst), nil
}

func encodeBody(in any, pathParams []string) ([]byte, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	if len(pathParams) == 0 {
		return raw, nil
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, p := range pathParams {
		delete(fields, p)
	}
	return json.Marshal(fields)
}

func buildHeaders(cred model.Credential, requestID string, hasBody bool) http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	if hasBody {
		h.Set("Content-Type", "application/json")
	}
	h.Set("Authorization", "Bearer "+sanitizeHeader(cred.Token))
	if cred.Organization != "" {
		h.Set("X-Organization", sanitizeHeader(cred.Organization))
	}
	h.Set("X-Request-Id", requestID)
	return h
}

// sanitizeHeader strips newlines and carriage returns to prevent header injection.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

// inputValues renders in as a JSON object, keeping numbers exact.
func inputValues(in any) (map[string]any, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw)
}

func identifyingFields(values map[string]any, pathParams []string) map[string]string {
	fields := make(map[string]string)
	for _, name := range model.IdentifyingFields() {
		if s := stringify(values[name]); s != "" {
			fields[name] = s
		}
	}
	for _, name := range pathParams {
		if s := stringify(values[name]); s != "" {
			fields[name] = s
		}
	}
	return fields
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func decodeObject(raw []byte) (map[string]any, error) {
	values := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}

package operation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/pitabwire/pscale/model"
)

// maxBodyExcerpt bounds how much of a response body is copied into errors.
const maxBodyExcerpt = 512

// errorBody is the structured failure body the API returns.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Resolve maps a raw response to the operation's output or to a typed
// error. It is pure: the same response always resolves the same way.
func Resolve[Out any](built Built, variants []model.ErrorVariant, resp model.Response) (Out, error) {
	var out Out
	if resp.Status >= 200 && resp.Status < 300 {
		return decodeOutput[Out](built.Operation, resp)
	}

	body := parseErrorBody(resp)
	if v, ok := MatchVariant(variants, resp.Status, body.Code); ok {
		code := body.Code
		if code == "" {
			code = v.Code
		}
		if code == "" {
			code = model.CanonicalCode(resp.Status)
		}
		return out, &model.OperationError{
			Tag:       v.Tag,
			Operation: built.Operation,
			Status:    resp.Status,
			Code:      code,
			Message:   body.Message,
			Fields:    copyFields(built.Fields),
			RequestID: built.RequestID,
		}
	}
	return out, &model.APIError{
		Operation: built.Operation,
		Status:    resp.Status,
		Code:      body.Code,
		Message:   body.Message,
		RequestID: built.RequestID,
	}
}

// MatchVariant picks the first declared variant for a failure. Variants
// are tried first by the body's error code, then by status alone.
func MatchVariant(variants []model.ErrorVariant, status int, code string) (model.ErrorVariant, bool) {
	if code != "" {
		for _, v := range variants {
			if v.Code == code && (v.Status == 0 || v.Status == status) {
				return v, true
			}
		}
	}
	for _, v := range variants {
		if v.Status == status {
			return v, true
		}
	}
	return model.ErrorVariant{}, false
}

func decodeOutput[Out any](op string, resp model.Response) (Out, error) {
	var out Out
	if _, ok := any(out).(model.Empty); ok {
		return out, nil
	}
	switch strings.TrimSpace(string(resp.Body)) {
	case "":
		return out, &model.DecodeError{
			Operation: op,
			Status:    resp.Status,
			Err:       errors.New("empty response body"),
		}
	case "null":
		return out, &model.DecodeError{
			Operation: op,
			Status:    resp.Status,
			Body:      "null",
			Err:       errors.New("null response body"),
		}
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		var zero Out
		return zero, &model.DecodeError{
			Operation: op,
			Status:    resp.Status,
			Body:      excerpt(resp.Body),
			Err:       err,
		}
	}
	if err := validateOutput(out); err != nil {
		var zero Out
		return zero, &model.DecodeError{
			Operation: op,
			Status:    resp.Status,
			Body:      excerpt(resp.Body),
			Err:       fmt.Errorf("response does not match shape: %w", err),
		}
	}
	return out, nil
}

func validateOutput(out any) error {
	if reflect.ValueOf(out).Kind() != reflect.Struct {
		return nil
	}
	return validateStruct(out)
}

func parseErrorBody(resp model.Response) errorBody {
	var body errorBody
	trimmed := strings.TrimSpace(string(resp.Body))
	if trimmed != "" && json.Unmarshal(resp.Body, &body) == nil {
		if body.Message == "" {
			body.Message = http.StatusText(resp.Status)
		}
		return body
	}
	body = errorBody{Message: excerpt(resp.Body)}
	if body.Message == "" {
		body.Message = http.StatusText(resp.Status)
	}
	return body
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxBodyExcerpt {
		return s[:maxBodyExcerpt] + "..."
	}
	return s
}

func copyFields(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

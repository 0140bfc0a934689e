package operation

import (
	"context"
	"net/http"
	"sync"

	"github.com/pitabwire/pscale/model"
)

type thingInput struct {
	Organization string `json:"organization"`
	Database     string `json:"database" validate:"required"`
	Name         string `json:"name" validate:"required,max=8"`
	Filter       string `json:"filter,omitempty"`
	Limit        int    `json:"limit,omitempty" validate:"omitempty,min=1"`
}

type thing struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

type listThingsInput struct {
	Organization string `json:"organization"`
	model.PageParams
}

var testCred = model.Credential{
	Token:        "tok",
	Organization: "acme",
	APIBaseURL:   "https://api.example.test/v1/",
}

var thingErrors = []model.ErrorVariant{
	{Tag: "ThingUnauthorized", Status: http.StatusUnauthorized, Code: model.CodeUnauthorized},
	{Tag: "ThingNotFound", Status: http.StatusNotFound, Code: model.CodeNotFound},
	{Tag: "ThingLocked", Status: http.StatusConflict, Code: "database_locked"},
}

func getThingDescriptor() Descriptor[thingInput] {
	return Descriptor[thingInput]{
		Name:       "getThing",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/databases/{database}/things/{name}",
		PathParams: []string{"organization", "database", "name"},
		Errors:     thingErrors,
	}
}

func createThingDescriptor() Descriptor[thingInput] {
	d := getThingDescriptor()
	d.Name = "createThing"
	d.Method = http.MethodPost
	d.Path = "/organizations/{organization}/databases/{database}/things"
	d.PathParams = []string{"organization", "database"}
	return d
}

// recordingTransport replays scripted responses and records requests.
type recordingTransport struct {
	mu        sync.Mutex
	responses []model.Response
	err       error
	requests  []model.Request
}

func (t *recordingTransport) Send(_ context.Context, req model.Request) (model.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	if t.err != nil {
		return model.Response{}, t.err
	}
	if len(t.responses) == 0 {
		return model.Response{Status: http.StatusInternalServerError}, nil
	}
	resp := t.responses[0]
	if len(t.responses) > 1 {
		t.responses = t.responses[1:]
	}
	return resp, nil
}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

func jsonResponse(status int, body string) model.Response {
	return model.Response{
		Status: status,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(body),
	}
}

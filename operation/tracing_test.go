package operation

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/pscale/model"
)

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func spanNamed(spans tracetest.SpanStubs, name string) (tracetest.SpanStub, bool) {
	for _, s := range spans {
		if s.Name == name {
			return s, true
		}
	}
	return tracetest.SpanStub{}, false
}

func TestCall_span(t *testing.T) {
	exporter := recordSpans(t)
	tr := &recordingTransport{responses: []model.Response{jsonResponse(404, `{"code":"not_found"}`)}}
	e := NewEngine(tr, model.StaticCredential(testCred))

	_, _ = getThing.Call(context.Background(), e, thingInput{Database: "app", Name: "t"})

	span, ok := spanNamed(exporter.GetSpans(), "operation.getThing")
	if !ok {
		t.Fatalf("span not recorded; got %d spans", len(exporter.GetSpans()))
	}
	if span.SpanKind != trace.SpanKindClient {
		t.Errorf("kind = %v, want client", span.SpanKind)
	}
	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", span.Status.Code)
	}
	attrs := map[string]string{}
	for _, kv := range span.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["pscale.operation"] != "getThing" || attrs["pscale.organization"] != "acme" {
		t.Errorf("attributes = %v", attrs)
	}
	if attrs["http.response.status_code"] != "404" || attrs["http.request.method"] != "GET" {
		t.Errorf("http attributes = %v", attrs)
	}
	if attrs["pscale.request_id"] != tr.requests[0].Header.Get("X-Request-Id") {
		t.Errorf("request id attribute = %q", attrs["pscale.request_id"])
	}
}

func TestCall_injectsTraceparent(t *testing.T) {
	recordSpans(t)
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tr := &recordingTransport{responses: []model.Response{jsonResponse(200, `{"id":"t1"}`)}}
	e := NewEngine(tr, model.StaticCredential(testCred))
	if _, err := getThing.Call(context.Background(), e, thingInput{Database: "app", Name: "t"}); err != nil {
		t.Fatal(err)
	}
	if tr.requests[0].Header.Get("Traceparent") == "" {
		t.Error("traceparent header not injected")
	}
}

func TestPages_streamSpanParentsCalls(t *testing.T) {
	exporter := recordSpans(t)
	tr := &recordingTransport{responses: threePages()}

	if _, err := Collect(listThings.Pages(context.Background(), pagedEngine(tr), listThingsInput{})); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	stream, ok := spanNamed(spans, "pages.listThings")
	if !ok {
		t.Fatal("stream span not recorded")
	}
	if len(stream.Events) != 3 {
		t.Errorf("page events = %d, want 3", len(stream.Events))
	}
	children := 0
	for _, s := range spans {
		if s.Name == "operation.listThings" && s.Parent.SpanID() == stream.SpanContext.SpanID() {
			children++
		}
	}
	if children != 3 {
		t.Errorf("child call spans = %d, want 3", children)
	}
}

package wfmarket

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientListItems(t *testing.T) {
	const expectedURL = "http://market.test/v1/items"
	respBody := `{"payload":{"items":[
		{"id":"54aae292e7798909064f1575","item_name":"Secura Dual Cestra","url_name":"secura_dual_cestra","thumb":"icons/sdc.png"},
		{"id":"54a74454e779892d5e5155d5","item_name":"Secura Penta","url_name":"secura_penta","thumb":"icons/sp.png"}
	]}}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(
		WithBaseURL("http://market.test/v1/"),
		WithHTTPClient(&http.Client{Transport: rt}),
		WithLanguage("en"),
		WithPlatform("pc"),
	)

	items, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("Language") != "en" {
		t.Fatalf("language header missing")
	}
	if capturedHeaders.Get("Platform") != "pc" {
		t.Fatalf("platform header missing")
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "54aae292e7798909064f1575" || items[0].ItemName != "Secura Dual Cestra" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].URLName != "secura_penta" {
		t.Fatalf("unexpected second item %+v", items[1])
	}
}

func TestClientListItemsUpstreamError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader(`{"error":"maintenance"}`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.ListItems(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestClientListItemsMalformedBody(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"payload":`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.ListItems(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

// Package backend groups the EcoFuelConnect REST resources into typed
// façades. Each call returns a domain value or an *Error whose message can be
// shown to a user directly.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ecofuelconnect/efc/internal/adapters/transport"
)

type Backend struct {
	Auth          *Auth
	FuelRequests  *FuelRequests
	Rewards       *Rewards
	Notifications *Notifications
	WasteEntries  *WasteEntries
	Users         *Users
	Content       *Content
	Dashboard     *Dashboard
	Contact       *Contact
}

func New(client *transport.Client) *Backend {
	r := &resource{client: client, validator: newPayloadValidator()}

	return &Backend{
		Auth:          &Auth{r},
		FuelRequests:  &FuelRequests{r},
		Rewards:       &Rewards{r},
		Notifications: &Notifications{r},
		WasteEntries:  &WasteEntries{r},
		Users:         &Users{r},
		Content:       &Content{r},
		Dashboard:     &Dashboard{r},
		Contact:       &Contact{r},
	}
}

type resource struct {
	client    *transport.Client
	validator *payloadValidator
}

func (r *resource) send(ctx context.Context, req transport.Request, fallback string) (*transport.Response, error) {
	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, failure(fallback, err)
	}

	return resp, nil
}

func listOf[T any](ctx context.Context, r *resource, req transport.Request, fallback string, key string, aliases ...string) ([]T, error) {
	resp, err := r.send(ctx, req, fallback)
	if err != nil {
		return nil, err
	}

	canonical, err := NormalizeCollection(resp.Body, key, aliases...)
	if err != nil {
		return nil, failure(fallback, transport.NewMalformedResponseError(resp, req.Method, req.Path, err))
	}

	var envelope map[string][]T
	if err := json.Unmarshal(canonical, &envelope); err != nil {
		return nil, failure(fallback, transport.NewMalformedResponseError(resp, req.Method, req.Path, err))
	}

	items := envelope[key]
	if items == nil {
		items = []T{}
	}

	return items, nil
}

// oneOf decodes a single resource. A PUT answered with an empty body has
// already been applied, so it yields the zero value rather than an error.
func oneOf[T any](ctx context.Context, r *resource, req transport.Request, fallback string, key string, aliases ...string) (T, error) {
	var value T

	resp, err := r.send(ctx, req, fallback)
	if err != nil {
		return value, err
	}

	if req.Method == http.MethodPut && len(bytes.TrimSpace(resp.Body)) == 0 {
		return value, nil
	}

	raw, err := NormalizeObject(resp.Body, key, aliases...)
	if err != nil {
		return value, failure(fallback, transport.NewMalformedResponseError(resp, req.Method, req.Path, err))
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, failure(fallback, transport.NewMalformedResponseError(resp, req.Method, req.Path, err))
	}

	return value, nil
}

func get(path string, query url.Values) transport.Request {
	return transport.Request{Method: http.MethodGet, Path: path, Query: query}
}

func put(path string, body any) transport.Request {
	return transport.Request{Method: http.MethodPut, Path: path, Body: body}
}

func post(path string, body any) transport.Request {
	return transport.Request{Method: http.MethodPost, Path: path, Body: body}
}

func del(path string) transport.Request {
	return transport.Request{Method: http.MethodDelete, Path: path}
}

func withLimit(query url.Values, limit int) url.Values {
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	return query
}

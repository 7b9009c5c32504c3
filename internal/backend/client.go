// Package backend is the typed client for the ludoteca REST backend. It
// knows the endpoints, their methods and their body shapes, and converts
// every failure into *Error. It keeps no state between calls.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// API talks to one backend instance.
type API struct {
	baseURL *url.URL
	http    *http.Client
}

// New builds an API rooted at baseURL ("http://localhost:8080"). A zero
// timeout leaves requests bounded only by their context.
func New(baseURL string, timeout time.Duration) (*API, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	return &API{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

// NewWithClient is New with a caller-provided *http.Client.
func NewWithClient(baseURL string, hc *http.Client) (*API, error) {
	a, err := New(baseURL, 0)
	if err != nil {
		return nil, err
	}
	a.http = hc
	return a, nil
}

type errorBody struct {
	Msg string `json:"msg"`
}

// do sends one request. body, when non-nil, is sent as JSON. out, when
// non-nil and the response has a body, receives the decoded response.
func (a *API) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *a.baseURL
	u.Path = a.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return &Error{Method: method, Path: path, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Method: method, Path: path, Err: fmt.Errorf("%w: read body: %w", ErrUnavailable, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		be := &Error{Method: method, Path: path, Status: resp.StatusCode}
		var eb errorBody
		if len(bytes.TrimSpace(data)) > 0 && json.Unmarshal(data, &eb) == nil {
			be.Msg = eb.Msg
		}
		return be
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// list fetches a collection and normalizes it into model.Page.
func list[T any](ctx context.Context, a *API, method, path string, query url.Values, body any) (model.Page[T], error) {
	var raw jsoniter.RawMessage
	if err := a.do(ctx, method, path, query, body, &raw); err != nil {
		return model.Page[T]{}, err
	}
	page, err := DecodeList[T](raw)
	if err != nil {
		return model.Page[T]{}, &Error{Method: method, Path: path, Status: http.StatusOK, Err: err}
	}
	return page, nil
}

// DecodeList accepts both list shapes the backend produces, a bare array
// or a {content, totalElements} envelope, and returns the normalized page.
// An empty body or null is an empty unpaged list.
func DecodeList[T any](data []byte) (model.Page[T], error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return model.Unpaged[T](nil), nil
	}
	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return model.Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		return model.Unpaged(items), nil
	case '{':
		var env struct {
			Content       []T `json:"content"`
			TotalElements int `json:"totalElements"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return model.Page[T]{}, fmt.Errorf("decode page: %w", err)
		}
		return model.Paged(env.Content, env.TotalElements), nil
	}
	return model.Page[T]{}, fmt.Errorf("decode list: unexpected %q", data[0])
}

// save sends PUT {path} for creation or PUT {path}/{id} for an update and
// returns the entity the backend echoed back, or in when it sent nothing.
func save[T any](ctx context.Context, a *API, path, id string, in T) (T, error) {
	method, p := http.MethodPut, path
	if id != "" {
		p = path + "/" + escape(id)
	}
	out := in
	if err := a.do(ctx, method, p, nil, in, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (a *API) remove(ctx context.Context, path, id string) error {
	return a.do(ctx, http.MethodDelete, path+"/"+escape(id), nil, nil, nil)
}

func escape(id string) string { return url.PathEscape(id) }

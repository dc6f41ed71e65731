package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	baseURL string
	client  *http.Client

	status int
	body   []byte

	accessToken  string
	refreshToken string
	saved        map[string]string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		saved:   make(map[string]string),
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.status = 0
	tc.body = nil
	tc.accessToken = ""
	tc.refreshToken = ""
	tc.saved = make(map[string]string)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.baseURL+tc.Expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GET(path string) error             { return tc.do(http.MethodGet, path, nil) }
func (tc *TestContext) POST(path string, body any) error  { return tc.do(http.MethodPost, path, body) }
func (tc *TestContext) PATCH(path string, body any) error { return tc.do(http.MethodPatch, path, body) }
func (tc *TestContext) DELETE(path string) error          { return tc.do(http.MethodDelete, path, nil) }

func (tc *TestContext) Status() int { return tc.status }

// GetResponseField reads a dotted path ("tokens.access") from the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.body, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	cur := doc
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if cur, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q missing in response: %s", field, tc.body)
		}
	}
	return cur, nil
}

func (tc *TestContext) Body() string { return string(tc.body) }

func (tc *TestContext) SetTokens(access, refresh string) {
	tc.accessToken = access
	tc.refreshToken = refresh
}

func (tc *TestContext) AccessToken() string  { return tc.accessToken }
func (tc *TestContext) RefreshToken() string { return tc.refreshToken }

// Save stores a value that later paths can reference as {name}.
func (tc *TestContext) Save(name, value string) { tc.saved[name] = value }

func (tc *TestContext) Saved(name string) string { return tc.saved[name] }

// Expand substitutes {name} placeholders with saved values.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.saved {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

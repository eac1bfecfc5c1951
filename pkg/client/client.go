// Package client is a Go client for the recipe HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kitchenos/pkg/recipe"
)

var (
	// ErrNotFound is returned when the recipe does not exist for the tenant.
	ErrNotFound = errors.New("recipe not found")
	// ErrBadRequest is returned when the server rejected the request.
	ErrBadRequest = errors.New("bad request")
)

// Client talks to a recipe server on behalf of one tenant.
type Client struct {
	baseURL string
	tenant  int
	http    *http.Client
}

// New returns a Client for baseURL acting as tenant.
func New(baseURL string, tenant int) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tenant:  tenant,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns the tenant's recipes matching query.
func (c *Client) Search(ctx context.Context, query string) ([]recipe.Recipe, error) {
	u := c.baseURL + "/api/recipes"
	if query != "" {
		u += "?q=" + url.QueryEscape(query)
	}
	res, err := c.do(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out []recipe.Recipe
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	for i := range out {
		out[i].OwnerID = c.tenant
	}
	return out, nil
}

// Add creates r for the tenant and returns its id. A non-empty
// idempotencyKey makes retries safe.
func (c *Client) Add(ctx context.Context, r recipe.Recipe, idempotencyKey string) (int, error) {
	body, err := json.Marshal(map[string]string{
		"title":        r.Title,
		"ingredients":  r.Ingredients,
		"instructions": r.Instructions,
		"yield":        r.Yield,
	})
	if err != nil {
		return recipe.InvalidID, err
	}
	var hdr http.Header
	if idempotencyKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	res, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/recipes", body, hdr)
	if err != nil {
		return recipe.InvalidID, err
	}
	defer res.Body.Close()

	var created struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return recipe.InvalidID, fmt.Errorf("decode add response: %w", err)
	}
	return created.ID, nil
}

// Delete removes recipe id. It returns ErrNotFound when the tenant has no
// such recipe.
func (c *Client) Delete(ctx context.Context, id int) error {
	res, err := c.do(ctx, http.MethodDelete, c.baseURL+"/api/recipes/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, hdr http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	req.Header.Set("X-Restaurant-ID", strconv.Itoa(c.tenant))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	if res.StatusCode < 300 {
		return res, nil
	}
	defer res.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	switch res.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(msg)))
	}
	return nil, fmt.Errorf("%s %s: unexpected status %d: %s", method, u, res.StatusCode, strings.TrimSpace(string(msg)))
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenos/pkg/idempotency"
	"kitchenos/pkg/logger"
	"kitchenos/pkg/recipe"
	"kitchenos/pkg/recipe/memory"
)

func newTestServer(t *testing.T, defaultTenant int) (*httptest.Server, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	h := NewHandler(repo, logger.Nop(), Options{
		Idempotency:   idempotency.NewMemoryStore(time.Minute),
		DefaultTenant: defaultTenant,
	})
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, method, url, tenant string, body any, headers ...string) *http.Response {
	t.Helper()
	var b []byte
	if body != nil {
		switch v := body.(type) {
		case string:
			b = []byte(v)
		default:
			var err error
			b, err = json.Marshal(v)
			require.NoError(t, err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set(TenantHeader, tenant)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestAddSearchDelete(t *testing.T) {
	srv, _ := newTestServer(t, 1)
	url := srv.URL + "/api/recipes"

	res := do(t, http.MethodPost, url, "3", recipeRequest{Title: "Spaghetti Carbonara", Ingredients: "Eggs, Guanciale", Instructions: "Cook", Yield: "2p"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	created := decode[createdResponse](t, res)
	assert.Equal(t, createdResponse{ID: 1, Status: "ok"}, created)

	res = do(t, http.MethodGet, url+"?q=GUANCIALE", "3", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	found := decode[[]recipeResponse](t, res)
	assert.Equal(t, []recipeResponse{{ID: 1, Title: "Spaghetti Carbonara", Ingredients: "Eggs, Guanciale", Yield: "2p", Instructions: "Cook"}}, found)

	res = do(t, http.MethodDelete, url+"/1", "3", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, statusResponse{Status: "deleted"}, decode[statusResponse](t, res))

	res = do(t, http.MethodDelete, url+"/1", "3", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = do(t, http.MethodGet, url, "3", nil)
	body := new(bytes.Buffer)
	_, _ = body.ReadFrom(res.Body)
	assert.Equal(t, "[]", strings.TrimSpace(body.String()))
}

func TestAddIgnoresBodyIdentity(t *testing.T) {
	srv, repo := newTestServer(t, 1)
	res := do(t, http.MethodPost, srv.URL+"/api/recipes", "2", `{"id":99,"ownerId":5,"title":"Soup"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	got := repo.Search(context.Background(), 2, "")
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Empty(t, repo.Search(context.Background(), 5, ""))
}

func TestAddRejectsBadRequests(t *testing.T) {
	srv, repo := newTestServer(t, 1)
	url := srv.URL + "/api/recipes"

	cases := []struct {
		name   string
		tenant string
		body   any
	}{
		{"missing tenant", "", recipeRequest{Title: "Soup"}},
		{"non-numeric tenant", "abc", recipeRequest{Title: "Soup"}},
		{"zero tenant", "0", recipeRequest{Title: "Soup"}},
		{"empty title", "1", recipeRequest{Ingredients: "Water"}},
		{"malformed json", "1", `{"title":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := do(t, http.MethodPost, url, tc.tenant, tc.body)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
	assert.Equal(t, 0, repo.Len(context.Background()))
}

func TestSearchTenantHeader(t *testing.T) {
	srv, repo := newTestServer(t, 1)
	ctx := context.Background()
	_, err := repo.Add(ctx, recipe.Recipe{OwnerID: 1, Title: "RestA_Dish"})
	require.NoError(t, err)
	_, err = repo.Add(ctx, recipe.Recipe{OwnerID: 2, Title: "RestB_Dish"})
	require.NoError(t, err)

	res := do(t, http.MethodGet, srv.URL+"/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	found := decode[[]recipeResponse](t, res)
	require.Len(t, found, 1)
	assert.Equal(t, "RestA_Dish", found[0].Title)

	res = do(t, http.MethodGet, srv.URL+"/api/recipes?q=RestB", "1", nil)
	assert.Empty(t, decode[[]recipeResponse](t, res))

	res = do(t, http.MethodGet, srv.URL+"/api/recipes", "x", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSearchRequiresTenantWithoutDefault(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	res := do(t, http.MethodGet, srv.URL+"/api/recipes", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteAcrossTenantsIsNotFound(t *testing.T) {
	srv, repo := newTestServer(t, 1)
	id, err := repo.Add(context.Background(), recipe.Recipe{OwnerID: 2, Title: "Secret"})
	require.NoError(t, err)

	res := do(t, http.MethodDelete, srv.URL+"/api/recipes/"+strconv.Itoa(id), "1", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res = do(t, http.MethodDelete, srv.URL+"/api/recipes/424242", "1", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, 1, repo.Len(context.Background()))
}

func TestDeleteBadInput(t *testing.T) {
	srv, _ := newTestServer(t, 1)
	res := do(t, http.MethodDelete, srv.URL+"/api/recipes/abc", "1", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res = do(t, http.MethodDelete, srv.URL+"/api/recipes/1", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestIdempotentAdd(t *testing.T) {
	srv, repo := newTestServer(t, 1)
	url := srv.URL + "/api/recipes"
	body := recipeRequest{Title: "Brownies"}

	first := decode[createdResponse](t, do(t, http.MethodPost, url, "1", body, IdempotencyHeader, "abc"))
	second := decode[createdResponse](t, do(t, http.MethodPost, url, "1", body, IdempotencyHeader, "abc"))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.Len(context.Background()))

	other := decode[createdResponse](t, do(t, http.MethodPost, url, "2", body, IdempotencyHeader, "abc"))
	assert.NotEqual(t, first.ID, other.ID, "keys are scoped by tenant")
	assert.Equal(t, 2, repo.Len(context.Background()))
}

func TestIndexHealthAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t, 1)

	res := do(t, http.MethodGet, srv.URL+"/", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.NotEmpty(t, res.Header.Get(RequestIDHeader))

	res = do(t, http.MethodGet, srv.URL+"/healthz", "", nil, RequestIDHeader, "req-1")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "req-1", res.Header.Get(RequestIDHeader))
	assert.Equal(t, statusResponse{Status: "ok"}, decode[statusResponse](t, res))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:4321"
	assert.Equal(t, "10.0.0.5", clientIP(r))
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

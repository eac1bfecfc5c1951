// Package api exposes the recipe repository over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	_ "kitchenos/docs"
	"kitchenos/pkg/idempotency"
	"kitchenos/pkg/logger"
	"kitchenos/pkg/otel"
	"kitchenos/pkg/recipe"
	"kitchenos/web"
)

const (
	TenantHeader      = "X-Restaurant-ID"
	IdempotencyHeader = "Idempotency-Key"
	RequestIDHeader   = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

var errMissingTenant = errors.New("missing " + TenantHeader + " header")

// Options configures optional Handler collaborators.
type Options struct {
	// Idempotency enables replay protection for POST /api/recipes.
	Idempotency idempotency.Store
	Tracer      trace.Tracer
	// DefaultTenant is used by searches without a tenant header; zero
	// requires the header.
	DefaultTenant int
}

// Handler serves the recipe API.
type Handler struct {
	repo          recipe.Repository
	idem          idempotency.Store
	log           *logger.Logger
	tracer        trace.Tracer
	defaultTenant int
}

// NewHandler returns a Handler backed by repo.
func NewHandler(repo recipe.Repository, log *logger.Logger, opts Options) *Handler {
	return &Handler{
		repo:          repo,
		idem:          opts.Idempotency,
		log:           log,
		tracer:        opts.Tracer,
		defaultTenant: opts.DefaultTenant,
	}
}

// Router builds the HTTP routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, h.traceMiddleware, h.loggingMiddleware)

	r.HandleFunc("/", indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/recipes").Subrouter()
	api.HandleFunc("", h.searchRecipesHandler).Methods(http.MethodGet)
	api.HandleFunc("", h.addRecipeHandler).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.deleteRecipeHandler).Methods(http.MethodDelete)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// recipeRequest is the body accepted by POST /api/recipes.
type recipeRequest struct {
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Yield        string `json:"yield"`
}

// recipeResponse is a recipe as returned by search.
type recipeResponse struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Yield        string `json:"yield"`
	Instructions string `json:"instructions"`
}

type createdResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// searchRecipesHandler lists the tenant's recipes matching q.
// @Summary Search recipes
// @Produce json
// @Param X-Restaurant-ID header int false "Restaurant ID"
// @Param q query string false "Search text"
// @Success 200 {array} recipeResponse
// @Router /api/recipes [get]
func (h *Handler) searchRecipesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "searchRecipesHandler")
	defer span.End()

	tenant, err := tenantFromRequest(r, h.defaultTenant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := r.URL.Query().Get("q")
	span.SetAttributes(attribute.Int("tenant", tenant), attribute.String("query", q))

	found := h.repo.Search(ctx, tenant, q)
	out := make([]recipeResponse, 0, len(found))
	for _, rec := range found {
		out = append(out, recipeResponse{
			ID:           rec.ID,
			Title:        rec.Title,
			Ingredients:  rec.Ingredients,
			Yield:        rec.Yield,
			Instructions: rec.Instructions,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// addRecipeHandler creates a recipe for the tenant.
// @Summary Add recipe
// @Accept json
// @Produce json
// @Param X-Restaurant-ID header int true "Restaurant ID"
// @Param Idempotency-Key header string false "Replay protection key"
// @Param recipe body recipeRequest true "Recipe"
// @Success 201 {object} createdResponse
// @Router /api/recipes [post]
func (h *Handler) addRecipeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addRecipeHandler")
	defer span.End()

	tenant, err := tenantFromRequest(r, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("tenant", tenant))

	var req recipeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid recipe payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key != "" && h.idem != nil {
		id, ok, err := h.idem.Get(ctx, tenant, key)
		if err != nil {
			h.log.Warn(ctx, "idempotency lookup", "error", err)
		} else if ok {
			h.log.Info(ctx, "idempotent replay", "tenant", tenant, "id", id)
			writeJSON(w, http.StatusCreated, createdResponse{ID: id, Status: "ok"})
			return
		}
	}

	id, err := h.repo.Add(ctx, recipe.Recipe{
		OwnerID:      tenant,
		Title:        req.Title,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Yield:        req.Yield,
	})
	if err != nil {
		if errors.Is(err, recipe.ErrInvalidInput) {
			http.Error(w, "recipe needs a title and a positive restaurant id", http.StatusBadRequest)
			return
		}
		h.log.Error(ctx, "add recipe", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if key != "" && h.idem != nil {
		stored, err := h.idem.Save(ctx, tenant, key, id)
		switch {
		case err != nil:
			h.log.Warn(ctx, "idempotency save", "error", err)
		case stored != id:
			// A concurrent request with the same key won; drop our copy.
			h.repo.Delete(ctx, tenant, id)
			id = stored
		}
	}

	h.log.Info(ctx, "recipe added", "tenant", tenant, "id", id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id, Status: "ok"})
}

// deleteRecipeHandler removes a recipe owned by the tenant.
// @Summary Delete recipe
// @Produce json
// @Param X-Restaurant-ID header int true "Restaurant ID"
// @Param id path int true "Recipe ID"
// @Success 200 {object} statusResponse
// @Failure 404
// @Router /api/recipes/{id} [delete]
func (h *Handler) deleteRecipeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteRecipeHandler")
	defer span.End()

	tenant, err := tenantFromRequest(r, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("tenant", tenant), attribute.Int("recipe.id", id))

	if !h.repo.Delete(ctx, tenant, id) {
		http.NotFound(w, r)
		return
	}
	h.log.Info(ctx, "recipe deleted", "tenant", tenant, "id", id)
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.Index())
}

// healthHandler reports liveness.
// @Summary Liveness probe
// @Produce json
// @Success 200 {object} statusResponse
// @Router /healthz [get]
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// tenantFromRequest reads the tenant header. When it is absent, fallback is
// used if positive.
func tenantFromRequest(r *http.Request, fallback int) (int, error) {
	v := strings.TrimSpace(r.Header.Get(TenantHeader))
	if v == "" {
		if fallback > 0 {
			return fallback, nil
		}
		return 0, errMissingTenant
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s header %q", TenantHeader, v)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

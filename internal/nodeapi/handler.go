package nodeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/counters"
)

// CounterAgent is the serialized counter agent the API forwards to.
type CounterAgent interface {
	Fetch(ctx context.Context, sess counters.SessionID, ids []catalog.ID) ([]counters.FetchResult, error)
	Store(ctx context.Context, sess counters.SessionID, values []counters.StoreValue) error
	SessionAttribute(ctx context.Context, sess counters.SessionID, kind counters.AttrKind, value string) error
	SessionEnd(ctx context.Context, sess counters.SessionID) error
}

// Handler provides HTTP handlers for the local agent API.
type Handler struct {
	agent        CounterAgent
	catalog      *catalog.Catalog
	metrics      http.Handler
	metricsPath  string
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewHandler creates a new Handler. metrics may be nil to disable the
// exposition endpoint.
func NewHandler(agent CounterAgent, cat *catalog.Catalog, metrics http.Handler, metricsPath string, maxBodyBytes int64, logger *slog.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		agent:        agent,
		catalog:      cat,
		metrics:      metrics,
		metricsPath:  metricsPath,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("component", "nodeapi"),
	}
}

// Mux returns a configured ServeMux with all local agent API routes.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/metrics", h.handleChildren)
	mux.HandleFunc("GET /v1/metrics/{name}", h.handleMetric)
	mux.HandleFunc("GET /v1/text/{id}", h.handleText)
	mux.HandleFunc("POST /v1/fetch", h.handleFetch)
	mux.HandleFunc("POST /v1/store", h.handleStore)
	if h.metrics != nil && h.metricsPath != "" {
		mux.Handle("GET "+h.metricsPath, h.metrics)
	}
	return mux
}

func (h *Handler) handleChildren(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = catalog.Namespace
	}
	children, err := h.catalog.Children(prefix)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChildrenResponse{Prefix: prefix, Children: children})
}

func (h *Handler) handleMetric(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	id, err := h.catalog.Lookup(name)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	desc, err := h.catalog.Describe(id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	oneline, _ := h.catalog.Text(id, catalog.TextOneLine)
	writeJSON(w, http.StatusOK, MetricInfo{Name: name, ID: id, Descriptor: desc, OneLine: oneline})
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	id, err := catalog.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kindName := r.URL.Query().Get("kind")
	kind, err := catalog.ParseTextKind(kindName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if kindName == "" {
		kindName = "oneline"
	}
	text, err := h.catalog.Text(id, kind)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{ID: id, Kind: kindName, Text: text})
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if !h.decode(w, r, &req) {
		return
	}
	ids := make([]catalog.ID, 0, len(req.IDs)+len(req.Names))
	ids = append(ids, req.IDs...)
	for _, name := range req.Names {
		id, err := h.catalog.Lookup(name)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "no ids or names given")
		return
	}

	results, err := h.agent.Fetch(r.Context(), SessionFromContext(r.Context()), ids)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	resp := FetchResponse{Results: make([]FetchResult, 0, len(results))}
	for _, res := range results {
		out := FetchResult{ID: res.ID}
		out.Name, _ = h.catalog.Name(res.ID)
		if res.Err != nil {
			out.Error = res.Err.Error()
		} else {
			out.Type = res.Value.Type
			if res.Value.Type == catalog.TypeString {
				out.Value = res.Value.Str
			} else {
				out.Value = res.Value.Uint
			}
		}
		resp.Results = append(resp.Results, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStore(w http.ResponseWriter, r *http.Request) {
	var req StoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "no values given")
		return
	}
	values := make([]counters.StoreValue, 0, len(req.Values))
	for _, item := range req.Values {
		var id catalog.ID
		switch {
		case item.ID != nil:
			id = *item.ID
		case item.Name != "":
			var err error
			if id, err = h.catalog.Lookup(item.Name); err != nil {
				h.writeErr(w, err)
				return
			}
		default:
			writeError(w, http.StatusBadRequest, "store value needs an id or a name")
			return
		}
		values = append(values, counters.StoreValue{ID: id, Value: item.Value})
	}

	if err := h.agent.Store(r.Context(), SessionFromContext(r.Context()), values); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// writeErr maps an agent or catalog error to its status code.
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	} else {
		h.logger.Debug("request rejected", "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, counters.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, counters.ErrUnknownCounter),
		errors.Is(err, catalog.ErrUnknownName),
		errors.Is(err, catalog.ErrUnknownID),
		errors.Is(err, catalog.ErrNoText):
		return http.StatusNotFound
	case errors.Is(err, counters.ErrPartialValidation),
		errors.Is(err, counters.ErrBadValue):
		return http.StatusUnprocessableEntity
	case errors.Is(err, counters.ErrHardware),
		errors.Is(err, counters.ErrStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

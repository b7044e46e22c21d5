package scoreapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/c360studio/semscore/export"
	"github.com/c360studio/semscore/score"
	"github.com/c360studio/semscore/storage"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// RegisterHTTPHandlers registers all score-api HTTP handlers under the given
// prefix. The prefix should be the path segment without a trailing slash
// (e.g. "api/v1"). Handlers are registered as:
//
//	GET  <prefix>/ping
//	GET  <prefix>/ready
//	GET  <prefix>/graph/{id}
//	GET  <prefix>/score/{id}
//	POST <prefix>/score/aggregate
//	POST <prefix>/save/{id}
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	prefix = strings.TrimSuffix(prefix, "/")

	mux.HandleFunc("GET "+prefix+"/ping", c.handlePing)
	mux.HandleFunc("GET "+prefix+"/ready", c.handleReady)
	mux.HandleFunc("GET "+prefix+"/graph/{id}", c.handleGraph)
	mux.HandleFunc("GET "+prefix+"/score/{id}", c.handleScore)
	mux.HandleFunc("POST "+prefix+"/score/aggregate", c.handleAggregate)
	mux.HandleFunc("POST "+prefix+"/save/{id}", c.handleSave)
}

// ----------------------------------------------------------------------------
// GET <prefix>/ping, GET <prefix>/ready
// ----------------------------------------------------------------------------

// handlePing reports liveness including a storage round trip.
func (c *Component) handlePing(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Ping(r.Context()); err != nil {
		c.logger.Error("Storage ping failed", "error", err)
		c.writeError(w, http.StatusInternalServerError, "storage unreachable")
		return
	}
	writeText(w, http.StatusOK, "pong")
}

// handleReady reports process readiness without touching storage.
func (c *Component) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// ----------------------------------------------------------------------------
// GET <prefix>/graph/{id}
// ----------------------------------------------------------------------------

// handleGraph serves the stored assessment graph blob. The Accept header
// selects the representation: application/ld+json returns the JSON-LD blob,
// anything else the Turtle blob.
func (c *Component) handleGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := c.assessmentID(w, r)
	if !ok {
		return
	}

	format := export.FormatTurtle
	if strings.Contains(r.Header.Get("Accept"), "application/ld+json") {
		format = export.FormatJSONLD
	}
	info, _ := export.GetFormatInfo(format)

	cacheKey := "graph:" + string(format) + ":" + id
	if doc, hit := c.cacheGet(cacheKey); hit {
		writeDocument(w, info.MIMEType, doc)
		return
	}

	var (
		doc string
		err error
	)
	if format == export.FormatJSONLD {
		doc, err = c.store.JSONLDGraph(r.Context(), id)
	} else {
		doc, err = c.store.TurtleGraph(r.Context(), id)
	}
	if err != nil {
		c.replyStoreError(w, id, err)
		return
	}

	c.cacheSet(cacheKey, doc)
	writeDocument(w, info.MIMEType, doc)
}

// ----------------------------------------------------------------------------
// GET <prefix>/score/{id}
// ----------------------------------------------------------------------------

// handleScore serves the stored score document verbatim.
func (c *Component) handleScore(w http.ResponseWriter, r *http.Request) {
	id, ok := c.assessmentID(w, r)
	if !ok {
		return
	}

	cacheKey := "score:" + id
	if doc, hit := c.cacheGet(cacheKey); hit {
		writeDocument(w, "application/json", doc)
		return
	}

	doc, err := c.store.ScoreJSON(r.Context(), id)
	if err != nil {
		c.replyStoreError(w, id, err)
		return
	}

	c.cacheSet(cacheKey, doc)
	writeDocument(w, "application/json", doc)
}

// ----------------------------------------------------------------------------
// POST <prefix>/score/aggregate
// ----------------------------------------------------------------------------

// AggregateRequest is the request body for POST <prefix>/score/aggregate.
type AggregateRequest struct {
	// Datasets lists the dataset URIs to aggregate over.
	Datasets []string `json:"datasets"`
}

// AggregateResponse is the response body for POST <prefix>/score/aggregate.
type AggregateResponse struct {
	// Dimensions maps dimension id to its cross-dataset mean.
	Dimensions map[string]score.DimensionAggregate `json:"dimensions"`
}

// handleAggregate computes per-dimension means over the requested datasets.
// Datasets with no stored rows contribute nothing to the means.
func (c *Component) handleAggregate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Datasets) == 0 {
		c.writeError(w, http.StatusBadRequest, "datasets list must not be empty")
		return
	}

	aggregates, err := c.store.AggregateDimensions(r.Context(), req.Datasets)
	if err != nil {
		c.logger.Error("Dimension aggregation failed", "datasets", len(req.Datasets), "error", err)
		c.writeError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}

	c.writeJSON(w, http.StatusOK, AggregateResponse{Dimensions: aggregates})
}

// ----------------------------------------------------------------------------
// POST <prefix>/save/{id}
// ----------------------------------------------------------------------------

// SaveRequest is the request body for POST <prefix>/save/{id}.
type SaveRequest struct {
	// DatasetURI identifies the scored dataset. Defaults to the tree's
	// dataset id when omitted.
	DatasetURI string `json:"dataset_uri"`

	// Turtle is the pre-serialized Turtle assessment graph.
	Turtle string `json:"turtle"`

	// JSONLD is the pre-serialized JSON-LD assessment graph.
	JSONLD string `json:"jsonld"`

	// Scores is the score tree to persist. Derived totals are recomputed
	// server-side; values supplied on the wire are never trusted.
	Scores *score.Tree `json:"scores"`
}

// handleSave persists an assessment supplied by a trusted pipeline job.
// The route requires the configured API key; without a configured key it is
// disabled and answers 401 unconditionally.
func (c *Component) handleSave(w http.ResponseWriter, r *http.Request) {
	if !c.authorized(r) {
		c.writeError(w, http.StatusUnauthorized, "missing or invalid API key")
		return
	}

	id, ok := c.assessmentID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Scores == nil {
		c.writeError(w, http.StatusBadRequest, "scores document is required")
		return
	}

	if err := req.Scores.Normalize(); err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DatasetURI == "" {
		req.DatasetURI = req.Scores.DatasetID
	}

	scoreJSON, err := json.Marshal(req.Scores)
	if err != nil {
		c.logger.Error("Failed to marshal score tree", "assessment_id", id, "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to encode scores")
		return
	}

	assessment := storage.Assessment{
		ID:               id,
		DatasetURI:       req.DatasetURI,
		TurtleAssessment: req.Turtle,
		JSONLDAssessment: req.JSONLD,
		JSONScore:        string(scoreJSON),
	}

	if err := c.store.SaveAssessment(r.Context(), assessment, req.Scores.DimensionRows()); err != nil {
		c.logger.Error("Failed to save assessment", "assessment_id", id, "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to save assessment")
		return
	}

	c.invalidate(id)

	c.logger.Info("Assessment saved via HTTP",
		"assessment_id", id,
		"dataset_uri", req.DatasetURI,
		"score", req.Scores.Dataset.Score,
		"max_score", req.Scores.Dataset.MaxScore)

	c.writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// authorized checks the save-route API key. An unconfigured key disables
// the route rather than opening it.
func (c *Component) authorized(r *http.Request) bool {
	if c.config.APIKey == "" {
		return false
	}
	return r.Header.Get("X-API-Key") == c.config.APIKey
}

// assessmentID extracts and validates the {id} path value. Assessment ids
// are UUIDs; anything else is rejected before touching storage.
func (c *Component) assessmentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid assessment id")
		return "", false
	}
	return id, true
}

// replyStoreError maps a storage read failure onto the response taxonomy:
// unknown id is 404, everything else 500.
func (c *Component) replyStoreError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.writeError(w, http.StatusNotFound, "assessment "+id+" not found")
		return
	}
	c.logger.Error("Storage read failed", "assessment_id", id, "error", err)
	c.writeError(w, http.StatusInternalServerError, "storage failure")
}

func (c *Component) cacheGet(key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	v, ok := c.cache.Get(key)
	if !ok {
		return "", false
	}
	doc, ok := v.(string)
	return doc, ok
}

func (c *Component) cacheSet(key, doc string) {
	if c.cache == nil {
		return
	}
	c.cache.Set(key, doc, gocache.DefaultExpiration)
}

// invalidate drops every cached representation of an assessment.
func (c *Component) invalidate(id string) {
	if c.cache == nil {
		return
	}
	c.cache.Delete("score:" + id)
	c.cache.Delete("graph:" + string(export.FormatTurtle) + ":" + id)
	c.cache.Delete("graph:" + string(export.FormatJSONLD) + ":" + id)
}

// writeJSON marshals data as JSON and writes it with the given status code.
func (c *Component) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Warn("Failed to write JSON response", "error", err)
	}
}

// writeError writes an error reply. Not-found replies use the "message"
// key, every other failure the "error" key.
func (c *Component) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	key := "error"
	if status == http.StatusNotFound {
		key = "message"
	}
	_ = json.NewEncoder(w).Encode(map[string]string{key: msg})
}

// writeDocument writes a stored blob verbatim under the given content type.
func writeDocument(w http.ResponseWriter, contentType, doc string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// writeText writes a plain-text reply.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/netgraph"
	"github.com/mapforge/mapforge/pkg/pipeline"
	"github.com/mapforge/mapforge/pkg/render"
)

// mapRequest is the body of POST /api/v1/maps.
type mapRequest struct {
	Place        string   `json:"place"`
	RadiusMeters float64  `json:"radius_meters,omitempty"`
	EPSG         int      `json:"epsg,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"`

	// Format selects the response body: "png" (default) returns the
	// rendered image, "json" returns a mapResponse summary.
	Format string `json:"format,omitempty"`

	// Size is the PNG edge length in pixels. Ignored for json format.
	Size int `json:"size,omitempty"`
}

// mapResponse is the json-format response for POST /api/v1/maps.
type mapResponse struct {
	Place      string            `json:"place"`
	Address    string            `json:"address"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	NodeCount  int               `json:"node_count"`
	EdgeCount  int               `json:"edge_count"`
	Provenance []string          `json:"provenance"`
	Failed     map[string]string `json:"failed,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding request body"))
		return
	}
	if req.Format != "" && req.Format != "png" && req.Format != "json" {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", req.Format))
		return
	}

	opts := pipeline.Options{
		Place:        req.Place,
		RadiusMeters: req.RadiusMeters,
		EPSG:         req.EPSG,
		Refresh:      req.Refresh,
		Concurrent:   true,
		Logger:       s.logger,
	}
	for _, c := range req.Categories {
		opts.Categories = append(opts.Categories, netgraph.Category(c))
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Run(ctx, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Format == "json" {
		writeJSON(w, http.StatusOK, mapResponse{
			Place:      req.Place,
			Address:    result.Geocode.Address,
			Lat:        result.Geocode.Coordinate.Lat,
			Lon:        result.Geocode.Coordinate.Lon,
			NodeCount:  result.Stats.NodeCount,
			EdgeCount:  result.Stats.EdgeCount,
			Provenance: result.Combined.Provenance,
			Failed:     failedStrings(result.Failed),
			DurationMS: time.Since(start).Milliseconds(),
		})
		return
	}

	// Render into a buffer first so a render failure can still produce
	// a proper JSON error instead of a truncated image body.
	var buf bytes.Buffer
	renderOpts := render.Options{Size: req.Size}
	if err := render.WritePNG(&buf, result.Combined, result.Geocode.Address, renderOpts); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("writing png response", "error", err)
	}
}

func failedStrings(failed map[netgraph.Category]string) map[string]string {
	if len(failed) == 0 {
		return nil
	}
	out := make(map[string]string, len(failed))
	for cat, msg := range failed {
		out[string(cat)] = msg
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

// statusFor maps pipeline error codes to HTTP statuses. Validation
// failures are the caller's fault; upstream trouble is a bad gateway.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPlace, errors.ErrCodeInvalidRadius,
		errors.ErrCodeInvalidCategory, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidCRS:
		return http.StatusBadRequest
	case errors.ErrCodeGeocodeFailed, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeSourceUnavailable, errors.ErrCodeConnection, errors.ErrCodeNoNetworksFetched:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

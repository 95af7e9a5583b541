package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fastimage/internal/cache"
	"fastimage/internal/config"
	"fastimage/internal/loader"
	"fastimage/internal/telemetry"
)

type Handlers struct {
	config      *config.Config
	logger      *zap.Logger
	loader      *loader.Loader
	placeholder Renderable
	metrics     *telemetry.Metrics
}

func New(config *config.Config, logger *zap.Logger, loader *loader.Loader, placeholder Renderable, metrics *telemetry.Metrics) *Handlers {
	if placeholder == nil {
		placeholder = NewGeneratedPlaceholder()
	}
	return &Handlers{
		config:      config,
		logger:      logger,
		loader:      loader,
		placeholder: placeholder,
		metrics:     metrics,
	}
}

type imageMeta struct {
	URL         string       `json:"url"`
	Key         string       `json:"key"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	ContentType string       `json:"content_type"`
	Bytes       int          `json:"bytes"`
	Cached      bool         `json:"cached"`
	FetchedAt   time.Time    `json:"fetched_at"`
	Hints       DisplayHints `json:"hints"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) RequestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		w.Header().Set("X-Request-Id", requestID)
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		pattern := routePattern(r)

		if h.metrics != nil {
			h.metrics.RequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(wrapped.statusCode)).Inc()
			h.metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(duration.Seconds())
		}

		h.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Int64("bytes", wrapped.bytesWritten),
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}

func (h *Handlers) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigin := "*"
		if h.config.AllowedOrigin != "" {
			allowedOrigin = h.config.AllowedOrigin
		} else if origin != "" {
			allowedOrigin = origin
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleImage serves the image behind ?url=. When it cannot be loaded the
// failure is logged and the placeholder is served instead.
func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	rawURL, useCache, hints, err := parseImageQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cacheStatus := "BYPASS"
	if useCache {
		cacheStatus = "MISS"
		if _, ok := h.loader.Peek(rawURL); ok {
			cacheStatus = "HIT"
		}
	}

	entry, err := h.loader.Fetch(r.Context(), rawURL, useCache)
	if err != nil {
		if errors.Is(err, loader.ErrInvalidURL) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Warn("Image unavailable, serving placeholder", zap.String("url", rawURL), zap.Error(err))
		h.servePlaceholder(w, r, hints)
		return
	}

	w.Header().Set("ETag", `"`+generateETag(entry.Data)+`"`)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Type", entry.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(entry.Size()))
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("X-Image-Width", strconv.Itoa(entry.Width))
	w.Header().Set("X-Image-Height", strconv.Itoa(entry.Height))

	// HEAD request doesn't send body
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Write(entry.Data)
}

// HandleImageMeta loads the image like HandleImage but answers with JSON
// metadata and maps failures to status codes.
func (h *Handlers) HandleImageMeta(w http.ResponseWriter, r *http.Request) {
	rawURL, useCache, hints, err := parseImageQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cached := false
	if useCache {
		_, cached = h.loader.Peek(rawURL)
	}

	entry, err := h.loader.Fetch(r.Context(), rawURL, useCache)
	if err != nil {
		h.logger.Warn("Failed to load image metadata", zap.String("url", rawURL), zap.Error(err))
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	key, _ := cache.ParseKey(rawURL)
	writeJSON(w, http.StatusOK, imageMeta{
		URL:         rawURL,
		Key:         key.String(),
		Width:       entry.Width,
		Height:      entry.Height,
		ContentType: entry.ContentType,
		Bytes:       entry.Size(),
		Cached:      cached,
		FetchedAt:   entry.FetchedAt,
		Hints:       hints,
	})
}

func (h *Handlers) servePlaceholder(w http.ResponseWriter, r *http.Request, hints DisplayHints) {
	data, contentType, err := h.placeholder.Render(hints)
	if err != nil {
		h.logger.Error("Failed to render placeholder", zap.Error(err))
		http.Error(w, "Image unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Image-Status", "placeholder")

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Write(data)
}

func parseImageQuery(q url.Values) (string, bool, DisplayHints, error) {
	var hints DisplayHints

	rawURL := strings.TrimSpace(q.Get("url"))
	if rawURL == "" {
		return "", false, hints, fmt.Errorf("missing url parameter")
	}

	useCache := true
	if v := q.Get("cache"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", false, hints, fmt.Errorf("invalid cache parameter: %q", v)
		}
		useCache = b
	}

	var err error
	if hints.Width, err = parseDimension(q.Get("w")); err != nil {
		return "", false, hints, fmt.Errorf("invalid width: %w", err)
	}
	if hints.Height, err = parseDimension(q.Get("h")); err != nil {
		return "", false, hints, fmt.Errorf("invalid height: %w", err)
	}

	switch fit := q.Get("fit"); fit {
	case "", "fit", "fill":
		hints.Fit = fit
	default:
		return "", false, hints, fmt.Errorf("invalid fit mode: %q (supported: fit, fill)", fit)
	}

	return rawURL, useCache, hints, nil
}

func parseDimension(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be non-negative")
	}
	return n, nil
}

func statusForError(err error) int {
	var transportErr *loader.TransportError
	switch {
	case errors.Is(err, loader.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, loader.ErrInvalidImageData):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func generateETag(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])[:16]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

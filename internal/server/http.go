package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ironsheep/manga-panels/internal/fetch"
	"github.com/ironsheep/manga-panels/internal/textdetect"
)

const maxRequestBytes = 1 << 20

type chapterRequest struct {
	ChapterURL string `json:"chapter_url"`
}

type healthBody struct {
	Status        string           `json:"status"`
	Version       string           `json:"version"`
	TextDetection *textdetect.Info `json:"text_detection,omitempty"`
}

type errorBody struct {
	Error *MCPError `json:"error"`
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
	})
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /chapter", s.handleChapter)
	return mux
}

// ListenAndServe serves the HTTP API on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("manga-panels listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok", Version: Version}
	if s.text != nil {
		info := s.text.Info()
		body.TextDetection = &info
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := s.extractChapter(r.Context(), req.ChapterURL)
	if err != nil {
		code := statusFor(err)
		s.log.WithError(err).WithField("status", code).Warn("chapter request failed")
		writeError(w, code, http.StatusText(code), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": res})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingURL), errors.Is(err, fetch.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, errFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string, err error) {
	writeJSON(w, code, errorBody{Error: &MCPError{Code: code, Message: message, Data: err.Error()}})
}

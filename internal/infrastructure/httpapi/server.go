package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"articleforge/internal/domain"
	"articleforge/internal/ports"
)

// Server exposes article CRUD plus the augmentation-apply endpoint.
type Server struct {
	repository ports.ArticleRepository
	logger     *slog.Logger
}

// NewServer wires the repository behind the HTTP surface.
func NewServer(repository ports.ArticleRepository, logger *slog.Logger) *Server {
	return &Server{repository: repository, logger: logger}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/articles", s.handleList)
	mux.HandleFunc("POST /api/articles", s.handleCreate)
	mux.HandleFunc("GET /api/articles/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/articles/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/articles/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/articles/{id}/ai-update", s.handleAIUpdate)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if s.logger != nil {
			s.logger.Info("request handled",
				"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		}
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	articles, err := s.repository.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload := make([]articleResponse, 0, len(articles))
	for _, article := range articles {
		payload = append(payload, toResponse(article))
	}
	writeJSON(w, http.StatusOK, envelope{Data: payload})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	article, err := s.repository.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: toResponse(article)})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeValidation(w, "invalid JSON body")
		return
	}
	if msg := body.validate(); msg != "" {
		s.writeValidation(w, msg)
		return
	}

	article, err := s.repository.Create(r.Context(), body.toPayload())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: toResponse(article)})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeValidation(w, "invalid JSON body")
		return
	}

	article, err := s.repository.Update(r.Context(), r.PathValue("id"), body.toPayload())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: toResponse(article)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.repository.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAIUpdate(w http.ResponseWriter, r *http.Request) {
	var body aiUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeValidation(w, "invalid JSON body")
		return
	}
	if body.UpdatedContent == "" {
		s.writeValidation(w, "updatedContent is required")
		return
	}
	if len(body.References) == 0 {
		s.writeValidation(w, "references must not be empty")
		return
	}

	article, err := s.repository.ApplyAugmentation(r.Context(), r.PathValue("id"), body.UpdatedContent, body.References)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: toResponse(article)})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "article not found"})
	case errors.Is(err, domain.ErrSlugConflict):
		writeJSON(w, http.StatusConflict, errorEnvelope{Error: "article slug already exists"})
	default:
		if s.logger != nil {
			s.logger.Error("request failed", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "internal server error"})
	}
}

func (s *Server) writeValidation(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

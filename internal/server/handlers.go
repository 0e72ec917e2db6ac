package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/models"
	"github.com/hyperjump/shori/internal/storage"
)

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.orch.Submit(r.Context(), &input)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":      "validation failed",
				"violations": verr.Violations,
			})
			return
		}
		s.logger.Error("error creating document", zap.Error(err))
		respondError(w, http.StatusBadGateway, "failed to dispatch document for processing")
		return
	}

	respondJSON(w, http.StatusCreated, doc.Sanitized())
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	includeContent := r.URL.Query().Get("includeContent") == "true"
	docs, err := s.orch.List(r.Context(), includeContent)
	if err != nil {
		s.logger.Error("error listing documents", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	includeContent := r.URL.Query().Get("includeContent") == "true"
	doc, err := s.orch.Get(r.Context(), id, includeContent)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("document with ID %s not found", id))
		return
	}
	if err != nil {
		s.logger.Error("error getting document", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var upd models.DocumentUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.orch.Update(r.Context(), id, &upd)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":      "validation failed",
				"violations": verr.Violations,
			})
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("document with ID %s not found", id))
			return
		}
		s.logger.Error("error updating document", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.orch.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("document with ID %s not found", id))
		return
	}
	if err != nil {
		s.logger.Error("error deleting document", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/graph"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/ingest"
)

func (s *Server) tenant(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Tool     string `json:"tool"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := s.tenant(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "No User ID provided")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing message")
		return
	}

	state, err := s.agent.Run(r.Context(), req.Message, userID)
	if err != nil {
		s.logger.Error("chat pipeline failed",
			zap.String("user_id", userID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to generate a response")
		return
	}

	tool := state.Tool
	if tool == "" {
		tool = models.ToolUnknown
	}
	respondJSON(w, http.StatusOK, chatResponse{
		Response: state.Answer,
		Tool:     tool,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID := s.tenant(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "No User ID provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing data")
		return
	}
	defer file.Close()

	if _, err := s.pipeline.IngestFile(r.Context(), userID, header.Filename, file); err != nil {
		if errors.Is(err, ingest.ErrUnsafeFilename) {
			respondError(w, http.StatusBadRequest, "invalid filename")
			return
		}
		s.logger.Error("upload ingestion failed",
			zap.String("user_id", userID),
			zap.String("filename", header.Filename),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}

	// The response does not wait for graph extraction; progress is
	// visible via /status.
	name, _ := ingest.SanitizeFilename(header.Filename)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Processed %s. Added to Postgres & Neo4j.", name),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := s.tenant(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "No User ID provided")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": s.status.Get(userID),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	userID := s.tenant(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "No User ID provided")
		return
	}

	if err := s.pipeline.Reset(r.Context(), userID); err != nil {
		s.logger.Error("tenant reset failed",
			zap.String("user_id", userID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to reset tenant data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Reset complete",
	})
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	userID := s.tenant(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "No User ID provided")
		return
	}

	mode := chi.URLParam(r, "mode")
	if mode != "2d" && mode != "3d" {
		respondError(w, http.StatusBadRequest, "mode must be 2d or 3d")
		return
	}

	filename, err := s.viz.Render(r.Context(), userID, mode)
	if err != nil {
		if errors.Is(err, graph.ErrNoGraphData) {
			respondError(w, http.StatusNotFound, "No graph data found. Upload a file first!")
			return
		}
		s.logger.Error("visualization failed",
			zap.String("user_id", userID),
			zap.String("mode", mode),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to render visualization")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"url": "/static/" + filename,
	})
}

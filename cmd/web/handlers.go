package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tomz197/ballcatch/internal/assess"
)

// maxBodyBytes bounds questionnaire request bodies.
const maxBodyBytes = 64 << 10

type uclaRequest struct {
	Answers []string `json:"answers"`
}

type personalityRequest struct {
	Answers map[string]int `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// newMux wires the landing page and the questionnaire API.
func newMux(page, sshHost string, logger *log.Logger) *http.ServeMux {
	rendered := strings.ReplaceAll(page, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, rendered)
	})
	mux.HandleFunc("GET /api/ucla/questions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, assess.UCLAQuestions)
	})
	mux.HandleFunc("POST /api/ucla", func(w http.ResponseWriter, r *http.Request) {
		var req uclaRequest
		if !decode(w, r, &req) {
			return
		}
		res, err := assess.ScoreUCLA(req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		logger.Debug("ucla scored", "score", res.Score, "level", res.Level)
		writeJSON(w, http.StatusOK, res)
	})
	mux.HandleFunc("POST /api/personality", func(w http.ResponseWriter, r *http.Request) {
		var req personalityRequest
		if !decode(w, r, &req) {
			return
		}
		res, err := assess.ScorePersonality(req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		logger.Debug("personality scored", "highest", res.Highest)
		writeJSON(w, http.StatusOK, res)
	})
	return mux
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if !errors.Is(err, assess.ErrIncomplete) && !errors.Is(err, assess.ErrInvalidAnswer) {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

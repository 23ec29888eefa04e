package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-classroom/internal/generator"
	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// handleIndex lists the topic tree.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.gen.Registry().Index(), "Index retrieved successfully.")
}

// handlePreview generates one problem for the path in the URL. Generator
// options come from the JSON-encoded options query parameter.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := splitPath(r.PathValue("path"))

	var options map[string]any
	if raw := r.URL.Query().Get("options"); raw != "" {
		violations, err := validateJSON(s.schemas.topicOptions, []byte(raw))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Options must be a JSON object.", "INVALID_OPTIONS", nil)
			return
		}
		if violations != nil {
			writeError(w, http.StatusBadRequest, "Invalid generator options.", "INVALID_OPTIONS", violations)
			return
		}
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			writeError(w, http.StatusBadRequest, "Options must be a JSON object.", "INVALID_OPTIONS", nil)
			return
		}
	}

	p, err := s.gen.GenerateOne(path, options)
	if err != nil {
		status, body := generationError(err)
		writeJSON(w, status, body)
		return
	}
	writeSuccess(w, p, "Problem generated successfully.")
}

// handleLive streams previews over a websocket: each text message is a
// topic request and each reply is a response envelope.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxBodyBytes)

	ctx := r.Context()
	for {
		var req generator.TopicRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("live preview closed", "error", err)
			}
			return
		}

		var reply envelope
		p, err := s.gen.GenerateOne(req.Path, req.Options)
		if err != nil {
			_, reply = generationError(err)
		} else {
			reply = envelope{Status: "success", Message: "Problem generated successfully.", Data: p}
		}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			slog.Debug("live preview write failed", "error", err)
			return
		}
	}
}

func generationError(err error) (int, envelope) {
	fail := func(status int, message, code string, details any) (int, envelope) {
		if details == nil {
			details = map[string]any{}
		}
		return status, envelope{Status: "error", Message: message, Error: &errorBody{Code: code, Details: details}}
	}
	switch {
	case errors.Is(err, generator.ErrGeneratorNotFound):
		return fail(http.StatusNotFound, "Generator not found.", "GENERATOR_NOT_FOUND", nil)
	case errors.Is(err, problem.ErrInvalidParam):
		return fail(http.StatusBadRequest, "Invalid generator options.", "INVALID_OPTIONS", []string{err.Error()})
	default:
		slog.Error("problem generation failed", "error", err)
		return fail(http.StatusInternalServerError, "Error generating problem.", "GENERATE_PROBLEM_ERROR", nil)
	}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

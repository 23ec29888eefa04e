package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/task"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message, code string, details any) {
	if details == nil {
		details = map[string]any{}
	}
	writeJSON(w, status, envelope{
		Status:  "error",
		Message: message,
		Error:   &errorBody{Code: code, Details: details},
	})
}

// writeTaskError maps task service errors onto responses. notFoundCode names
// the resource the route looked up; failCode is used for unexpected errors.
func writeTaskError(w http.ResponseWriter, err error, notFoundCode, failCode string) {
	var inputErr *task.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Message, inputErr.Code, nil)
	case errors.Is(err, classroom.ErrNotFound):
		writeError(w, http.StatusNotFound, "Class not found.", "CLASS_NOT_FOUND", nil)
	case errors.Is(err, task.ErrNotFound):
		message := "Task not found."
		if notFoundCode == "PROBLEMS_NOT_FOUND" {
			message = "Problems not found."
		}
		writeError(w, http.StatusNotFound, message, notFoundCode, nil)
	case errors.Is(err, task.ErrForbidden):
		writeError(w, http.StatusForbidden, "You are not authorized to access this task.", "ACCESS_DENIED", nil)
	default:
		slog.Error("task request failed", "code", failCode, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.", failCode, nil)
	}
}

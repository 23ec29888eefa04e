package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-classroom/internal/generator"
	"github.com/p-n-ai/pai-classroom/internal/task"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// readBody reads a size-limited body and writes a 400 response when it is
// unreadable.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Request body could not be read.", "INVALID_REQUEST", nil)
		return nil, false
	}
	return body, true
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	violations, err := validateJSON(s.schemas.createTask, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body.", "INVALID_REQUEST", nil)
		return
	}
	if violations != nil {
		writeError(w, http.StatusBadRequest, "Request does not match the task schema.", "INVALID_REQUEST", violations)
		return
	}

	var in task.CreateInput
	if err := json.Unmarshal(body, &in); err != nil {
		if errors.Is(err, generator.ErrInvalidShuffle) {
			writeError(w, http.StatusBadRequest, "Invalid shuffle mode.", task.CodeInvalidOptions, nil)
			return
		}
		writeError(w, http.StatusBadRequest, "Malformed JSON body.", "INVALID_REQUEST", nil)
		return
	}

	created, err := s.tasks.CreateTask(UserID(r.Context()), in)
	if err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "TASK_CREATION_ERROR")
		return
	}
	writeSuccess(w, map[string]string{"taskId": created.ID}, "Task created successfully.")
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListTasks(UserID(r.Context()), r.PathValue("classID"))
	if err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "GET_TASKS_ERROR")
		return
	}
	writeSuccess(w, tasks, "Tasks retrieved successfully.")
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.GetTask(UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "GET_TASK_ERROR")
		return
	}
	writeSuccess(w, t, "Task retrieved successfully.")
}

func (s *Server) handleGetProblems(w http.ResponseWriter, r *http.Request) {
	studentNumber, ok := pathStudentNumber(w, r)
	if !ok {
		return
	}
	problems, err := s.tasks.GetProblems(UserID(r.Context()), r.PathValue("id"), studentNumber)
	if err != nil {
		writeTaskError(w, err, "PROBLEMS_NOT_FOUND", "GET_PROBLEMS_ERROR")
		return
	}
	writeSuccess(w, problems, "Problems retrieved successfully.")
}

func (s *Server) handleSetGraded(w http.ResponseWriter, r *http.Request) {
	studentNumber, ok := pathStudentNumber(w, r)
	if !ok {
		return
	}
	var req struct {
		Graded *bool `json:"graded"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Graded == nil {
		writeError(w, http.StatusBadRequest, "Invalid graded status.", "INVALID_GRADED_STATUS", nil)
		return
	}

	userID, id := UserID(r.Context()), r.PathValue("id")
	if err := s.tasks.SetGraded(userID, id, studentNumber, *req.Graded); err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "UPDATE_GRADING_STATUS_ERROR")
		return
	}
	s.writeTask(w, userID, id, "Task grading status updated successfully.")
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task name.", task.CodeInvalidName, nil)
		return
	}

	userID, id := UserID(r.Context()), r.PathValue("id")
	if err := s.tasks.Rename(userID, id, req.Name); err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "RENAME_TASK_ERROR")
		return
	}
	s.writeTask(w, userID, id, "Task renamed successfully.")
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task description.", task.CodeInvalidDescription, nil)
		return
	}

	userID, id := UserID(r.Context()), r.PathValue("id")
	if err := s.tasks.Describe(userID, id, req.Description); err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "UPDATE_DESCRIPTION_ERROR")
		return
	}
	s.writeTask(w, userID, id, "Task description updated successfully.")
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.tasks.Delete(UserID(r.Context()), id); err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "DELETE_TASK_ERROR")
		return
	}
	writeSuccess(w, map[string]string{"taskId": id}, "Task deleted successfully.")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var buf bytes.Buffer
	if err := s.tasks.Export(UserID(r.Context()), id, &buf); err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "EXPORT_TASK_ERROR")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="task-%s.xlsx"`, id))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// writeTask responds with the task after an update.
func (s *Server) writeTask(w http.ResponseWriter, userID, id, message string) {
	t, err := s.tasks.GetTask(userID, id)
	if err != nil {
		writeTaskError(w, err, "TASK_NOT_FOUND", "GET_TASK_ERROR")
		return
	}
	writeSuccess(w, t, message)
}

func pathStudentNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("studentNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student number.", "INVALID_STUDENT_NUMBER", nil)
		return 0, false
	}
	return n, true
}

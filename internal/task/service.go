package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/generator"
	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// Input error codes reported to API clients.
const (
	CodeInvalidClassID     = "INVALID_CLASS_ID"
	CodeInvalidName        = "INVALID_TASK_NAME"
	CodeInvalidDescription = "INVALID_TASK_DESCRIPTION"
	CodeOptionsRequired    = "OPTIONS_REQUIRED"
	CodeInvalidOptions     = "INVALID_OPTIONS"
)

// InputError is a validation failure on one request field. It matches
// ErrInvalidInput with errors.Is.
type InputError struct {
	Code    string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// CreateInput is a task creation request.
type CreateInput struct {
	ClassID     string   `json:"classId" validate:"required,classcode"`
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=1000"`
	Options     *Options `json:"options" validate:"required"`
}

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Classes   classroom.Store
	Tasks     Store
	Generator *generator.Orchestrator
	Events    EventLogger
}

// Service implements the task operations available to a class's teacher
// and admins.
type Service struct {
	classes  classroom.Store
	tasks    Store
	composer *Composer
	events   EventLogger
	validate *validator.Validate
}

// NewService creates a task service.
func NewService(cfg ServiceConfig) *Service {
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}

	validate := validator.New()
	validate.RegisterValidation("classcode", func(fl validator.FieldLevel) bool {
		return classroom.ValidCode(fl.Field().String())
	})

	return &Service{
		classes:  cfg.Classes,
		tasks:    cfg.Tasks,
		composer: NewComposer(cfg.Generator),
		events:   events,
		validate: validate,
	}
}

// CreateTask generates problems for every active student of the class and
// stores them as one task.
func (s *Service) CreateTask(userID string, in CreateInput) (*Task, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	class, err := s.authorize(userID, in.ClassID)
	if err != nil {
		return nil, err
	}
	students := class.ActiveStudentNumbers()

	userTasks, err := s.composer.UserTasks(*in.Options, students)
	if err != nil {
		if invalidOptions(err) {
			return nil, &InputError{Code: CodeInvalidOptions, Message: "invalid generation options", Err: err}
		}
		return nil, fmt.Errorf("composing task: %w", err)
	}

	t := Task{
		ClassID:     class.ID,
		Name:        in.Name,
		Description: in.Description,
		UserTasks:   userTasks,
	}
	id, err := s.tasks.CreateTask(t)
	if err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}

	slog.Info("task created",
		"task_id", id,
		"class_id", class.ID,
		"students", len(students),
		"individual", in.Options.IsIndividualTask,
	)
	s.logEvent(Event{
		TaskID:    id,
		UserID:    userID,
		EventType: EventTaskCreated,
		Data: map[string]any{
			"class_id":   class.ID,
			"students":   len(students),
			"individual": in.Options.IsIndividualTask,
		},
	})

	return s.tasks.GetTask(id, false)
}

// ListTasks returns the tasks of a class without problem lists.
func (s *Service) ListTasks(userID, classID string) ([]Task, error) {
	if !classroom.ValidCode(classID) {
		return nil, &InputError{Code: CodeInvalidClassID, Message: "invalid class id"}
	}
	if _, err := s.authorize(userID, classID); err != nil {
		return nil, err
	}
	return s.tasks.ListTasks(classID)
}

// GetTask returns a task without problem lists.
func (s *Service) GetTask(userID, id string) (*Task, error) {
	return s.authorizeTask(userID, id, false)
}

// GetProblems returns one student's serialized problem list.
func (s *Service) GetProblems(userID, id string, studentNumber int) (json.RawMessage, error) {
	if _, err := s.authorizeTask(userID, id, false); err != nil {
		return nil, err
	}
	return s.tasks.GetProblems(id, studentNumber)
}

// SetGraded updates one student's graded flag.
func (s *Service) SetGraded(userID, id string, studentNumber int, graded bool) error {
	if _, err := s.authorizeTask(userID, id, false); err != nil {
		return err
	}
	if err := s.tasks.SetGraded(id, studentNumber, graded); err != nil {
		return err
	}
	s.logEvent(Event{
		TaskID:    id,
		UserID:    userID,
		EventType: EventTaskGraded,
		Data: map[string]any{
			"student_number": studentNumber,
			"graded":         graded,
		},
	})
	return nil
}

// Rename changes a task's name.
func (s *Service) Rename(userID, id, name string) error {
	name = strings.TrimSpace(name)
	if err := s.validate.Var(name, "required,max=100"); err != nil {
		return &InputError{Code: CodeInvalidName, Message: "task name is required and at most 100 characters"}
	}
	if _, err := s.authorizeTask(userID, id, false); err != nil {
		return err
	}
	return s.tasks.UpdateName(id, name)
}

// Describe changes a task's description.
func (s *Service) Describe(userID, id, description string) error {
	description = strings.TrimSpace(description)
	if err := s.validate.Var(description, "required,max=1000"); err != nil {
		return &InputError{Code: CodeInvalidDescription, Message: "task description is required and at most 1000 characters"}
	}
	if _, err := s.authorizeTask(userID, id, false); err != nil {
		return err
	}
	return s.tasks.UpdateDescription(id, description)
}

// Delete removes a task and all of its user tasks.
func (s *Service) Delete(userID, id string) error {
	t, err := s.authorizeTask(userID, id, false)
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(id); err != nil {
		return err
	}
	s.logEvent(Event{
		TaskID:    id,
		UserID:    userID,
		EventType: EventTaskDeleted,
		Data:      map[string]any{"class_id": t.ClassID},
	})
	return nil
}

// Export writes the task as an XLSX workbook to w.
func (s *Service) Export(userID, id string, w io.Writer) error {
	t, err := s.authorizeTask(userID, id, true)
	if err != nil {
		return err
	}
	return ExportXLSX(w, t)
}

func (s *Service) authorize(userID, classID string) (*classroom.Class, error) {
	class, err := s.classes.GetClass(classID)
	if err != nil {
		return nil, err
	}
	if !class.CanManage(userID) {
		return nil, ErrForbidden
	}
	return class, nil
}

func (s *Service) authorizeTask(userID, id string, withProblems bool) (*Task, error) {
	t, err := s.tasks.GetTask(id, withProblems)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(userID, t.ClassID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) validateInput(in CreateInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating task input: %w", err)
	}

	switch fe := fieldErrs[0]; fe.Field() {
	case "ClassID":
		return &InputError{Code: CodeInvalidClassID, Message: "invalid class id"}
	case "Name":
		return &InputError{Code: CodeInvalidName, Message: "task name is required and at most 100 characters"}
	case "Description":
		return &InputError{Code: CodeInvalidDescription, Message: "task description is required and at most 1000 characters"}
	case "Options":
		return &InputError{Code: CodeOptionsRequired, Message: "options are required"}
	default:
		return &InputError{Code: CodeInvalidOptions, Message: fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))}
	}
}

func (s *Service) logEvent(event Event) {
	if err := s.events.LogEvent(event); err != nil {
		slog.Warn("failed to log task event", "type", event.EventType, "task_id", event.TaskID, "error", err)
	}
}

// invalidOptions reports whether a composition error was caused by the
// request rather than by a generator failure.
func invalidOptions(err error) bool {
	return errors.Is(err, generator.ErrGeneratorNotFound) ||
		errors.Is(err, generator.ErrInvalidShuffle) ||
		errors.Is(err, problem.ErrInvalidParam)
}

package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-classroom/internal/platform/database"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed task store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// CreateTask writes the task and every user task in one transaction.
func (s *PostgresStore) CreateTask(t Task) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tasks (id, class_id, name, description) VALUES ($1::uuid, $2, $3, $4)`,
			t.ID, t.ClassID, t.Name, t.Description,
		); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		batch := &pgx.Batch{}
		for _, ut := range t.UserTasks {
			problems := ut.Problems
			if len(problems) == 0 {
				problems = json.RawMessage("[]")
			}
			batch.Queue(
				`INSERT INTO user_tasks (task_id, student_number, problems, graded)
				 VALUES ($1::uuid, $2, $3::jsonb, $4)`,
				t.ID, ut.StudentNumber, string(problems), ut.Graded,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert user tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return t.ID, nil
}

func (s *PostgresStore) GetTask(id string, withProblems bool) (*Task, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var t Task
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, class_id, name, description, created_at, updated_at
		 FROM tasks WHERE id = $1::uuid`,
		id,
	).Scan(&t.ID, &t.ClassID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}

	userTasks, err := s.userTasks(ctx, []string{id}, withProblems)
	if err != nil {
		return nil, err
	}
	t.UserTasks = userTasks[id]
	if t.UserTasks == nil {
		t.UserTasks = []UserTask{}
	}
	return &t, nil
}

func (s *PostgresStore) ListTasks(classID string) ([]Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, class_id, name, description, created_at, updated_at
		 FROM tasks WHERE class_id = $1
		 ORDER BY created_at ASC`,
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Task, error) {
		var t Task
		err := row.Scan(&t.ID, &t.ClassID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	userTasks, err := s.userTasks(ctx, ids, false)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].UserTasks = userTasks[tasks[i].ID]
		if tasks[i].UserTasks == nil {
			tasks[i].UserTasks = []UserTask{}
		}
	}
	return tasks, nil
}

func (s *PostgresStore) userTasks(ctx context.Context, ids []string, withProblems bool) (map[string][]UserTask, error) {
	out := make(map[string][]UserTask, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	problemsCol := `NULL::text`
	if withProblems {
		problemsCol = `problems::text`
	}
	rows, err := s.pool.Query(ctx,
		`SELECT task_id::text, student_number, `+problemsCol+`, graded
		 FROM user_tasks
		 WHERE task_id = ANY($1::text[]::uuid[])
		 ORDER BY task_id, student_number`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query user tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID   string
			ut       UserTask
			problems *string
		)
		if err := rows.Scan(&taskID, &ut.StudentNumber, &problems, &ut.Graded); err != nil {
			return nil, fmt.Errorf("scan user task: %w", err)
		}
		if problems != nil {
			ut.Problems = json.RawMessage(*problems)
		}
		out[taskID] = append(out[taskID], ut)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user tasks: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetProblems(id string, studentNumber int) (json.RawMessage, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var problems string
	err := s.pool.QueryRow(ctx,
		`SELECT problems::text FROM user_tasks WHERE task_id = $1::uuid AND student_number = $2`,
		id, studentNumber,
	).Scan(&problems)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	return json.RawMessage(problems), nil
}

func (s *PostgresStore) SetGraded(id string, studentNumber int, graded bool) error {
	if !validID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	return database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`UPDATE user_tasks SET graded = $3 WHERE task_id = $1::uuid AND student_number = $2`,
			id, studentNumber, graded,
		)
		if err != nil {
			return fmt.Errorf("update graded: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE tasks SET updated_at = now() WHERE id = $1::uuid`, id); err != nil {
			return fmt.Errorf("touch task: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) UpdateName(id, name string) error {
	return s.updateColumn(id, "name", name)
}

func (s *PostgresStore) UpdateDescription(id, description string) error {
	return s.updateColumn(id, "description", description)
}

// updateColumn sets one of the fixed text columns above.
func (s *PostgresStore) updateColumn(id, column, value string) error {
	if !validID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE tasks SET `+column+` = $2, updated_at = now() WHERE id = $1::uuid`,
		id, value,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", column, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTask(id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package classroom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-classroom/internal/platform/database"
)

const dbTimeout = 5 * time.Second

// pgUniqueViolation is the SQLSTATE for duplicate keys.
const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed class store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateClass(c Class) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if c.TeacherID == "" {
		return "", fmt.Errorf("teacher is required")
	}
	random := c.ID == ""

	for attempt := 0; ; attempt++ {
		if random {
			c.ID = NewCode()
		}
		err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx,
				`INSERT INTO classes (id, name, teacher_id) VALUES ($1, $2, $3)`,
				c.ID, c.Name, c.TeacherID,
			); err != nil {
				return err
			}
			for _, admin := range c.Admins {
				if _, err := tx.Exec(ctx,
					`INSERT INTO class_admins (class_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					c.ID, admin,
				); err != nil {
					return fmt.Errorf("insert admin: %w", err)
				}
			}
			for _, st := range c.Students {
				if _, err := tx.Exec(ctx,
					`INSERT INTO students (class_id, student_number, name, deleted) VALUES ($1, $2, $3, $4)`,
					c.ID, st.StudentNumber, st.Name, st.Deleted,
				); err != nil {
					return fmt.Errorf("insert student: %w", err)
				}
			}
			return nil
		})
		var pgErr *pgconn.PgError
		if random && attempt < 5 && errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.TableName == "classes" {
			continue // code collision
		}
		if err != nil {
			return "", fmt.Errorf("create class: %w", err)
		}
		return c.ID, nil
	}
}

func (s *PostgresStore) GetClass(id string) (*Class, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var c Class
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, teacher_id, deleted, created_at, updated_at
		 FROM classes
		 WHERE id = $1 AND NOT deleted`,
		id,
	).Scan(&c.ID, &c.Name, &c.TeacherID, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query class: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM class_admins WHERE class_id = $1 ORDER BY user_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	c.Admins, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan admins: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT student_number, name, deleted
		 FROM students
		 WHERE class_id = $1
		 ORDER BY student_number`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	c.Students, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Student, error) {
		var st Student
		err := row.Scan(&st.StudentNumber, &st.Name, &st.Deleted)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan students: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) AddStudent(classID string, st Student) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO students (class_id, student_number, name, deleted)
		 SELECT id, $2, $3, $4 FROM classes WHERE id = $1 AND NOT deleted`,
		classID, st.StudentNumber, st.Name, st.Deleted,
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return s.touch(ctx, classID)
}

func (s *PostgresStore) DeleteStudent(classID string, studentNumber int) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE students SET deleted = TRUE
		 WHERE class_id = $1 AND student_number = $2
		   AND EXISTS (SELECT 1 FROM classes WHERE id = $1 AND NOT deleted)`,
		classID, studentNumber,
	)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return s.touch(ctx, classID)
}

func (s *PostgresStore) DeleteClass(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE classes SET deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) touch(ctx context.Context, classID string) error {
	if _, err := s.pool.Exec(ctx, `UPDATE classes SET updated_at = now() WHERE id = $1`, classID); err != nil {
		return fmt.Errorf("touch class: %w", err)
	}
	return nil
}

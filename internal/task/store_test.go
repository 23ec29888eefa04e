package task_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/platform/database/databasetest"
	"github.com/p-n-ai/pai-classroom/internal/task"
)

const missingID = "00000000-0000-0000-0000-000000000000"

func testStore(t *testing.T, store task.Store, classID string) {
	t.Helper()

	id, err := store.CreateTask(task.Task{
		ClassID:     classID,
		Name:        "Week 1",
		Description: "Linear equations",
		UserTasks: []task.UserTask{
			{StudentNumber: 1, Problems: json.RawMessage(`[{"problem":[]}]`)},
			{StudentNumber: 2, Problems: json.RawMessage(`[]`)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	got, err := store.GetTask(id, false)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Name != "Week 1" || got.ClassID != classID || len(got.UserTasks) != 2 {
		t.Fatalf("GetTask() = %+v", got)
	}
	for _, ut := range got.UserTasks {
		if ut.Problems != nil {
			t.Errorf("GetTask(withProblems=false) returned problems for student %d", ut.StudentNumber)
		}
	}

	withProblems, err := store.GetTask(id, true)
	if err != nil {
		t.Fatalf("GetTask(withProblems) error = %v", err)
	}
	if ut, ok := withProblems.UserTask(1); !ok || len(ut.Problems) == 0 {
		t.Errorf("GetTask(withProblems) student 1 = %+v", ut)
	}

	problems, err := store.GetProblems(id, 1)
	if err != nil {
		t.Fatalf("GetProblems() error = %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(problems, &decoded); err != nil || len(decoded) != 1 {
		t.Errorf("GetProblems() = %s, err = %v", problems, err)
	}
	if _, err := store.GetProblems(id, 9); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("GetProblems(9) error = %v, want ErrNotFound", err)
	}

	if err := store.SetGraded(id, 2, true); err != nil {
		t.Fatalf("SetGraded() error = %v", err)
	}
	if err := store.SetGraded(id, 9, true); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("SetGraded(9) error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateName(id, "Week 2"); err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}
	if err := store.UpdateDescription(id, "Slopes"); err != nil {
		t.Fatalf("UpdateDescription() error = %v", err)
	}

	tasks, err := store.ListTasks(classID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(ListTasks()) = %d, want 1", len(tasks))
	}
	if tasks[0].Name != "Week 2" || tasks[0].Description != "Slopes" {
		t.Errorf("ListTasks()[0] = %+v", tasks[0])
	}
	if ut, _ := tasks[0].UserTask(2); ut == nil || !ut.Graded {
		t.Errorf("student 2 graded = %+v, want true", ut)
	}

	if err := store.DeleteTask(id); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := store.GetTask(id, false); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("GetTask() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTask(id); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("DeleteTask() twice error = %v, want ErrNotFound", err)
	}

	for _, bad := range []string{missingID, "not-a-uuid"} {
		if _, err := store.GetTask(bad, false); !errors.Is(err, task.ErrNotFound) {
			t.Errorf("GetTask(%q) error = %v, want ErrNotFound", bad, err)
		}
		if err := store.UpdateName(bad, "x"); !errors.Is(err, task.ErrNotFound) {
			t.Errorf("UpdateName(%q) error = %v, want ErrNotFound", bad, err)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, task.NewMemoryStore(), "ABC123")
}

func TestMemoryStore_ListTasksOrderedByCreation(t *testing.T) {
	store := task.NewMemoryStore()
	first, _ := store.CreateTask(task.Task{ClassID: "ABC123", Name: "first"})
	second, _ := store.CreateTask(task.Task{ClassID: "ABC123", Name: "second"})
	store.CreateTask(task.Task{ClassID: "ZZZ999", Name: "other"})

	tasks, err := store.ListTasks("ABC123")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != first || tasks[1].ID != second {
		t.Errorf("ListTasks() = %+v, want [%s %s]", tasks, first, second)
	}
}

func TestPostgresStore(t *testing.T) {
	pool := databasetest.NewPool(t)

	classes, err := classroom.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("classroom.NewPostgresStore() error = %v", err)
	}
	classID, err := classes.CreateClass(classroom.Class{Name: "Algebra", TeacherID: "teacher-1"})
	if err != nil {
		t.Fatalf("CreateClass() error = %v", err)
	}

	store, err := task.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	testStore(t, store, classID)
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := task.NewPostgresStore(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

package store

import (
	"context"
	"fmt"

	"taskflow/internal/database"
	"taskflow/internal/model"

	"github.com/jackc/pgx/v5"
)

// taskSelect 帶出建立者與被指派者摘要
const taskSelect = `SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date,
       t.created_by, t.assigned_to, t.created_at, t.updated_at,
       c.id, c.name, c.email,
       a.id, a.name, a.email
FROM tasks t
JOIN users c ON c.id = t.created_by
LEFT JOIN users a ON a.id = t.assigned_to`

const taskOrder = ` ORDER BY t.created_at DESC, t.id DESC`

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		t             model.Task
		creator       model.UserSummary
		assigneeID    *int
		assigneeName  *string
		assigneeEmail *string
	)
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedBy,
		&t.AssignedTo,
		&t.CreatedAt,
		&t.UpdatedAt,
		&creator.ID,
		&creator.Name,
		&creator.Email,
		&assigneeID,
		&assigneeName,
		&assigneeEmail,
	); err != nil {
		return nil, err
	}
	t.Creator = &creator
	if assigneeID != nil {
		t.Assignee = &model.UserSummary{ID: *assigneeID}
		if assigneeName != nil {
			t.Assignee.Name = *assigneeName
		}
		if assigneeEmail != nil {
			t.Assignee.Email = *assigneeEmail
		}
	}
	return &t, nil
}

func queryTasks(ctx context.Context, db database.DB, op, where string, args ...any) ([]model.Task, error) {
	rows, err := db.Query(ctx, taskSelect+where+taskOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return tasks, nil
}

func GetTaskByID(ctx context.Context, db database.DB, id int) (*model.Task, error) {
	t, err := scanTask(db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, wrapErr("GetTaskByID", err)
	}
	return t, nil
}

func CreateTask(ctx context.Context, db database.DB, t *model.Task) (*model.Task, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, created_by, assigned_to)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.DueDate,
		t.CreatedBy,
		t.AssignedTo,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("CreateTask: %w", err)
	}
	return t, nil
}

// UpdateTask 寫回可變欄位；created_by 不在此更新
func UpdateTask(ctx context.Context, db database.DB, t *model.Task) error {
	row := db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4,
		     due_date = $5, assigned_to = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING updated_at`,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.DueDate,
		t.AssignedTo,
		t.ID,
	)
	if err := row.Scan(&t.UpdatedAt); err != nil {
		return wrapErr("UpdateTask", err)
	}
	return nil
}

func DeleteTask(ctx context.Context, db database.DB, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteTask: %w", ErrNotFound)
	}
	return nil
}

// ListTasksForUser 使用者建立或被指派的任務，每筆只出現一次
func ListTasksForUser(ctx context.Context, db database.DB, userID int) ([]model.Task, error) {
	return queryTasks(ctx, db, "ListTasksForUser", ` WHERE t.created_by = $1 OR t.assigned_to = $1`, userID)
}

func ListTasksCreatedBy(ctx context.Context, db database.DB, userID int) ([]model.Task, error) {
	return queryTasks(ctx, db, "ListTasksCreatedBy", ` WHERE t.created_by = $1`, userID)
}

func ListTasksAssignedTo(ctx context.Context, db database.DB, userID int) ([]model.Task, error) {
	return queryTasks(ctx, db, "ListTasksAssignedTo", ` WHERE t.assigned_to = $1`, userID)
}

func ListAllTasks(ctx context.Context, db database.DB) ([]model.Task, error) {
	return queryTasks(ctx, db, "ListAllTasks", "")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"taskflow/internal/database"
	"taskflow/internal/errs"
	"taskflow/internal/model"
	"taskflow/internal/policy"
	"taskflow/internal/store"
)

const maxTitleLength = 255

var (
	getTaskByID      = store.GetTaskByID
	createTask       = store.CreateTask
	updateTask       = store.UpdateTask
	deleteTask       = store.DeleteTask
	listTasksForUser = store.ListTasksForUser
	listAllTasks     = store.ListAllTasks
	userExists       = store.UserExists
)

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	DueDate     *string
	AssignedTo  *int
}

// UpdateTaskInput 只有 Set 的欄位會被驗證與套用
type UpdateTaskInput struct {
	Title       model.Optional[string]
	Description model.Optional[string]
	Status      model.Optional[model.TaskStatus]
	Priority    model.Optional[model.TaskPriority]
	DueDate     model.Optional[string]
	AssignedTo  model.Optional[int]
}

// Fields 回傳請求中出現的欄位名稱
func (in UpdateTaskInput) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(in.Title.Set, policy.FieldTitle)
	add(in.Description.Set, policy.FieldDescription)
	add(in.Status.Set, policy.FieldStatus)
	add(in.Priority.Set, policy.FieldPriority)
	add(in.DueDate.Set, policy.FieldDueDate)
	add(in.AssignedTo.Set, policy.FieldAssignedTo)
	return fields
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errs.Newf(errs.Validation, "the title field is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return errs.Newf(errs.Validation, "the title may not be greater than %d characters", maxTitleLength)
	}
	return nil
}

func parseDueDate(s string) (*model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, errs.Newf(errs.Validation, "the due_date is not a valid date")
	}
	return &d, nil
}

func ensureAssignee(ctx context.Context, db database.DB, id int) error {
	ok, err := userExists(ctx, db, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Newf(errs.Validation, "the selected assigned_to is invalid")
	}
	return nil
}

func findTask(ctx context.Context, db database.DB, id int) (*model.Task, error) {
	t, err := getTaskByID(ctx, db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.Newf(errs.NotFound, "task not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTask 建立者固定為請求者
func CreateTask(ctx context.Context, db database.DB, r policy.Requester, in CreateTaskInput) (*model.Task, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	t := model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusTodo,
		Priority:    model.PriorityMedium,
		CreatedBy:   r.ID,
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, errs.Newf(errs.Validation, "the selected status is invalid")
		}
		t.Status = in.Status
	}
	if in.Priority != "" {
		if !in.Priority.Valid() {
			return nil, errs.Newf(errs.Validation, "the selected priority is invalid")
		}
		t.Priority = in.Priority
	}
	if in.DueDate != nil && *in.DueDate != "" {
		d, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = d
	}
	if in.AssignedTo != nil {
		if err := ensureAssignee(ctx, db, *in.AssignedTo); err != nil {
			return nil, err
		}
		t.AssignedTo = in.AssignedTo
	}

	created, err := createTask(ctx, db, &t)
	if err != nil {
		return nil, err
	}
	return findTask(ctx, db, created.ID)
}

func GetTask(ctx context.Context, db database.DB, r policy.Requester, id int) (*model.Task, error) {
	t, err := findTask(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanView(r, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask 先驗證所有欄位再寫入，任何錯誤都不會留下部分修改
func UpdateTask(ctx context.Context, db database.DB, r policy.Requester, id int, in UpdateTaskInput) (*model.Task, error) {
	current, err := findTask(ctx, db, id)
	if err != nil {
		return nil, err
	}
	scope, err := policy.CheckUpdate(r, *current, in.Fields())
	if err != nil {
		return nil, err
	}
	if scope == policy.ScopeStatusOnly && !in.Status.Set {
		return nil, errs.Newf(errs.Validation, "the status field is required")
	}

	next := *current
	if err := applyTaskUpdate(ctx, db, &next, in); err != nil {
		return nil, err
	}
	if err := updateTask(ctx, db, &next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.Newf(errs.NotFound, "task not found")
		}
		return nil, err
	}
	return findTask(ctx, db, id)
}

func applyTaskUpdate(ctx context.Context, db database.DB, t *model.Task, in UpdateTaskInput) error {
	if in.Title.Set {
		if in.Title.Value == nil {
			return errs.Newf(errs.Validation, "the title field is required")
		}
		if err := validateTitle(*in.Title.Value); err != nil {
			return err
		}
		t.Title = *in.Title.Value
	}
	if in.Description.Set {
		t.Description = in.Description.Value
	}
	if in.Status.Set {
		if in.Status.Value == nil || !in.Status.Value.Valid() {
			return errs.Newf(errs.Validation, "the selected status is invalid")
		}
		t.Status = *in.Status.Value
	}
	if in.Priority.Set {
		if in.Priority.Value == nil || !in.Priority.Value.Valid() {
			return errs.Newf(errs.Validation, "the selected priority is invalid")
		}
		t.Priority = *in.Priority.Value
	}
	if in.DueDate.Set {
		t.DueDate = nil
		if in.DueDate.Value != nil && *in.DueDate.Value != "" {
			d, err := parseDueDate(*in.DueDate.Value)
			if err != nil {
				return err
			}
			t.DueDate = d
		}
	}
	if in.AssignedTo.Set {
		t.AssignedTo = nil
		t.Assignee = nil
		if in.AssignedTo.Value != nil {
			if err := ensureAssignee(ctx, db, *in.AssignedTo.Value); err != nil {
				return err
			}
			id := *in.AssignedTo.Value
			t.AssignedTo = &id
		}
	}
	return nil
}

func DeleteTask(ctx context.Context, db database.DB, r policy.Requester, id int) error {
	t, err := findTask(ctx, db, id)
	if err != nil {
		return err
	}
	if err := policy.CanDelete(r, *t); err != nil {
		return err
	}
	if err := deleteTask(ctx, db, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.Newf(errs.NotFound, "task not found")
		}
		return err
	}
	return nil
}

// AssignTask 指派對象必須存在
func AssignTask(ctx context.Context, db database.DB, r policy.Requester, id, assigneeID int) (*model.Task, error) {
	t, err := findTask(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAssign(r, *t); err != nil {
		return nil, err
	}
	if err := ensureAssignee(ctx, db, assigneeID); err != nil {
		return nil, err
	}
	t.AssignedTo = &assigneeID
	if err := updateTask(ctx, db, t); err != nil {
		return nil, fmt.Errorf("assign task %d: %w", id, err)
	}
	return findTask(ctx, db, id)
}

// ListTasks 請求者建立或被指派的任務
func ListTasks(ctx context.Context, db database.DB, r policy.Requester) ([]model.Task, error) {
	return listTasksForUser(ctx, db, r.ID)
}

func ListAllTasks(ctx context.Context, db database.DB, r policy.Requester) ([]model.Task, error) {
	if err := policy.CanListAll(r); err != nil {
		return nil, err
	}
	return listAllTasks(ctx, db)
}

package store

import (
	"time"

	"taskflow/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/* ---------- 假實作 ---------- */

// fakeRow 依 dest 數量模擬不同查詢：
// 16 → 任務含摘要；7 → 使用者；3 → INSERT RETURNING；1 → updated_at 或 EXISTS
type fakeRow struct {
	scanErr error
	user    *model.User
	task    *model.Task
	exists  bool
	now     time.Time
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	switch len(dest) {
	case 16:
		fillTask(dest, r.task)
	case 7:
		u := r.user
		*dest[0].(*int) = u.ID
		*dest[1].(*string) = u.Name
		*dest[2].(*string) = u.Email
		*dest[3].(*string) = u.PasswordHash
		*dest[4].(*model.Role) = u.Role
		*dest[5].(*time.Time) = u.CreatedAt
		*dest[6].(*time.Time) = u.UpdatedAt
	case 3:
		*dest[0].(*int) = 42
		*dest[1].(*time.Time) = r.now
		*dest[2].(*time.Time) = r.now
	case 1:
		switch d := dest[0].(type) {
		case *bool:
			*d = r.exists
		case *time.Time:
			*d = r.now
		}
	default:
		panic("fakeRow.Scan: unexpected number of dest")
	}
	return nil
}

func fillTask(dest []any, t *model.Task) {
	*dest[0].(*int) = t.ID
	*dest[1].(*string) = t.Title
	*dest[2].(**string) = t.Description
	*dest[3].(*model.TaskStatus) = t.Status
	*dest[4].(*model.TaskPriority) = t.Priority
	*dest[5].(**model.Date) = t.DueDate
	*dest[6].(*int) = t.CreatedBy
	*dest[7].(**int) = t.AssignedTo
	*dest[8].(*time.Time) = t.CreatedAt
	*dest[9].(*time.Time) = t.UpdatedAt
	*dest[10].(*int) = t.CreatedBy
	*dest[11].(*string) = "creator"
	*dest[12].(*string) = "creator@example.com"
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		name, email := "assignee", "assignee@example.com"
		*dest[13].(**int) = &id
		*dest[14].(**string) = &name
		*dest[15].(**string) = &email
	}
}

// fakeRows 實作 pgx.Rows，可放使用者或任務
type fakeRows struct {
	users   []model.User
	tasks   []model.Task
	idx     int
	scanErr error
	err     error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { return r.idx < len(r.users)+len(r.tasks) }
func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	defer func() { r.idx++ }()
	if len(r.tasks) > 0 {
		t := r.tasks[r.idx]
		fillTask(dest, &t)
		return nil
	}
	return (&fakeRow{user: &r.users[r.idx]}).Scan(dest...)
}
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

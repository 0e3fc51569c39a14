package policy

import (
	"testing"

	"taskflow/internal/errs"
	"taskflow/internal/model"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

var (
	creator  = Requester{ID: 1, Role: model.RoleUser}
	assignee = Requester{ID: 2, Role: model.RoleUser}
	outsider = Requester{ID: 3, Role: model.RoleUser}
	admin    = Requester{ID: 9, Role: model.RoleAdmin}
	task     = model.Task{ID: 10, CreatedBy: 1, AssignedTo: intPtr(2)}
)

func TestCanView(t *testing.T) {
	require.NoError(t, CanView(creator, task))
	require.NoError(t, CanView(assignee, task))
	require.NoError(t, CanView(admin, task))
	require.True(t, errs.Is(CanView(outsider, task), errs.Forbidden))
}

func TestUpdateScope(t *testing.T) {
	s, err := UpdateScope(creator, task)
	require.NoError(t, err)
	require.Equal(t, ScopeFull, s)

	s, err = UpdateScope(admin, task)
	require.NoError(t, err)
	require.Equal(t, ScopeFull, s)

	s, err = UpdateScope(assignee, task)
	require.NoError(t, err)
	require.Equal(t, ScopeStatusOnly, s)

	s, err = UpdateScope(outsider, task)
	require.True(t, errs.Is(err, errs.Forbidden))
	require.Equal(t, ScopeNone, s)
}

func TestCheckUpdate(t *testing.T) {
	t.Run("assignee status only", func(t *testing.T) {
		s, err := CheckUpdate(assignee, task, []string{FieldStatus})
		require.NoError(t, err)
		require.Equal(t, ScopeStatusOnly, s)
	})

	t.Run("assignee with other field", func(t *testing.T) {
		for _, f := range []string{FieldTitle, FieldDescription, FieldPriority, FieldDueDate, FieldAssignedTo} {
			_, err := CheckUpdate(assignee, task, []string{FieldStatus, f})
			require.True(t, errs.Is(err, errs.Forbidden), f)
		}
	})

	t.Run("creator any field", func(t *testing.T) {
		s, err := CheckUpdate(creator, task, []string{FieldTitle, FieldAssignedTo, FieldStatus})
		require.NoError(t, err)
		require.Equal(t, ScopeFull, s)
	})

	t.Run("assignee who is also creator", func(t *testing.T) {
		own := model.Task{CreatedBy: 2, AssignedTo: intPtr(2)}
		s, err := CheckUpdate(assignee, own, []string{FieldTitle})
		require.NoError(t, err)
		require.Equal(t, ScopeFull, s)
	})

	t.Run("outsider", func(t *testing.T) {
		_, err := CheckUpdate(outsider, task, []string{FieldStatus})
		require.True(t, errs.Is(err, errs.Forbidden))
	})
}

func TestDeleteAndAssign(t *testing.T) {
	for _, r := range []Requester{creator, admin} {
		require.NoError(t, CanDelete(r, task))
		require.NoError(t, CanAssign(r, task))
	}
	for _, r := range []Requester{assignee, outsider} {
		require.True(t, errs.Is(CanDelete(r, task), errs.Forbidden))
		require.True(t, errs.Is(CanAssign(r, task), errs.Forbidden))
	}
}

func TestCanListAll(t *testing.T) {
	require.NoError(t, CanListAll(admin))
	require.True(t, errs.Is(CanListAll(creator), errs.Forbidden))
}

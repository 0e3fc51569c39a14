// Package policy 集中所有任務存取的授權判斷。
//
// 每個函式只做決策，不讀寫資料；拒絕時回傳 errs.Forbidden。
package policy

import (
	"taskflow/internal/errs"
	"taskflow/internal/model"
)

// Requester 發出請求的已驗證使用者
type Requester struct {
	ID   int
	Role model.Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == model.RoleAdmin
}

// 可出現在更新請求中的欄位名稱
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldDueDate     = "due_date"
	FieldAssignedTo  = "assigned_to"
)

type Scope int

const (
	ScopeNone Scope = iota
	ScopeStatusOnly
	ScopeFull
)

func isOwner(r Requester, t model.Task) bool {
	return r.IsAdmin() || t.CreatedBy == r.ID
}

// CanView admin、建立者或被指派者可檢視
func CanView(r Requester, t model.Task) error {
	if isOwner(r, t) || t.IsAssignedTo(r.ID) {
		return nil
	}
	return errs.Newf(errs.Forbidden, "not authorized to view this task")
}

// UpdateScope 回傳請求者可修改的範圍
func UpdateScope(r Requester, t model.Task) (Scope, error) {
	switch {
	case isOwner(r, t):
		return ScopeFull, nil
	case t.IsAssignedTo(r.ID):
		return ScopeStatusOnly, nil
	default:
		return ScopeNone, errs.Newf(errs.Forbidden, "not authorized to update this task")
	}
}

// CheckUpdate 依請求中出現的欄位判斷是否允許更新。
// 僅為被指派者時，出現 status 以外的任何欄位即整筆拒絕。
func CheckUpdate(r Requester, t model.Task, fields []string) (Scope, error) {
	scope, err := UpdateScope(r, t)
	if err != nil {
		return scope, err
	}
	if scope == ScopeStatusOnly {
		for _, f := range fields {
			if f != FieldStatus {
				return scope, errs.Newf(errs.Forbidden, "you can only change the status of this task")
			}
		}
	}
	return scope, nil
}

func CanDelete(r Requester, t model.Task) error {
	if isOwner(r, t) {
		return nil
	}
	return errs.Newf(errs.Forbidden, "only the creator or an admin can delete this task")
}

func CanAssign(r Requester, t model.Task) error {
	if isOwner(r, t) {
		return nil
	}
	return errs.Newf(errs.Forbidden, "only the creator or an admin can assign this task")
}

func CanListAll(r Requester) error {
	if r.IsAdmin() {
		return nil
	}
	return errs.Newf(errs.Forbidden, "admin privileges required")
}

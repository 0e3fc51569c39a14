package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"taskflow/internal/database"
	"taskflow/internal/errs"
	"taskflow/internal/model"
	"taskflow/internal/store"
)

const (
	maxNameLength     = 255
	minPasswordLength = 6
)

var (
	hashPassword        = HashPassword
	getUserByID         = store.GetUserByID
	getUserByEmail      = store.GetUserByEmail
	listUsers           = store.ListUsers
	createUser          = store.CreateUser
	updateUser          = store.UpdateUser
	deleteUser          = store.DeleteUser
	emailTaken          = store.EmailTaken
	listTasksCreatedBy  = store.ListTasksCreatedBy
	listTasksAssignedTo = store.ListTasksAssignedTo
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// UpdateUserInput 密碼為空字串時不變更
type UpdateUserInput struct {
	Name     model.Optional[string]
	Email    model.Optional[string]
	Password model.Optional[string]
	Role     model.Optional[model.Role]
}

// UserDetails 使用者與其建立、被指派的任務
type UserDetails struct {
	model.User
	CreatedTasks  []model.Task `json:"tasks_created"`
	AssignedTasks []model.Task `json:"tasks_assigned"`
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Newf(errs.Validation, "the name field is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errs.Newf(errs.Validation, "the name may not be greater than %d characters", maxNameLength)
	}
	return nil
}

// normalizeEmail 轉小寫並檢查格式
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errs.Newf(errs.Validation, "the email field is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errs.Newf(errs.Validation, "the email must be a valid email address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errs.Newf(errs.Validation, "the password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func ensureEmailFree(ctx context.Context, db database.DB, email string, excludeID int) error {
	taken, err := emailTaken(ctx, db, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errs.Wrapf(errs.Validation, store.ErrEmailTaken, "the email has already been taken")
	}
	return nil
}

func findUser(ctx context.Context, db database.DB, id int) (*model.User, error) {
	u, err := getUserByID(ctx, db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.Newf(errs.NotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return errs.Wrapf(errs.Validation, store.ErrEmailTaken, "the email has already been taken")
	case errors.Is(err, store.ErrNotFound):
		return errs.Newf(errs.NotFound, "user not found")
	}
	return err
}

// CreateUser 建立使用者，Role 為空時預設為 user
func CreateUser(ctx context.Context, db database.DB, in CreateUserInput) (*model.User, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, errs.Newf(errs.Validation, "the selected role is invalid")
	}
	if err := ensureEmailFree(ctx, db, email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := createUser(ctx, db, &model.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return u, nil
}

// Register 自行註冊一律為一般使用者
func Register(ctx context.Context, db database.DB, name, email, password string) (*model.User, error) {
	return CreateUser(ctx, db, CreateUserInput{Name: name, Email: email, Password: password, Role: model.RoleUser})
}

// Authenticate 以 email/密碼登入，失敗一律回傳相同訊息
func Authenticate(ctx context.Context, db database.DB, email, password string) (*model.User, error) {
	u, err := getUserByEmail(ctx, db, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.Newf(errs.Unauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := AuthenticateUser(*u, password); err != nil {
		return nil, errs.Newf(errs.Unauthenticated, "invalid credentials")
	}
	return u, nil
}

func GetUser(ctx context.Context, db database.DB, id int) (*model.User, error) {
	return findUser(ctx, db, id)
}

func ListUsers(ctx context.Context, db database.DB) ([]model.User, error) {
	return listUsers(ctx, db)
}

// UpdateUser 部分更新；密碼有值才重新雜湊
func UpdateUser(ctx context.Context, db database.DB, id int, in UpdateUserInput) (*model.User, error) {
	u, err := findUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	next := *u
	if in.Name.Set {
		if in.Name.Value == nil {
			return nil, errs.Newf(errs.Validation, "the name field is required")
		}
		if err := validateName(*in.Name.Value); err != nil {
			return nil, err
		}
		next.Name = *in.Name.Value
	}
	if in.Email.Set {
		if in.Email.Value == nil {
			return nil, errs.Newf(errs.Validation, "the email field is required")
		}
		email, err := normalizeEmail(*in.Email.Value)
		if err != nil {
			return nil, err
		}
		if err := ensureEmailFree(ctx, db, email, id); err != nil {
			return nil, err
		}
		next.Email = email
	}
	if in.Role.Set {
		if in.Role.Value == nil || !in.Role.Value.Valid() {
			return nil, errs.Newf(errs.Validation, "the selected role is invalid")
		}
		next.Role = *in.Role.Value
	}
	newPassword := ""
	if in.Password.Set && in.Password.Value != nil {
		newPassword = *in.Password.Value
	}
	if newPassword != "" {
		if err := validatePassword(newPassword); err != nil {
			return nil, err
		}
		hash, err := hashPassword(newPassword)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}

	if err := updateUser(ctx, db, &next); err != nil {
		return nil, mapWriteErr(err)
	}
	return &next, nil
}

// DeleteUser 其建立的任務一併刪除，被指派的任務改為未指派
func DeleteUser(ctx context.Context, db database.DB, id int) error {
	if err := deleteUser(ctx, db, id); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func GetUserWithTasks(ctx context.Context, db database.DB, id int) (*UserDetails, error) {
	u, err := findUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	created, err := listTasksCreatedBy(ctx, db, id)
	if err != nil {
		return nil, err
	}
	assigned, err := listTasksAssignedTo(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &UserDetails{User: *u, CreatedTasks: created, AssignedTasks: assigned}, nil
}

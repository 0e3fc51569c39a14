package store

import (
	"context"
	"errors"
	"fmt"

	"taskflow/internal/database"
	"taskflow/internal/model"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already taken")
)

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

// wrapErr 將 pgx.ErrNoRows 轉為 ErrNotFound，其餘錯誤原樣包裝
func wrapErr(op string, err error) error {
	if database.IsNoRows(err) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if database.IsUniqueViolation(err, "users_email_key") {
		return fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	))
	if err != nil {
		return nil, wrapErr("GetUserByID", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, wrapErr("GetUserByEmail", err)
	}
	return u, nil
}

func ListUsers(ctx context.Context, db database.DB) ([]model.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers scan: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers rows: %w", err)
	}
	return users, nil
}

func CreateUser(ctx context.Context, db database.DB, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, wrapErr("CreateUser", err)
	}
	return u, nil
}

// UpdateUser 寫回整列欄位並更新 updated_at
func UpdateUser(ctx context.Context, db database.DB, u *model.User) error {
	row := db.QueryRow(ctx,
		`UPDATE users
		 SET name = $1, email = $2, role = $3, password_hash = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		u.Name,
		u.Email,
		u.Role,
		u.PasswordHash,
		u.ID,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return wrapErr("UpdateUser", err)
	}
	return nil
}

// DeleteUser 建立的任務由外鍵 CASCADE 刪除，被指派的任務 assigned_to 設為 NULL
func DeleteUser(ctx context.Context, db database.DB, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteUser: %w", ErrNotFound)
	}
	return nil
}

// EmailTaken 檢查 email 是否已被其他使用者使用；excludeID 為 0 時不排除任何人
func EmailTaken(ctx context.Context, db database.DB, email string, excludeID int) (bool, error) {
	var taken bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email,
		excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("EmailTaken: %w", err)
	}
	return taken, nil
}

func UserExists(ctx context.Context, db database.DB, id int) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

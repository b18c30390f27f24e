package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

// UserRepo provides data access to the `users` and `user_roles` tables.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user together with its role rows in one transaction and
// returns the generated ID. Username/email collisions are reported as
// ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (string, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.ID = uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var createdBy interface{}
	if u.CreatedBy != "" {
		createdBy = u.CreatedBy
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_by) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, createdBy)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrUserExists
		}
		return "", err
	}
	for _, role := range u.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, type) VALUES (?, ?)`, u.ID, role); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return u.ID, nil
}

// FindByEmail fetches a user by normalized email, including its roles.
// Returns sql.ErrNoRows when no such user exists.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, `email = ?`, email)
}

// FindByID fetches a user by ID, including its roles.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `id = ?`, id)
}

func (r *UserRepo) findOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	q := `SELECT id, username, email, password_hash, COALESCE(created_by, ''), created_at, updated_at
	      FROM users WHERE ` + where + ` LIMIT 1`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT type FROM user_roles WHERE user_id = ?`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		u.Roles = append(u.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &u, nil
}

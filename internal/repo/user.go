package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/postboard/internal/models"
	"github.com/pkg/errors"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================

// Create inserts a user whose password is already hashed. Duplicate username
// or email yields ErrConflict; any failure rolls the transaction back.
func (r *UserRepo) Create(ctx context.Context, username, email string, sex models.Sex, passwordHash string) (*models.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin create user")
	}

	query := `
		INSERT INTO users (username, email, sex, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, sex, password
	`

	user := &models.User{}
	err = tx.QueryRowContext(ctx, query, username, email, string(sex), passwordHash).
		Scan(&user.ID, &user.Username, &user.Email, &user.Sex, &user.Password)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, errors.Wrap(err, "insert user")
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, errors.Wrap(err, "commit create user")
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, email, sex, password
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, sex, password
		FROM users
		WHERE username = $1
	`
	return r.getOne(ctx, query, username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.Sex, &user.Password)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}

	return user, nil
}

// ==========================
// List Users
// ==========================

// List returns users ordered by id, optionally filtered by sex (empty means all).
func (r *UserRepo) List(ctx context.Context, sex models.Sex) ([]models.User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if sex == "" {
		rows, err = r.DB.QueryContext(ctx, `SELECT id, username, email, sex FROM users ORDER BY id`)
	} else {
		rows, err = r.DB.QueryContext(ctx, `SELECT id, username, email, sex FROM users WHERE sex = $1 ORDER BY id`, string(sex))
	}
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Sex); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

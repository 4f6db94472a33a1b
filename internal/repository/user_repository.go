package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nwssu-ccis/campus-parking/internal/model"
	"github.com/nwssu-ccis/campus-parking/internal/utils"
)

// UserRepo persists student accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a user, returning its ID.
// A duplicate student number maps to ErrStudentExists.
func (r *UserRepo) Create(ctx context.Context, studentNumber, password, role string, cost int) (uint64, error) {
	studentNumber = strings.TrimSpace(studentNumber)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (student_number, password_hash, role) VALUES (?,?,?)",
		studentNumber, hash, role)
	if err != nil {
		// MySQL duplicate key error code 1062 on uniq_student_number
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrStudentExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByStudentNumber fetches a user by student number.
func (r *UserRepo) GetByStudentNumber(ctx context.Context, studentNumber string) (model.User, error) {
	studentNumber = strings.TrimSpace(studentNumber)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,student_number,password_hash,role,created_at FROM users WHERE student_number=? LIMIT 1",
		studentNumber).Scan(&u.ID, &u.StudentNumber, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,student_number,password_hash,role,created_at FROM users WHERE user_id=? LIMIT 1",
		id).Scan(&u.ID, &u.StudentNumber, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetIDByStudentNumberTx resolves a student number to a user ID inside an
// existing transaction.  sql.ErrNoRows is mapped to ErrUserNotFound.
func (r *UserRepo) GetIDByStudentNumberTx(ctx context.Context, tx *sql.Tx, studentNumber string) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		"SELECT user_id FROM users WHERE student_number=? LIMIT 1",
		strings.TrimSpace(studentNumber)).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListStudents returns the most recent student accounts for the admin
// dashboard, newest first.
func (r *UserRepo) ListStudents(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id,student_number,role,created_at FROM users WHERE role='user' ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.StudentNumber, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

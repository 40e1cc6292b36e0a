package database

import (
	"database/sql"
	"fmt"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns the stored row
func (r *UserRepository) Create(name, email, passwordHash string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, profile_pic, created_at
	`

	user := &models.User{}
	err := r.db.QueryRow(query, name, email, passwordHash, role).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.ProfilePic, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, profile_pic, created_at
		FROM users WHERE id = $1
	`

	user := &models.User{}
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.ProfilePic, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, profile_pic, created_at
		FROM users WHERE email = $1
	`

	user := &models.User{}
	err := r.db.QueryRow(query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.ProfilePic, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// EmailExists reports whether an email is already registered, optionally
// excluding one user id (for uniqueness checks on update).
func (r *UserRepository) EmailExists(email string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE email = $1 AND id != $2`
	var count int
	err := r.db.QueryRow(query, email, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves all users, newest first
func (r *UserRepository) List() ([]models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, profile_pic, created_at
		FROM users ORDER BY created_at DESC
	`
	return r.listUsers(query)
}

// ListByRole retrieves all users with the given role, newest first
func (r *UserRepository) ListByRole(role models.Role) ([]models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, profile_pic, created_at
		FROM users WHERE role = $1 ORDER BY created_at DESC
	`
	return r.listUsers(query, role)
}

func (r *UserRepository) listUsers(query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.Role, &user.ProfilePic, &user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateProfile updates a user's own mutable fields
func (r *UserRepository) UpdateProfile(id int64, name, passwordHash, profilePic string) error {
	query := `UPDATE users SET name = $1, password_hash = $2, profile_pic = $3 WHERE id = $4`
	result, err := r.db.Exec(query, name, passwordHash, profilePic, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// UpdateAccount updates name, email and role (admin edit)
func (r *UserRepository) UpdateAccount(id int64, name, email string, role models.Role) error {
	query := `UPDATE users SET name = $1, email = $2, role = $3 WHERE id = $4`
	result, err := r.db.Exec(query, name, email, role, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// UpdatePassword replaces a user's password hash (admin reset)
func (r *UserRepository) UpdatePassword(id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	result, err := r.db.Exec(query, passwordHash, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// CountByRole returns the number of users with the given role
func (r *UserRepository) CountByRole(role models.Role) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`
	var count int64
	err := r.db.QueryRow(query, role).Scan(&count)
	return count, err
}

// requireRowsAffected maps zero-row updates to sql.ErrNoRows
func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package queries

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-project/portfolio-server/internal/models"
)

type AdminQueries struct {
	db *sqlx.DB
}

func NewAdminQueries(db *sqlx.DB) *AdminQueries {
	return &AdminQueries{db: db}
}

// CreateAdminParams carries the fields for a new admin account. Password is
// plaintext here and only its bcrypt hash is ever stored.
type CreateAdminParams struct {
	Username       string
	Email          *string
	Password       string
	GitHubID       *string
	GitHubUsername *string
	Role           models.Role
}

// Create inserts a new admin. An account must carry at least one
// authentication method: a password or a GitHub identity.
func (q *AdminQueries) Create(params CreateAdminParams) (*models.Admin, error) {
	if params.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if params.Password == "" && (params.GitHubID == nil || *params.GitHubID == "") {
		return nil, fmt.Errorf("%w: admin must have either a password or a github identity", ErrValidation)
	}
	if params.Role == "" {
		params.Role = models.RoleAdmin
	}
	if !params.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, params.Role)
	}

	admin := &models.Admin{
		ID:             uuid.New(),
		Username:       params.Username,
		Email:          params.Email,
		GitHubID:       params.GitHubID,
		GitHubUsername: params.GitHubUsername,
		Role:           params.Role,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash := string(hashed)
		admin.PasswordHash = &hash
	}

	query := `
		INSERT INTO admins (
			id, username, email, password_hash, github_id, github_username,
			role, is_active, created_at, updated_at
		) VALUES (
			:id, :username, :email, :password_hash, :github_id, :github_username,
			:role, :is_active, :created_at, :updated_at
		)
	`
	if _, err := q.db.NamedExec(query, admin); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username, email or github identity already in use", ErrDuplicate)
		}
		return nil, err
	}

	return admin, nil
}

// GetByID retrieves an admin by ID
func (q *AdminQueries) GetByID(id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	err := q.db.Get(&admin, `SELECT * FROM admins WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByUsernameOrEmail retrieves an admin by username, falling back to
// email. Login accepts either, matching the admin UI.
func (q *AdminQueries) GetByUsernameOrEmail(login string) (*models.Admin, error) {
	var admin models.Admin
	err := q.db.Get(&admin, `SELECT * FROM admins WHERE username = $1 OR email = $1`, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByGitHubID retrieves an admin by their GitHub identity
func (q *AdminQueries) GetByGitHubID(githubID string) (*models.Admin, error) {
	var admin models.Admin
	err := q.db.Get(&admin, `SELECT * FROM admins WHERE github_id = $1`, githubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// List returns all admins, newest first
func (q *AdminQueries) List() ([]models.Admin, error) {
	var admins []models.Admin
	err := q.db.Select(&admins, `SELECT * FROM admins ORDER BY created_at DESC`)
	return admins, err
}

// UpdateLastLogin stamps the admin's last successful login. Called by the
// login and OAuth handlers only, never by the auth middleware.
func (q *AdminQueries) UpdateLastLogin(id uuid.UUID) error {
	_, err := q.db.Exec(`UPDATE admins SET last_login = $1, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	return err
}

// SetActive toggles the active flag. Deactivation takes effect on the next
// request carrying any of the admin's tokens, expired or not, because the
// auth middleware re-checks the flag per request.
func (q *AdminQueries) SetActive(id uuid.UUID, active bool) (*models.Admin, error) {
	result, err := q.db.Exec(`UPDATE admins SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNotFound
	}
	return q.GetByID(id)
}

// VerifyPassword compares a candidate password against the stored hash.
// Returns false for accounts without a password (GitHub-only admins) and on
// mismatch; it never errors.
func VerifyPassword(admin *models.Admin, candidate string) bool {
	if !admin.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(candidate)) == nil
}

package queries

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/portfolio-project/portfolio-server/internal/models"
)

type ProjectQueries struct {
	db *sqlx.DB
}

func NewProjectQueries(db *sqlx.DB) *ProjectQueries {
	return &ProjectQueries{db: db}
}

// ProjectParams carries the writable fields of a project. Images is the
// full replacement list; partial appends are not supported.
type ProjectParams struct {
	Title           string
	Description     string
	LongDescription string
	Technologies    []string
	ProjectURL      string
	DemoURL         string
	Status          models.Status
	Completion      int
	Features        []string
	Challenges      []string
	Lessons         []string
	Images          []string
}

func (p *ProjectParams) validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Status == "" {
		p.Status = models.StatusDevelopment
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	p.Completion = models.ClampCompletion(p.Completion)
	return nil
}

// List returns all projects, newest first
func (q *ProjectQueries) List() ([]models.Project, error) {
	projects := []models.Project{}
	err := q.db.Select(&projects, `SELECT * FROM projects ORDER BY created_at DESC`)
	return projects, err
}

// GetByID retrieves a project by ID
func (q *ProjectQueries) GetByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := q.db.Get(&project, `SELECT * FROM projects WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Create inserts a new project
func (q *ProjectQueries) Create(params ProjectParams) (*models.Project, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:              uuid.New(),
		Title:           params.Title,
		Description:     params.Description,
		LongDescription: params.LongDescription,
		Technologies:    params.Technologies,
		ProjectURL:      params.ProjectURL,
		DemoURL:         params.DemoURL,
		Status:          params.Status,
		Completion:      params.Completion,
		Features:        params.Features,
		Challenges:      params.Challenges,
		Lessons:         params.Lessons,
		Images:          params.Images,
		Date:            now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	query := `
		INSERT INTO projects (
			id, title, description, long_description, technologies,
			project_url, demo_url, status, completion,
			features, challenges, lessons, images, date, created_at, updated_at
		) VALUES (
			:id, :title, :description, :long_description, :technologies,
			:project_url, :demo_url, :status, :completion,
			:features, :challenges, :lessons, :images, :date, :created_at, :updated_at
		)
	`
	if _, err := q.db.NamedExec(query, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Update replaces a project's fields. The whole record is overwritten with
// params; concurrent updates are last-write-wins.
func (q *ProjectQueries) Update(id uuid.UUID, params ProjectParams) (*models.Project, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:              id,
		Title:           params.Title,
		Description:     params.Description,
		LongDescription: params.LongDescription,
		Technologies:    params.Technologies,
		ProjectURL:      params.ProjectURL,
		DemoURL:         params.DemoURL,
		Status:          params.Status,
		Completion:      params.Completion,
		Features:        params.Features,
		Challenges:      params.Challenges,
		Lessons:         params.Lessons,
		Images:          params.Images,
		UpdatedAt:       time.Now().UTC(),
	}

	query := `
		UPDATE projects SET
			title = :title,
			description = :description,
			long_description = :long_description,
			technologies = :technologies,
			project_url = :project_url,
			demo_url = :demo_url,
			status = :status,
			completion = :completion,
			features = :features,
			challenges = :challenges,
			lessons = :lessons,
			images = :images,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := q.db.NamedExec(query, project)
	if err != nil {
		return nil, err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNotFound
	}

	return q.GetByID(id)
}

// Delete removes a project. A second delete of the same ID reports
// ErrNotFound.
func (q *ProjectQueries) Delete(id uuid.UUID) error {
	result, err := q.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

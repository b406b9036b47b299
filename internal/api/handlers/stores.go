package handlers

import (
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
)

// AdminStore is the credential storage surface handlers need. Satisfied by
// queries.AdminQueries.
type AdminStore interface {
	Create(params queries.CreateAdminParams) (*models.Admin, error)
	GetByID(id uuid.UUID) (*models.Admin, error)
	GetByUsernameOrEmail(login string) (*models.Admin, error)
	GetByGitHubID(githubID string) (*models.Admin, error)
	List() ([]models.Admin, error)
	UpdateLastLogin(id uuid.UUID) error
	SetActive(id uuid.UUID, active bool) (*models.Admin, error)
}

// ProjectStore is the project storage surface handlers need. Satisfied by
// queries.ProjectQueries.
type ProjectStore interface {
	List() ([]models.Project, error)
	GetByID(id uuid.UUID) (*models.Project, error)
	Create(params queries.ProjectParams) (*models.Project, error)
	Update(id uuid.UUID, params queries.ProjectParams) (*models.Project, error)
	Delete(id uuid.UUID) error
}

// ImageProcessor accepts uploaded files and returns stored image
// references. Satisfied by upload.Pipeline.
type ImageProcessor interface {
	ProcessBatch(files []*multipart.FileHeader) ([]string, error)
}

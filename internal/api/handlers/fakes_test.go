package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-project/portfolio-server/internal/api/middleware"
	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
	"github.com/portfolio-project/portfolio-server/internal/upload"
)

const testSecret = "handler-test-secret"

// fakeAdminStore is an in-memory AdminStore honoring the same contract as
// queries.AdminQueries.
type fakeAdminStore struct {
	admins map[uuid.UUID]*models.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: map[uuid.UUID]*models.Admin{}}
}

func (f *fakeAdminStore) Create(params queries.CreateAdminParams) (*models.Admin, error) {
	if params.Username == "" {
		return nil, fmt.Errorf("%w: username is required", queries.ErrValidation)
	}
	if params.Password == "" && (params.GitHubID == nil || *params.GitHubID == "") {
		return nil, fmt.Errorf("%w: admin must have either a password or a github identity", queries.ErrValidation)
	}
	if params.Role == "" {
		params.Role = models.RoleAdmin
	}
	if !params.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", queries.ErrValidation, params.Role)
	}
	for _, existing := range f.admins {
		if existing.Username == params.Username {
			return nil, queries.ErrDuplicate
		}
		if params.Email != nil && existing.Email != nil && *existing.Email == *params.Email {
			return nil, queries.ErrDuplicate
		}
		if params.GitHubID != nil && existing.GitHubID != nil && *existing.GitHubID == *params.GitHubID {
			return nil, queries.ErrDuplicate
		}
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
	}
	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		hash := string(hashed)
		admin.PasswordHash = &hash
	}
	f.admins[admin.ID] = admin
	return admin, nil
}

func (f *fakeAdminStore) GetByID(id uuid.UUID) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, queries.ErrNotFound
	}
	return admin, nil
}

func (f *fakeAdminStore) GetByUsernameOrEmail(login string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.Username == login || (admin.Email != nil && *admin.Email == login) {
			return admin, nil
		}
	}
	return nil, queries.ErrNotFound
}

func (f *fakeAdminStore) GetByGitHubID(githubID string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.GitHubID != nil && *admin.GitHubID == githubID {
			return admin, nil
		}
	}
	return nil, queries.ErrNotFound
}

func (f *fakeAdminStore) List() ([]models.Admin, error) {
	var out []models.Admin
	for _, admin := range f.admins {
		out = append(out, *admin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAdminStore) UpdateLastLogin(id uuid.UUID) error {
	admin, ok := f.admins[id]
	if !ok {
		return queries.ErrNotFound
	}
	now := time.Now().UTC()
	admin.LastLogin = &now
	return nil
}

func (f *fakeAdminStore) SetActive(id uuid.UUID, active bool) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, queries.ErrNotFound
	}
	admin.IsActive = active
	return admin, nil
}

// fakeProjectStore is an in-memory ProjectStore honoring the same contract
// as queries.ProjectQueries: status validation, completion clamping, full
// replacement on update.
type fakeProjectStore struct {
	projects map[uuid.UUID]*models.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: map[uuid.UUID]*models.Project{}}
}

func validateParams(params *queries.ProjectParams) error {
	if params.Title == "" {
		return fmt.Errorf("%w: title is required", queries.ErrValidation)
	}
	if params.Status == "" {
		params.Status = models.StatusDevelopment
	}
	if !params.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", queries.ErrValidation, params.Status)
	}
	params.Completion = models.ClampCompletion(params.Completion)
	return nil
}

func projectFromParams(id uuid.UUID, params queries.ProjectParams) *models.Project {
	return &models.Project{
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
	}
}

func (f *fakeProjectStore) List() ([]models.Project, error) {
	out := []models.Project{}
	for _, project := range f.projects {
		out = append(out, *project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeProjectStore) GetByID(id uuid.UUID) (*models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, queries.ErrNotFound
	}
	return project, nil
}

func (f *fakeProjectStore) Create(params queries.ProjectParams) (*models.Project, error) {
	if err := validateParams(&params); err != nil {
		return nil, err
	}
	project := projectFromParams(uuid.New(), params)
	project.CreatedAt = time.Now().UTC()
	f.projects[project.ID] = project
	return project, nil
}

func (f *fakeProjectStore) Update(id uuid.UUID, params queries.ProjectParams) (*models.Project, error) {
	if err := validateParams(&params); err != nil {
		return nil, err
	}
	existing, ok := f.projects[id]
	if !ok {
		return nil, queries.ErrNotFound
	}
	project := projectFromParams(id, params)
	project.CreatedAt = existing.CreatedAt
	f.projects[id] = project
	return project, nil
}

func (f *fakeProjectStore) Delete(id uuid.UUID) error {
	if _, ok := f.projects[id]; !ok {
		return queries.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

// fakeImages returns one synthetic reference per file and rejects files
// whose name starts with "bad".
type fakeImages struct {
	processed int
}

func (f *fakeImages) ProcessBatch(files []*multipart.FileHeader) ([]string, error) {
	refs := []string{}
	for _, file := range files {
		if len(file.Filename) >= 3 && file.Filename[:3] == "bad" {
			return nil, fmt.Errorf("%w: %s", upload.ErrRejected, file.Filename)
		}
		f.processed++
		refs = append(refs, fmt.Sprintf("/uploads/fake-%d.jpg", f.processed))
	}
	return refs, nil
}

// testEnv wires handlers and middleware the way cmd/server does, backed by
// the in-memory fakes.
type testEnv struct {
	router   *gin.Engine
	admins   *fakeAdminStore
	projects *fakeProjectStore
	images   *fakeImages
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		admins:   newFakeAdminStore(),
		projects: newFakeProjectStore(),
		images:   &fakeImages{},
	}

	authHandler := NewAuthHandler(testSecret, env.admins)
	adminHandler := NewAdminHandler(env.admins)
	projectHandler := NewProjectHandler(env.projects, env.images)

	auth := middleware.Auth(testSecret, env.admins)
	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superOnly := middleware.RequireRole(models.RoleSuperAdmin)

	router := gin.New()
	router.GET("/auth/status", authHandler.Status)
	api := router.Group("/api")
	admin := api.Group("/admin")
	admin.POST("/login", authHandler.Login)
	admin.GET("/profile", auth, authHandler.Profile)
	admin.POST("/logout", auth, authHandler.Logout)
	admin.POST("/create", auth, superOnly, adminHandler.Create)
	admin.GET("/list", auth, superOnly, adminHandler.List)
	admin.PATCH("/:id/status", auth, superOnly, adminHandler.SetStatus)

	projects := api.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", auth, adminOnly, projectHandler.Create)
	projects.PUT("/:id", auth, adminOnly, projectHandler.Update)
	projects.DELETE("/:id", auth, adminOnly, projectHandler.Delete)

	env.router = router
	return env
}

// seedAdmin creates an account and returns it with a valid session token.
func (env *testEnv) seedAdmin(username, password string, role models.Role) (*models.Admin, string) {
	email := username + "@example.com"
	admin, err := env.admins.Create(queries.CreateAdminParams{
		Username: username,
		Email:    &email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		panic(err)
	}
	token, err := middleware.GenerateToken(testSecret, admin.ID)
	if err != nil {
		panic(err)
	}
	return admin, token
}

func authorized(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

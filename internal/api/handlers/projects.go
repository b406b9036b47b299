package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
)

// ProjectHandler handles public project reads and authenticated CRUD
type ProjectHandler struct {
	projects ProjectStore
	images   ImageProcessor
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects ProjectStore, images ImageProcessor) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		images:   images,
	}
}

// List returns all projects, newest first. Public.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Get returns one project by ID. Public.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	project, err := h.projects.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Create adds a new project from a multipart form, running any uploaded
// images through the pipeline first.
func (h *ProjectHandler) Create(c *gin.Context) {
	params, files, err := parseProjectForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refs, err := h.images.ProcessBatch(files)
	if err != nil {
		respondError(c, err)
		return
	}
	params.Images = refs

	project, err := h.projects.Create(params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "project created successfully",
		"project": project,
	})
}

// Update replaces a project's fields. Uploaded files, when present, replace
// the image list entirely; without files the prior images are kept.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	existing, err := h.projects.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	params, files, err := parseProjectForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(files) > 0 {
		refs, err := h.images.ProcessBatch(files)
		if err != nil {
			respondError(c, err)
			return
		}
		params.Images = refs
	} else {
		params.Images = existing.Images
	}

	project, err := h.projects.Update(id, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "project updated successfully",
		"project": project,
	})
}

// Delete removes a project. Deleting an already-deleted ID reports 404.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	if err := h.projects.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "project deleted successfully"})
}

// parseProjectForm reads the multipart form: scalar fields directly,
// list fields as JSON-encoded arrays, image files under "images".
func parseProjectForm(c *gin.Context) (queries.ProjectParams, []*multipart.FileHeader, error) {
	var params queries.ProjectParams

	form, err := c.MultipartForm()
	if err != nil {
		return params, nil, fmt.Errorf("invalid multipart form: %v", err)
	}

	params.Title = c.PostForm("title")
	params.Description = c.PostForm("description")
	params.LongDescription = c.PostForm("long_description")
	params.ProjectURL = c.PostForm("project_url")
	params.DemoURL = c.PostForm("demo_url")
	params.Status = models.Status(c.PostForm("status"))

	if raw := c.PostForm("completion"); raw != "" {
		completion, err := strconv.Atoi(raw)
		if err != nil {
			return params, nil, fmt.Errorf("completion must be a number, got %q", raw)
		}
		params.Completion = completion
	}

	lists := []struct {
		key  string
		dest *[]string
	}{
		{"technologies", &params.Technologies},
		{"features", &params.Features},
		{"challenges", &params.Challenges},
		{"lessons", &params.Lessons},
	}
	for _, list := range lists {
		*list.dest = []string{}
		raw := c.PostForm(list.key)
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), list.dest); err != nil {
			return params, nil, fmt.Errorf("%s must be a JSON array of strings", list.key)
		}
	}

	return params, form.File["images"], nil
}

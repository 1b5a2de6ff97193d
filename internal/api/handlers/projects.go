package handlers

import (
	"errors"
	"net/http"
	"time"

	"chargemodel/internal/api/models"
	"chargemodel/internal/dcf"
	"chargemodel/internal/model"
	"chargemodel/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectsHandler covers stored-project CRUD and valuation of stored
// projects. Valuations are computed fresh on every request; nothing derived
// is persisted.
type ProjectsHandler struct {
	projects    *store.ProjectStore
	assumptions model.Assumptions
	irr         dcf.IRRParams
}

func NewProjectsHandler(projects *store.ProjectStore, assumptions model.Assumptions, irr dcf.IRRParams) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, assumptions: assumptions, irr: irr}
}

// Create handles POST /api/v1/projects.
func (h *ProjectsHandler) Create(c *gin.Context) {
	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	inputs := req.Inputs.ToModel()
	if err := inputs.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	now := time.Now().UTC()
	p := &model.Project{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Notes:     req.Notes,
		Inputs:    inputs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.projects.Create(c.Request.Context(), p); err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusCreated, models.FromProject(p))
}

// List handles GET /api/v1/projects.
func (h *ProjectsHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	out := make([]models.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, models.FromProject(p))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/v1/projects/:id.
func (h *ProjectsHandler) Get(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.FromProject(p))
}

// Update handles PUT /api/v1/projects/:id.
func (h *ProjectsHandler) Update(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	inputs := req.Inputs.ToModel()
	if err := inputs.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	p.Name = req.Name
	p.Notes = req.Notes
	p.Inputs = inputs
	p.UpdatedAt = time.Now().UTC()
	if err := h.projects.Update(c.Request.Context(), p); err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.FromProject(p))
}

// Delete handles DELETE /api/v1/projects/:id.
func (h *ProjectsHandler) Delete(c *gin.Context) {
	err := h.projects.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// Valuation handles GET /api/v1/projects/:id/valuation.
func (h *ProjectsHandler) Valuation(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	engine := dcf.New(h.assumptions, h.irr)
	res, err := engine.Valuation(p.Inputs)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.FromResult(res))
}

func (h *ProjectsHandler) load(c *gin.Context) (*model.Project, bool) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "project not found")
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return nil, false
	}
	return p, true
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"chargemodel/internal/api/models"
	"chargemodel/internal/docparse"
	"chargemodel/internal/model"
	"chargemodel/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentsHandler ingests contractor cost documents for a project and
// serves them back with a CapEx comparison.
type DocumentsHandler struct {
	projects  *store.ProjectStore
	documents *store.DocumentStore
}

func NewDocumentsHandler(projects *store.ProjectStore, documents *store.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{projects: projects, documents: documents}
}

// Upload handles POST /api/v1/projects/:id/documents (multipart, field
// "file").
func (h *DocumentsHandler) Upload(c *gin.Context) {
	p, ok := h.loadProject(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "UNREADABLE_FILE", err.Error())
		return
	}
	defer f.Close()

	items, err := docparse.Parse(fileHeader.Filename, f)
	if errors.Is(err, docparse.ErrTooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE", err.Error())
		return
	}
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "UNPARSEABLE_DOCUMENT", err.Error())
		return
	}

	doc := &model.Document{
		ID:         uuid.NewString(),
		ProjectID:  p.ID,
		Filename:   fileHeader.Filename,
		UploadedAt: time.Now().UTC(),
		Items:      items,
	}
	if err := h.documents.Create(c.Request.Context(), doc); err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	cmp := docparse.Compare(items, p.Inputs)
	c.JSON(http.StatusCreated, models.FromDocument(doc, &cmp))
}

// List handles GET /api/v1/projects/:id/documents.
func (h *DocumentsHandler) List(c *gin.Context) {
	p, ok := h.loadProject(c)
	if !ok {
		return
	}

	docs, err := h.documents.ListByProject(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	out := make([]models.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		cmp := docparse.Compare(doc.Items, p.Inputs)
		out = append(out, models.FromDocument(doc, &cmp))
	}
	c.JSON(http.StatusOK, out)
}

func (h *DocumentsHandler) loadProject(c *gin.Context) (*model.Project, bool) {
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

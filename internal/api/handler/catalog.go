package handler

import (
	"net/http"

	"github.com/mcoot/rightsquest/internal/api/response"
	"github.com/mcoot/rightsquest/internal/catalog"
)

// CatalogHandler serves the static module, badge and level tables
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// Modules handles GET /api/v1/catalog/modules
func (h *CatalogHandler) Modules(w http.ResponseWriter, r *http.Request) {
	modules := h.catalog.Modules()
	out := make([]response.Module, len(modules))
	for i, m := range modules {
		out[i] = response.ModuleFromModel(m)
	}
	response.JSON(w, http.StatusOK, out)
}

// Badges handles GET /api/v1/catalog/badges
func (h *CatalogHandler) Badges(w http.ResponseWriter, r *http.Request) {
	badges := h.catalog.Badges()
	out := make([]response.Badge, len(badges))
	for i, b := range badges {
		out[i] = response.BadgeFromModel(b)
	}
	response.JSON(w, http.StatusOK, out)
}

// Levels handles GET /api/v1/catalog/levels
func (h *CatalogHandler) Levels(w http.ResponseWriter, r *http.Request) {
	levels := h.catalog.Levels()
	out := make([]response.Level, len(levels))
	for i, l := range levels {
		out[i] = response.LevelFromModel(l)
	}
	response.JSON(w, http.StatusOK, out)
}

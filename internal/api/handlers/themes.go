package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/gin-gonic/gin"
)

// ThemesHandler serves the suggested themes and audiences
type ThemesHandler struct {
	catalog *models.ThemeCatalog
}

// ThemesResponse is the catalog plus the theme a client should preselect
type ThemesResponse struct {
	*models.ThemeCatalog
	DefaultTheme string `json:"default_theme"`
}

func NewThemesHandler(catalog *models.ThemeCatalog) *ThemesHandler {
	return &ThemesHandler{catalog: catalog}
}

// List returns the whole catalog with its default theme, or one category with ?category=
func (h *ThemesHandler) List(c *gin.Context) {
	name := c.Query("category")
	if name == "" {
		c.JSON(http.StatusOK, ThemesResponse{
			ThemeCatalog: h.catalog,
			DefaultTheme: h.catalog.DefaultTheme(),
		})
		return
	}

	category, ok := h.catalog.Category(name)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown theme category: " + name})
		return
	}
	c.JSON(http.StatusOK, category)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mywbem/internal/repo"
)

// NamespaceHandler serves namespace lifecycle operations.
type NamespaceHandler struct {
	repo *repo.Repository
}

// NewNamespaceHandler creates a namespace handler.
func NewNamespaceHandler(r *repo.Repository) *NamespaceHandler {
	return &NamespaceHandler{repo: r}
}

// ListNamespaces lists all namespace names.
func (h *NamespaceHandler) ListNamespaces(c *gin.Context) {
	Success(c, h.repo.Namespaces())
}

// CreateNamespace creates a namespace.
func (h *NamespaceHandler) CreateNamespace(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.repo.AddNamespace(req.Name); err != nil {
		FromError(c, err)
		return
	}
	Success(c, map[string]string{"name": repo.NormalizeNamespace(req.Name)})
}

// DeleteNamespace removes an empty namespace.
func (h *NamespaceHandler) DeleteNamespace(c *gin.Context) {
	if err := h.repo.RemoveNamespace(c.Param("namespace")); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

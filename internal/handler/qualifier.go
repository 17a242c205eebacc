package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
)

// QualifierHandler serves the qualifier declaration operations.
type QualifierHandler struct {
	engine *engine.Engine
}

// NewQualifierHandler creates a qualifier handler.
func NewQualifierHandler(eng *engine.Engine) *QualifierHandler {
	return &QualifierHandler{engine: eng}
}

// GetQualifier returns a qualifier declaration.
func (h *QualifierHandler) GetQualifier(c *gin.Context) {
	decl, err := h.engine.GetQualifier(c.Param("namespace"), c.Param("qualifier"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, decl)
}

// EnumerateQualifiers lists the qualifier declarations of a namespace.
func (h *QualifierHandler) EnumerateQualifiers(c *gin.Context) {
	decls, err := h.engine.EnumerateQualifiers(c.Param("namespace"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, decls)
}

// SetQualifier creates or replaces a qualifier declaration.
func (h *QualifierHandler) SetQualifier(c *gin.Context) {
	var decl cim.QualifierDecl
	if err := c.ShouldBindJSON(&decl); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	decl.Name = c.Param("qualifier")
	if err := h.engine.SetQualifier(c.Param("namespace"), &decl); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// DeleteQualifier removes a qualifier declaration.
func (h *QualifierHandler) DeleteQualifier(c *gin.Context) {
	if err := h.engine.DeleteQualifier(c.Param("namespace"), c.Param("qualifier")); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

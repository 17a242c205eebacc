package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
)

// ClassHandler serves the class and class-level association operations.
type ClassHandler struct {
	engine *engine.Engine
}

// NewClassHandler creates a class handler.
func NewClassHandler(eng *engine.Engine) *ClassHandler {
	return &ClassHandler{engine: eng}
}

// GetClass returns the resolved view of a class.
func (h *ClassHandler) GetClass(c *gin.Context) {
	cls, err := h.engine.GetClass(c.Param("namespace"), c.Param("class"), classOptions(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, cls)
}

// CreateClass stores a new class.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var cls cim.Class
	if err := c.ShouldBindJSON(&cls); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.CreateClass(c.Param("namespace"), &cls); err != nil {
		FromError(c, err)
		return
	}
	Success(c, map[string]string{"name": cls.Name})
}

// ModifyClass replaces an existing class declaration.
func (h *ClassHandler) ModifyClass(c *gin.Context) {
	var cls cim.Class
	if err := c.ShouldBindJSON(&cls); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	cls.Name = c.Param("class")
	if err := h.engine.ModifyClass(c.Param("namespace"), &cls); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// DeleteClass removes a class.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	if err := h.engine.DeleteClass(c.Param("namespace"), c.Param("class")); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// EnumerateClasses lists classes under an optional superclass.
func (h *ClassHandler) EnumerateClasses(c *gin.Context) {
	classes, err := h.engine.EnumerateClasses(
		c.Param("namespace"), c.Query("superclass"), queryBool(c, "deep", false), classOptions(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, classes)
}

// EnumerateClassNames lists class names under an optional superclass.
func (h *ClassHandler) EnumerateClassNames(c *gin.Context) {
	names, err := h.engine.EnumerateClassNames(
		c.Param("namespace"), c.Query("superclass"), queryBool(c, "deep", false))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, names)
}

// SubclassNames lists the subclasses of a class.
func (h *ClassHandler) SubclassNames(c *gin.Context) {
	names, err := h.engine.SubclassNames(
		c.Param("namespace"), c.Param("class"), queryBool(c, "deep", false))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, names)
}

// SuperclassNames lists the superclass chain of a class, parent first.
func (h *ClassHandler) SuperclassNames(c *gin.Context) {
	names, err := h.engine.SuperclassNames(c.Param("namespace"), c.Param("class"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, names)
}

// ReferenceNames answers the class-level reference query.
func (h *ClassHandler) ReferenceNames(c *gin.Context) {
	names, err := h.engine.ClassReferenceNames(
		c.Param("namespace"), c.Param("class"), c.Query("result_class"), c.Query("role"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, names)
}

// AssociatorNames answers the class-level associator query.
func (h *ClassHandler) AssociatorNames(c *gin.Context) {
	names, err := h.engine.ClassAssociatorNames(
		c.Param("namespace"), c.Param("class"), assocFilter(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, names)
}

func assocFilter(c *gin.Context) engine.AssocFilter {
	return engine.AssocFilter{
		AssocClass:  c.Query("assoc_class"),
		ResultClass: c.Query("result_class"),
		Role:        c.Query("role"),
		ResultRole:  c.Query("result_role"),
	}
}

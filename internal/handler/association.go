package handler

import (
	"github.com/gin-gonic/gin"

	"mywbem/internal/provider"
)

// AssociationHandler serves the instance-level association traversals.
type AssociationHandler struct {
	dispatcher *provider.Dispatcher
}

// NewAssociationHandler creates an association handler.
func NewAssociationHandler(d *provider.Dispatcher) *AssociationHandler {
	return &AssociationHandler{dispatcher: d}
}

// ReferenceNames lists the paths of the association instances referring
// to the source.
func (h *AssociationHandler) ReferenceNames(c *gin.Context) {
	src, err := queryPath(c)
	if err != nil {
		FromError(c, err)
		return
	}
	paths, err := h.dispatcher.ReferenceNames(
		c.Param("namespace"), src, c.Query("result_class"), c.Query("role"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, pathStrings(paths))
}

// References lists the association instances referring to the source.
func (h *AssociationHandler) References(c *gin.Context) {
	src, err := queryPath(c)
	if err != nil {
		FromError(c, err)
		return
	}
	instances, err := h.dispatcher.References(
		c.Param("namespace"), src, c.Query("result_class"), c.Query("role"), instanceOptions(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, instances)
}

// AssociatorNames lists the paths of the instances associated with the
// source.
func (h *AssociationHandler) AssociatorNames(c *gin.Context) {
	src, err := queryPath(c)
	if err != nil {
		FromError(c, err)
		return
	}
	paths, err := h.dispatcher.AssociatorNames(c.Param("namespace"), src, assocFilter(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, pathStrings(paths))
}

// Associators lists the instances associated with the source.
func (h *AssociationHandler) Associators(c *gin.Context) {
	src, err := queryPath(c)
	if err != nil {
		FromError(c, err)
		return
	}
	instances, err := h.dispatcher.Associators(
		c.Param("namespace"), src, assocFilter(c), instanceOptions(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, instances)
}

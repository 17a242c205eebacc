package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
)

// EnumerationHandler serves the open/pull/close pagination protocol.
type EnumerationHandler struct {
	sessions *engine.SessionManager
}

// NewEnumerationHandler creates an enumeration handler.
func NewEnumerationHandler(sm *engine.SessionManager) *EnumerationHandler {
	return &EnumerationHandler{sessions: sm}
}

// openRequest carries the parameters of the six open operations; each
// operation reads the fields it needs.
type openRequest struct {
	Class              string   `json:"class,omitempty"`
	Deep               bool     `json:"deep,omitempty"`
	Path               string   `json:"path,omitempty"`
	AssocClass         string   `json:"assoc_class,omitempty"`
	ResultClass        string   `json:"result_class,omitempty"`
	Role               string   `json:"role,omitempty"`
	ResultRole         string   `json:"result_role,omitempty"`
	MaxObjectCount     int      `json:"max_object_count"`
	LocalOnly          bool     `json:"local_only,omitempty"`
	IncludeQualifiers  bool     `json:"include_qualifiers,omitempty"`
	IncludeClassOrigin bool     `json:"include_class_origin,omitempty"`
	PropertyList       []string `json:"property_list,omitempty"`
}

func (r *openRequest) options() engine.InstanceOptions {
	return engine.InstanceOptions{
		LocalOnly:          r.LocalOnly,
		IncludeQualifiers:  r.IncludeQualifiers,
		IncludeClassOrigin: r.IncludeClassOrigin,
		PropertyList:       r.PropertyList,
	}
}

func (r *openRequest) filter() engine.AssocFilter {
	return engine.AssocFilter{
		AssocClass:  r.AssocClass,
		ResultClass: r.ResultClass,
		Role:        r.Role,
		ResultRole:  r.ResultRole,
	}
}

func (r *openRequest) source() (*cim.InstanceName, error) {
	if r.Path == "" {
		return nil, cim.NewError(cim.StatusInvalidParameter, "path is required")
	}
	return cim.ParseInstanceName(r.Path)
}

func bindOpen(c *gin.Context) (*openRequest, bool) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &req, true
}

func instanceBatch(c *gin.Context, instances []*cim.Instance, ctx *engine.Context, eos bool) {
	Success(c, gin.H{
		"instances":           instances,
		"enumeration_context": ctx,
		"eos":                 eos,
	})
}

func pathBatch(c *gin.Context, paths []*cim.InstanceName, ctx *engine.Context, eos bool) {
	Success(c, gin.H{
		"paths":               pathStrings(paths),
		"enumeration_context": ctx,
		"eos":                 eos,
	})
}

// OpenEnumerateInstances starts a paged instance enumeration.
func (h *EnumerationHandler) OpenEnumerateInstances(c *gin.Context) {
	req, ok := bindOpen(c)
	if !ok {
		return
	}
	batch, ctx, eos, err := h.sessions.OpenEnumerateInstances(
		c.Param("namespace"), req.Class, req.Deep, req.options(), req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	instanceBatch(c, batch, ctx, eos)
}

// OpenEnumerateInstancePaths starts a paged instance-path enumeration.
func (h *EnumerationHandler) OpenEnumerateInstancePaths(c *gin.Context) {
	req, ok := bindOpen(c)
	if !ok {
		return
	}
	batch, ctx, eos, err := h.sessions.OpenEnumerateInstancePaths(
		c.Param("namespace"), req.Class, req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	pathBatch(c, batch, ctx, eos)
}

// OpenReferenceInstances starts a paged reference enumeration.
func (h *EnumerationHandler) OpenReferenceInstances(c *gin.Context) {
	req, ok := bindOpen(c)
	if !ok {
		return
	}
	src, err := req.source()
	if err != nil {
		FromError(c, err)
		return
	}
	batch, ctx, eos, err := h.sessions.OpenReferenceInstances(
		c.Param("namespace"), src, req.ResultClass, req.Role, req.options(), req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	instanceBatch(c, batch, ctx, eos)
}

// OpenReferenceInstancePaths starts a paged reference-path enumeration.
func (h *EnumerationHandler) OpenReferenceInstancePaths(c *gin.Context) {
	req, ok := bindOpen(c)
	if !ok {
		return
	}
	src, err := req.source()
	if err != nil {
		FromError(c, err)
		return
	}
	batch, ctx, eos, err := h.sessions.OpenReferenceInstancePaths(
		c.Param("namespace"), src, req.ResultClass, req.Role, req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	pathBatch(c, batch, ctx, eos)
}

// OpenAssociatorInstances starts a paged associator enumeration.
func (h *EnumerationHandler) OpenAssociatorInstances(c *gin.Context) {
	req, ok := bindOpen(c)
	if !ok {
		return
	}
	src, err := req.source()
	if err != nil {
		FromError(c, err)
		return
	}
	batch, ctx, eos, err := h.sessions.OpenAssociatorInstances(
		c.Param("namespace"), src, req.filter(), req.options(), req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	instanceBatch(c, batch, ctx, eos)
}

// OpenAssociatorInstancePaths starts a paged associator-path
// enumeration.
func (h *EnumerationHandler) OpenAssociatorInstancePaths(c *gin.Context) {
	req, ok := bindOpen(c)
	if !ok {
		return
	}
	src, err := req.source()
	if err != nil {
		FromError(c, err)
		return
	}
	batch, ctx, eos, err := h.sessions.OpenAssociatorInstancePaths(
		c.Param("namespace"), src, req.filter(), req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	pathBatch(c, batch, ctx, eos)
}

type pullRequest struct {
	engine.Context
	MaxObjectCount int `json:"max_object_count"`
}

// PullInstancesWithPath returns the next batch of an instance
// enumeration.
func (h *EnumerationHandler) PullInstancesWithPath(c *gin.Context) {
	var req pullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	batch, eos, err := h.sessions.PullInstancesWithPath(&req.Context, req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	ctx := &req.Context
	if eos {
		ctx = nil
	}
	instanceBatch(c, batch, ctx, eos)
}

// PullInstancePaths returns the next batch of a path enumeration.
func (h *EnumerationHandler) PullInstancePaths(c *gin.Context) {
	var req pullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	batch, eos, err := h.sessions.PullInstancePaths(&req.Context, req.MaxObjectCount)
	if err != nil {
		FromError(c, err)
		return
	}
	ctx := &req.Context
	if eos {
		ctx = nil
	}
	pathBatch(c, batch, ctx, eos)
}

// CloseEnumeration discards an open sequence before exhaustion.
func (h *EnumerationHandler) CloseEnumeration(c *gin.Context) {
	var ctx engine.Context
	if err := c.ShouldBindJSON(&ctx); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.sessions.CloseEnumeration(&ctx); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
	"mywbem/internal/provider"
)

// InstanceHandler serves the instance operations. Writes go through the
// provider dispatcher so registered providers can override them.
type InstanceHandler struct {
	dispatcher *provider.Dispatcher
}

// NewInstanceHandler creates an instance handler.
func NewInstanceHandler(d *provider.Dispatcher) *InstanceHandler {
	return &InstanceHandler{dispatcher: d}
}

// GetInstance returns one instance, located by the path query parameter.
func (h *InstanceHandler) GetInstance(c *gin.Context) {
	path, err := queryPath(c)
	if err != nil {
		FromError(c, err)
		return
	}
	inst, err := h.dispatcher.Engine().GetInstance(c.Param("namespace"), path, instanceOptions(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, inst)
}

// CreateInstance builds a typed instance from loose property values and
// stores it. Returns the new path.
func (h *InstanceHandler) CreateInstance(c *gin.Context) {
	var req struct {
		Class      string         `json:"class"`
		Properties map[string]any `json:"properties"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ns := c.Param("namespace")
	inst, err := h.dispatcher.Engine().BuildInstance(ns, req.Class, req.Properties)
	if err != nil {
		FromError(c, err)
		return
	}
	path, err := h.dispatcher.CreateInstance(ns, inst)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, map[string]string{"path": path.String()})
}

// ModifyInstance applies property changes to a stored instance.
func (h *InstanceHandler) ModifyInstance(c *gin.Context) {
	var req struct {
		Path         string         `json:"path"`
		Properties   map[string]any `json:"properties"`
		PropertyList []string       `json:"property_list"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	path, err := cim.ParseInstanceName(req.Path)
	if err != nil {
		FromError(c, err)
		return
	}
	ns := c.Param("namespace")
	inst, err := h.dispatcher.Engine().BuildInstance(ns, path.ClassName, req.Properties)
	if err != nil {
		FromError(c, err)
		return
	}
	inst.Path = path
	if err := h.dispatcher.ModifyInstance(ns, inst, req.PropertyList); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// DeleteInstance removes an instance, located by the path query
// parameter.
func (h *InstanceHandler) DeleteInstance(c *gin.Context) {
	path, err := queryPath(c)
	if err != nil {
		FromError(c, err)
		return
	}
	if err := h.dispatcher.DeleteInstance(c.Param("namespace"), path); err != nil {
		FromError(c, err)
		return
	}
	Success(c, nil)
}

// EnumerateInstances lists the instances of a class.
func (h *InstanceHandler) EnumerateInstances(c *gin.Context) {
	instances, err := h.dispatcher.Engine().EnumerateInstances(
		c.Param("namespace"), c.Query("class"), queryBool(c, "deep", true), instanceOptions(c))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, instances)
}

// EnumerateInstanceNames lists the instance paths of a class.
func (h *InstanceHandler) EnumerateInstanceNames(c *gin.Context) {
	paths, err := h.dispatcher.Engine().EnumerateInstanceNames(c.Param("namespace"), c.Query("class"))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, pathStrings(paths))
}

func pathStrings(paths []*cim.InstanceName) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

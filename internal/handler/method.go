package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
	"mywbem/internal/provider"
)

// MethodHandler serves extrinsic method invocation.
type MethodHandler struct {
	dispatcher *provider.Dispatcher
}

// NewMethodHandler creates a method handler.
func NewMethodHandler(d *provider.Dispatcher) *MethodHandler {
	return &MethodHandler{dispatcher: d}
}

// InvokeMethod dispatches a method call to its registered provider.
func (h *MethodHandler) InvokeMethod(c *gin.Context) {
	var req struct {
		Path   string               `json:"path"`
		Params map[string]cim.Value `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	obj, err := cim.ParseInstanceName(req.Path)
	if err != nil {
		FromError(c, err)
		return
	}
	ret, out, err := h.dispatcher.InvokeMethod(
		c.Param("namespace"), obj, c.Param("method"), req.Params)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{
		"return_value": ret,
		"out_params":   out,
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
	"mywbem/internal/provider"
	"mywbem/internal/repo"
)

const testNS = "root/cimv2"

// nsPrefix is the route prefix with the namespace percent-encoded, the
// way clients address namespaces containing slashes.
var nsPrefix = "/api/v1/namespaces/" + url.PathEscape(testNS)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := repo.New()
	require.NoError(t, r.AddNamespace(testNS))
	eng := engine.New(r)
	require.NoError(t, eng.SetQualifier(testNS, &cim.QualifierDecl{
		Name:        "Key",
		Value:       cim.Value{Type: cim.TypeBoolean, Data: false},
		Scopes:      []cim.Scope{cim.ScopeProperty, cim.ScopeReference},
		ToSubclass:  true,
		Overridable: false,
	}))

	disk := cim.NewClass("MY_Disk", "")
	id := cim.NewProperty("DeviceID", cim.Value{Type: cim.TypeString})
	id.Qualifiers.Set("Key", cim.BoolQualifier("Key", true))
	disk.Properties.Set(id.Name, id)
	size := cim.NewProperty("CapacityBytes", cim.Value{Type: cim.TypeUint64})
	disk.Properties.Set(size.Name, size)
	require.NoError(t, eng.CreateClass(testNS, disk))

	sessions := engine.NewSessionManager(eng)
	dispatcher := provider.NewDispatcher(provider.NewRegistry(r), eng)

	namespaceHandler := NewNamespaceHandler(r)
	instanceHandler := NewInstanceHandler(dispatcher)
	enumerationHandler := NewEnumerationHandler(sessions)
	methodHandler := NewMethodHandler(dispatcher)

	router := gin.New()
	router.UseRawPath = true
	api := router.Group("/api/v1")
	api.GET("/namespaces", namespaceHandler.ListNamespaces)
	api.POST("/namespaces", namespaceHandler.CreateNamespace)
	api.DELETE("/namespaces/:namespace", namespaceHandler.DeleteNamespace)
	ns := api.Group("/namespaces/:namespace")
	ns.GET("/instances", instanceHandler.EnumerateInstances)
	ns.POST("/instances", instanceHandler.CreateInstance)
	ns.GET("/instancenames", instanceHandler.EnumerateInstanceNames)
	ns.GET("/instance", instanceHandler.GetInstance)
	ns.PUT("/instance", instanceHandler.ModifyInstance)
	ns.DELETE("/instance", instanceHandler.DeleteInstance)
	ns.POST("/enumerations/instancepaths/open", enumerationHandler.OpenEnumerateInstancePaths)
	ns.POST("/enumerations/pullpaths", enumerationHandler.PullInstancePaths)
	ns.POST("/enumerations/close", enumerationHandler.CloseEnumeration)
	ns.POST("/methods/:class/:method", methodHandler.InvokeMethod)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, target, body string) (int, Response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w.Code, resp
}

func dataMap(t *testing.T, resp Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data: %#v", resp.Data)
	return m
}

func TestEnvelopeShape(t *testing.T) {
	router := newTestRouter(t)

	status, resp := doJSON(t, router, http.MethodGet, "/api/v1/namespaces", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, []any{testNS}, resp.Data)
}

func TestNamespaceLifecycle(t *testing.T) {
	router := newTestRouter(t)

	status, resp := doJSON(t, router, http.MethodPost, "/api/v1/namespaces", `{"name":"root/extra"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"name": "root/extra"}, dataMap(t, resp))

	status, resp = doJSON(t, router, http.MethodPost, "/api/v1/namespaces", `{"name":"root/extra"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Message, "CIM_ERR_ALREADY_EXISTS")

	status, _ = doJSON(t, router, http.MethodDelete,
		"/api/v1/namespaces/"+url.PathEscape("root/extra"), "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, router, http.MethodDelete,
		"/api/v1/namespaces/"+url.PathEscape("root/extra"), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInstanceLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	status, resp := doJSON(t, router, http.MethodPost, nsPrefix+"/instances",
		`{"class":"MY_Disk","properties":{"DeviceID":"d0","CapacityBytes":1024}}`)
	require.Equal(t, http.StatusOK, status, "message: %s", resp.Message)
	path := dataMap(t, resp)["path"].(string)
	assert.Contains(t, path, `MY_Disk.DeviceID="d0"`)

	target := nsPrefix + "/instance?path=" + url.QueryEscape(path)
	status, resp = doJSON(t, router, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, status)
	inst := dataMap(t, resp)
	assert.Equal(t, "MY_Disk", inst["classname"])

	status, _ = doJSON(t, router, http.MethodPut, nsPrefix+"/instance",
		`{"path":"MY_Disk.DeviceID=\"d0\"","properties":{"CapacityBytes":2048}}`)
	require.Equal(t, http.StatusOK, status)

	status, resp = doJSON(t, router, http.MethodGet, nsPrefix+"/instancenames?class=MY_Disk", "")
	require.Equal(t, http.StatusOK, status)
	names, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, names, 1)

	status, _ = doJSON(t, router, http.MethodDelete, target, "")
	require.Equal(t, http.StatusOK, status)

	status, resp = doJSON(t, router, http.MethodGet, target, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, resp.Message, "CIM_ERR_NOT_FOUND")
}

func TestInstanceErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	// missing path parameter
	status, _ := doJSON(t, router, http.MethodGet, nsPrefix+"/instance", "")
	assert.Equal(t, http.StatusBadRequest, status)

	// malformed path
	status, _ = doJSON(t, router, http.MethodGet,
		nsPrefix+"/instance?path="+url.QueryEscape("not a path"), "")
	assert.Equal(t, http.StatusBadRequest, status)

	// unknown class
	status, resp := doJSON(t, router, http.MethodPost, nsPrefix+"/instances",
		`{"class":"MY_Missing","properties":{}}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, resp.Message, "CIM_ERR_INVALID_CLASS")

	// malformed body
	status, _ = doJSON(t, router, http.MethodPost, nsPrefix+"/instances", `{"class":`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOpenPullCloseOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	for _, id := range []string{"d0", "d1", "d2"} {
		status, _ := doJSON(t, router, http.MethodPost, nsPrefix+"/instances",
			`{"class":"MY_Disk","properties":{"DeviceID":"`+id+`"}}`)
		require.Equal(t, http.StatusOK, status)
	}

	status, resp := doJSON(t, router, http.MethodPost, nsPrefix+"/enumerations/instancepaths/open",
		`{"class":"MY_Disk","max_object_count":2}`)
	require.Equal(t, http.StatusOK, status)
	batch := dataMap(t, resp)
	assert.Len(t, batch["paths"], 2)
	assert.Equal(t, false, batch["eos"])
	ctxObj, ok := batch["enumeration_context"].(map[string]any)
	require.True(t, ok)
	ctxBody, err := json.Marshal(ctxObj)
	require.NoError(t, err)

	ctxObj["max_object_count"] = 10
	pull, err := json.Marshal(ctxObj)
	require.NoError(t, err)
	status, resp = doJSON(t, router, http.MethodPost, nsPrefix+"/enumerations/pullpaths", string(pull))
	require.Equal(t, http.StatusOK, status)
	batch = dataMap(t, resp)
	assert.Len(t, batch["paths"], 1)
	assert.Equal(t, true, batch["eos"])
	assert.Nil(t, batch["enumeration_context"])

	// the context is gone once exhausted
	status, _ = doJSON(t, router, http.MethodPost, nsPrefix+"/enumerations/pullpaths", string(pull))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, router, http.MethodPost, nsPrefix+"/enumerations/close", string(ctxBody))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInvokeMethodWithoutProvider(t *testing.T) {
	router := newTestRouter(t)

	status, resp := doJSON(t, router, http.MethodPost, nsPrefix+"/methods/MY_Disk/Reset",
		`{"path":"MY_Disk.DeviceID=\"d0\""}`)
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Contains(t, resp.Message, "CIM_ERR_METHOD_NOT_AVAILABLE")
}

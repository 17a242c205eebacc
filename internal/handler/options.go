package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
)

// queryBool reads a boolean query parameter, defaulting when absent or
// malformed.
func queryBool(c *gin.Context, key string, def bool) bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

// queryInt reads an integer query parameter.
func queryInt(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// propertyList reads the property_list query parameter. Absent means no
// filtering (nil); present but empty means an empty list.
func propertyList(c *gin.Context) []string {
	raw, ok := c.GetQuery("property_list")
	if !ok {
		return nil
	}
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

func classOptions(c *gin.Context) engine.ClassOptions {
	return engine.ClassOptions{
		LocalOnly:          queryBool(c, "local_only", false),
		IncludeQualifiers:  queryBool(c, "include_qualifiers", true),
		IncludeClassOrigin: queryBool(c, "include_class_origin", false),
		PropertyList:       propertyList(c),
	}
}

func instanceOptions(c *gin.Context) engine.InstanceOptions {
	return engine.InstanceOptions{
		LocalOnly:          queryBool(c, "local_only", false),
		IncludeQualifiers:  queryBool(c, "include_qualifiers", false),
		IncludeClassOrigin: queryBool(c, "include_class_origin", false),
		PropertyList:       propertyList(c),
	}
}

// queryPath parses the path query parameter as a WBEM-URI style
// instance name.
func queryPath(c *gin.Context) (*cim.InstanceName, error) {
	raw, ok := c.GetQuery("path")
	if !ok || raw == "" {
		return nil, cim.NewError(cim.StatusInvalidParameter, "path query parameter is required")
	}
	return cim.ParseInstanceName(raw)
}

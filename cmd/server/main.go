package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"mywbem/internal/config"
	"mywbem/internal/engine"
	"mywbem/internal/handler"
	"mywbem/internal/middleware"
	"mywbem/internal/mof"
	"mywbem/internal/provider"
	"mywbem/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	r, registry, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to build repository: %v", err)
	}
	log.Printf("Repository ready: %d namespaces", len(r.Namespaces()))

	eng := engine.New(r)
	sessions := engine.NewSessionManager(eng)
	dispatcher := provider.NewDispatcher(registry, eng)

	namespaceHandler := handler.NewNamespaceHandler(r)
	classHandler := handler.NewClassHandler(eng)
	qualifierHandler := handler.NewQualifierHandler(eng)
	instanceHandler := handler.NewInstanceHandler(dispatcher)
	associationHandler := handler.NewAssociationHandler(dispatcher)
	enumerationHandler := handler.NewEnumerationHandler(sessions)
	methodHandler := handler.NewMethodHandler(dispatcher)

	router := gin.New()
	// namespace names contain slashes; match them percent-encoded
	router.UseRawPath = true
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	{
		api.GET("/namespaces", namespaceHandler.ListNamespaces)
		api.POST("/namespaces", namespaceHandler.CreateNamespace)
		api.DELETE("/namespaces/:namespace", namespaceHandler.DeleteNamespace)

		ns := api.Group("/namespaces/:namespace")
		{
			ns.GET("/classes", classHandler.EnumerateClasses)
			ns.POST("/classes", classHandler.CreateClass)
			ns.GET("/classnames", classHandler.EnumerateClassNames)
			ns.GET("/classes/:class", classHandler.GetClass)
			ns.PUT("/classes/:class", classHandler.ModifyClass)
			ns.DELETE("/classes/:class", classHandler.DeleteClass)
			ns.GET("/classes/:class/subclassnames", classHandler.SubclassNames)
			ns.GET("/classes/:class/superclassnames", classHandler.SuperclassNames)
			ns.GET("/classes/:class/referencenames", classHandler.ReferenceNames)
			ns.GET("/classes/:class/associatornames", classHandler.AssociatorNames)

			ns.GET("/qualifiers", qualifierHandler.EnumerateQualifiers)
			ns.GET("/qualifiers/:qualifier", qualifierHandler.GetQualifier)
			ns.PUT("/qualifiers/:qualifier", qualifierHandler.SetQualifier)
			ns.DELETE("/qualifiers/:qualifier", qualifierHandler.DeleteQualifier)

			ns.GET("/instances", instanceHandler.EnumerateInstances)
			ns.POST("/instances", instanceHandler.CreateInstance)
			ns.GET("/instancenames", instanceHandler.EnumerateInstanceNames)
			ns.GET("/instance", instanceHandler.GetInstance)
			ns.PUT("/instance", instanceHandler.ModifyInstance)
			ns.DELETE("/instance", instanceHandler.DeleteInstance)

			ns.GET("/referencenames", associationHandler.ReferenceNames)
			ns.GET("/references", associationHandler.References)
			ns.GET("/associatornames", associationHandler.AssociatorNames)
			ns.GET("/associators", associationHandler.Associators)

			enums := ns.Group("/enumerations")
			{
				enums.POST("/instances/open", enumerationHandler.OpenEnumerateInstances)
				enums.POST("/instancepaths/open", enumerationHandler.OpenEnumerateInstancePaths)
				enums.POST("/references/open", enumerationHandler.OpenReferenceInstances)
				enums.POST("/referencepaths/open", enumerationHandler.OpenReferenceInstancePaths)
				enums.POST("/associators/open", enumerationHandler.OpenAssociatorInstances)
				enums.POST("/associatorpaths/open", enumerationHandler.OpenAssociatorInstancePaths)
				enums.POST("/pull", enumerationHandler.PullInstancesWithPath)
				enums.POST("/pullpaths", enumerationHandler.PullInstancePaths)
				enums.POST("/close", enumerationHandler.CloseEnumeration)
			}

			ns.POST("/methods/:class/:method", methodHandler.InvokeMethod)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	if cfg.Snapshot.SaveOnExit && cfg.Snapshot.FilePath != "" {
		saveOnExit(cfg.Snapshot.FilePath, r, registry)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Printf("API available at http://localhost%s/api/v1", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildRepository restores a snapshot when one is configured and
// present, otherwise compiles the YAML schema file into a fresh
// repository.
func buildRepository(cfg *config.Config) (*repo.Repository, *provider.Registry, error) {
	if cfg.Snapshot.FilePath != "" {
		if _, err := os.Stat(cfg.Snapshot.FilePath); err == nil {
			r, registry, err := provider.LoadFile(cfg.Snapshot.FilePath, nil)
			if err != nil {
				return nil, nil, err
			}
			log.Printf("Snapshot loaded from %s", cfg.Snapshot.FilePath)
			return r, registry, nil
		}
	}

	r := repo.New()
	eng := engine.New(r)
	loader := mof.NewLoader(cfg.Schema.FilePath)
	if err := loader.Load(); err != nil {
		return nil, nil, err
	}
	if err := loader.Compile(eng); err != nil {
		return nil, nil, err
	}
	schema := loader.Schema()
	log.Printf("Schema %s loaded: %d qualifiers, %d classes, %d instances",
		schema.Version, len(schema.Qualifiers), len(schema.Classes), len(schema.Instances))
	return r, provider.NewRegistry(r), nil
}

// saveOnExit writes a snapshot when the process receives SIGINT or
// SIGTERM.
func saveOnExit(path string, r *repo.Repository, registry *provider.Registry) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		if err := provider.SaveFile(path, r, registry); err != nil {
			log.Printf("Failed to save snapshot: %v", err)
		} else {
			log.Printf("Snapshot saved to %s", path)
		}
		os.Exit(0)
	}()
}

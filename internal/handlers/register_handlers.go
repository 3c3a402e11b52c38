package handlers

import (
	"net/http"
	"sync"

	"github.com/SscSPs/payflow_backend/cmd/docs"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/middleware"
	"github.com/SscSPs/payflow_backend/internal/platform/config"
	"github.com/SscSPs/payflow_backend/internal/utils/document"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouterDeps carries the HTTP-only collaborators of the router. Both fields are optional.
type RouterDeps struct {
	IdempotencyStore portsrepo.IdempotencyStore
	LoginLimiter     *limiter.Limiter
}

var registerValidators sync.Once

// documentValidator accepts a CPF or CNPJ, with or without punctuation.
func documentValidator(fl validator.FieldLevel) bool {
	return document.IsValid(document.Clean(fl.Field().String()))
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouterDeps,
) {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("document", documentValidator)
		}
	})

	base := baseHandler{debugErrors: cfg.DebugErrors}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/ready", readyHandler(services.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, base, services.Account, services.Token, deps.LoginLimiter)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, base, services, deps)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	base baseHandler,
	services *portssvc.ServiceContainer,
	deps RouterDeps,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAccountRoutes(v1, base, services.Account)
	registerTransferRoutes(v1, base, services.Transfer, middleware.Idempotency(deps.IdempotencyStore, cfg.IdempotencyTTL))
	registerTransactionRoutes(v1, base, services.Transfer)
}

// readyHandler godoc
// @Summary Readiness probe
// @Description Reports the state of each dependency. Only the database decides readiness.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func readyHandler(health portssvc.HealthSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, ready := health.Ready(c.Request.Context())
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "checks": checks})
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

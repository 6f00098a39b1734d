// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/coursedeck/coursedeck/internal/app/assignment"
	grantsfeature "github.com/coursedeck/coursedeck/internal/app/features/grants"
	groupsfeature "github.com/coursedeck/coursedeck/internal/app/features/groups"
	healthfeature "github.com/coursedeck/coursedeck/internal/app/features/health"
	loginfeature "github.com/coursedeck/coursedeck/internal/app/features/login"
	logoutfeature "github.com/coursedeck/coursedeck/internal/app/features/logout"
	productsfeature "github.com/coursedeck/coursedeck/internal/app/features/products"
	usersfeature "github.com/coursedeck/coursedeck/internal/app/features/users"
	"github.com/coursedeck/coursedeck/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. CourseDeck applies session middleware
// globally, keeps /health and /login public, gates /api behind a signed-in
// session, and gates /api/admin behind the admin role.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// One coordinator per process: its per-product locks serialize all
	// allocation paths (grant creation and failure retries).
	coord := assignment.NewCoordinator(deps.MongoDatabase, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	productsHandler := productsfeature.NewHandler(deps.MongoDatabase, logger)
	groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, logger)
	grantsHandler := grantsfeature.NewHandler(deps.MongoDatabase, coord, logger)
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireSignedIn)

		api.Mount("/products", productsfeature.Routes(productsHandler))

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.RequireRole("admin"))

			admin.Mount("/products", productsfeature.AdminRoutes(productsHandler))
			admin.Mount("/products/{productID}/groups", groupsfeature.ProductRoutes(groupsHandler))
			admin.Mount("/products/{productID}/grants", grantsfeature.ProductRoutes(grantsHandler))
			admin.Mount("/groups", groupsfeature.Routes(groupsHandler))
			admin.Mount("/users", usersfeature.AdminRoutes(usersHandler))
			admin.Mount("/allocation-failures", grantsfeature.FailureRoutes(grantsHandler))
		})
	})

	return r, nil
}

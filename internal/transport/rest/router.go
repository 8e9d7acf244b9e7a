package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"metacognition/internal/config"
	"metacognition/internal/logger"
	"metacognition/internal/service"
	"metacognition/internal/transport/rest/handler"
	"metacognition/internal/transport/rest/middleware"
	"metacognition/internal/transport/ws"
	"metacognition/internal/validate"
)

// Container holds all dependencies for the router
type Container struct {
	Config           *config.Config
	Logger           *logger.Logger
	Validator        *validate.Validator
	AuthService      *service.AuthService
	SessionService   *service.SessionService
	ResponseService  *service.ResponseService
	AnalyticsService *service.AnalyticsService
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Validator, c.Logger)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.Validator, c.Logger)
	responseHandler := handler.NewResponseHandler(c.ResponseService, c.Validator, c.Logger)
	dashboardHandler := handler.NewDashboardHandler(c.AnalyticsService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config))
	r.Use(middleware.RequestLogger(c.Logger.Component("http")))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/dashboard", wsHandler.DashboardWS).Methods("GET")

	// Learner routes (require auth)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/dashboard", dashboardHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/dashboard/export", dashboardHandler.Export).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{id}/complete-chunk", sessionHandler.CompleteChunk).Methods("PATCH", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{id}/responses", responseHandler.ListBySession).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/responses", responseHandler.Submit).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/responses/{id}/reflection", responseHandler.PatchReflection).Methods("PATCH", "OPTIONS")
	userRoutes.HandleFunc("/responses/{id}", responseHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.CORSAllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.CORSAllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

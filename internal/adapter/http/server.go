package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"weighttrack/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	weight *app.WeightService
	auth   *app.AuthService
	log    *zap.Logger
}

// New creates a Server wired to the given application services. A nil auth
// service or logger disables authentication or logging respectively.
func New(ws *app.WeightService, auth *app.AuthService, log *zap.Logger) *Server {
	if auth == nil {
		auth = app.NewAuthService("", nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{weight: ws, auth: auth, log: log}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	weights := http.NewServeMux()
	weights.HandleFunc("GET /api/weights/{$}", s.handleWeightList)
	weights.HandleFunc("GET /api/weights", s.handleWeightList)
	weights.HandleFunc("POST /api/weights/{$}", s.handleWeightCreate)
	weights.HandleFunc("POST /api/weights", s.handleWeightCreate)
	weights.HandleFunc("PATCH /api/weights/{id}", s.handleWeightUpdate)
	weights.HandleFunc("DELETE /api/weights/{id}", s.handleWeightDelete)

	root := http.NewServeMux()
	root.Handle("/api/health", http.StripPrefix("/api", api))
	root.Handle("/api/weights", s.authMiddleware(weights))
	root.Handle("/api/weights/", s.authMiddleware(weights))

	return s.loggingMiddleware(withNoCache(root))
}

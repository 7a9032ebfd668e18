package debug

import (
	"bengaliboutique_server/config"
	"bengaliboutique_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type DebugRoutesManager struct {
	logger      *gecho.Logger
	authService *services.AuthService
}

func NewDebugRoutesManager(logger *gecho.Logger, authService *services.AuthService) *DebugRoutesManager {
	return &DebugRoutesManager{
		logger:      logger,
		authService: authService,
	}
}

func (drm *DebugRoutesManager) RegisterRoutes(r chi.Router) {
	// Debug routes - only in non-production environments
	if !config.IsProduction() {
		r.Route("/debug", func(r chi.Router) {
			r.Post("/token", drm.IssueToken)
		})
	}
}

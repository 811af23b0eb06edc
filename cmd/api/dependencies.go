package api

import (
	"log/slog"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/handler"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/service"
	"github.com/FACorreiaa/je-audit/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Services
	AuditService *service.AuditService

	// Handlers
	AuditHandler *handler.AuditHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.AuditService = service.NewAuditService(logger)
	deps.AuditHandler = handler.NewAuditHandler(deps.AuditService, logger, cfg.Server.MaxUploadBytes)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	d.Logger.Info("cleanup completed")
}

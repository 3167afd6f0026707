package server

import (
	"fmt"

	"github.com/sagarc03/switchyard"
	"github.com/sagarc03/switchyard/auth"
	"github.com/sagarc03/switchyard/catalog"
	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/demo"
	switchyardhttp "github.com/sagarc03/switchyard/http"
	"github.com/sagarc03/switchyard/upload"
)

// Deps are the collaborators the route packages are built on.
type Deps struct {
	Catalog catalog.Repo
	Tokens  auth.TokenStore
	Files   upload.FileStorage
	Secrets auth.SecretStore
}

// NewRegistry registers the request timer, the JSON error handler and every
// route package on a new registry. The demo fallback goes last.
func NewRegistry(cfg *config.Config, deps Deps) (*switchyard.Registry, error) {
	reg := switchyard.NewRegistry(switchyard.RegistryConfig{
		RejectDuplicates: cfg.Server.RejectDuplicateRoutes,
	})

	if err := reg.Use("/", switchyardhttp.RequestTimer); err != nil {
		return nil, fmt.Errorf("register request timer: %w", err)
	}

	if err := reg.UseError("/", switchyardhttp.ErrorHandler()); err != nil {
		return nil, fmt.Errorf("register error handler: %w", err)
	}

	issuer, err := auth.NewIssuer(deps.Secrets, auth.Config{
		KeyID:      cfg.Auth.KeyID,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
		Issuer:     cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("create issuer: %w", err)
	}

	if err := auth.NewHandlers(issuer, deps.Tokens, auth.DefaultPosts).Register(reg); err != nil {
		return nil, fmt.Errorf("register auth routes: %w", err)
	}

	uploads := upload.NewService(deps.Files, upload.ServiceConfig{MaxSize: cfg.Server.MaxUploadSize})
	if err := upload.NewHandlers(uploads).Register(reg); err != nil {
		return nil, fmt.Errorf("register upload routes: %w", err)
	}

	if err := catalog.NewHandlers(catalog.NewService(deps.Catalog)).Register(reg); err != nil {
		return nil, fmt.Errorf("register catalog routes: %w", err)
	}

	if err := demo.Register(reg); err != nil {
		return nil, fmt.Errorf("register demo routes: %w", err)
	}

	if err := demo.RegisterFallback(reg); err != nil {
		return nil, fmt.Errorf("register fallback: %w", err)
	}

	return reg, nil
}

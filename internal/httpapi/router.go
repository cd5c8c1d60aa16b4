package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docraster/internal/auth"
	"docraster/internal/config"
	"docraster/internal/httpapi/handlers"
	"docraster/internal/pkg/logger"
	"docraster/internal/pkg/middleware"
	"docraster/internal/ports"
	"docraster/internal/render"
	"docraster/internal/upload"
)

type Deps struct {
	Cfg      config.Config
	Store    ports.ObjectStore
	Renderer render.Renderer
	Log      *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	if d.Cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.Cfg.RequestTimeout))
	}
	r.Use(middleware.MaxBytes(d.Cfg.BodyLimitBytes()))

	h := handlers.New(handlers.Deps{
		Gate:     auth.NewGate(d.Cfg.AuthToken),
		Renderer: d.Renderer,
		Uploader: upload.NewCoordinator(d.Store, upload.Config{
			CleanupOnFailure: d.Cfg.Upload.CleanupOnFailure,
			Log:              log,
		}),
		Store: d.Store,
		Log:   log,
	})

	r.Get("/health", h.Health)
	r.Post("/", middleware.WrapHandler(log, h.Convert))

	return r
}

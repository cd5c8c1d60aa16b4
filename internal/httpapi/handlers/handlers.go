package handlers

import (
	"docraster/internal/auth"
	"docraster/internal/pkg/logger"
	"docraster/internal/ports"
	"docraster/internal/render"
	"docraster/internal/upload"
)

type Deps struct {
	Gate     *auth.Gate
	Renderer render.Renderer
	Uploader *upload.Coordinator
	Store    ports.ObjectStore
	Log      *logger.Logger
}

type Handler struct {
	gate     *auth.Gate
	renderer render.Renderer
	uploader *upload.Coordinator
	store    ports.ObjectStore
	log      *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		gate:     d.Gate,
		renderer: d.Renderer,
		uploader: d.Uploader,
		store:    d.Store,
		log:      log,
	}
}

package web

import (
	"github.com/kozaktomas/face-gallery/internal/web/handlers"
)

func (s *Server) setupRoutes(service handlers.Service) {
	profilesHandler := handlers.NewProfilesHandler(service)
	uploadHandler := handlers.NewUploadHandler(service)
	facesHandler := handlers.NewFacesHandler(service)

	s.router.Get("/health", handlers.HealthCheck)

	// Profiles
	s.router.Post("/profiles", profilesHandler.Create)
	s.router.Get("/profiles", profilesHandler.List)
	s.router.Get("/profiles/{profileID}", profilesHandler.Get)
	s.router.Delete("/profiles/{profileID}", profilesHandler.Delete)
	s.router.Post("/match_faces/{profileID}", profilesHandler.Rematch)

	// Group photo ingestion and search
	s.router.Post("/upload_image", uploadHandler.UploadImage)
	s.router.Post("/recognize", uploadHandler.Recognize)

	// Collection contents
	s.router.Get("/faces", facesHandler.List)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	authUC AuthUseCase
}

type Options func(*Server)

// WithAuth overrides the authentication of the use cases
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Post("/auth/logout", s.logout)
			r.Get("/auth/me", s.me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.listProjects)
				r.Post("/", s.createProject)
				r.Get("/statistics", s.statistics)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", s.getProject)
					r.Put("/", s.updateProject)
					r.Delete("/", s.deleteProject)
					r.Put("/team-members", s.updateTeamMembers)
					r.Get("/reports", s.report)

					r.Route("/scores", func(r chi.Router) {
						r.Get("/", s.getScores)
						r.Put("/", s.replaceScores)
						r.Get("/summary", s.scoreSummary)
						r.Get("/history", s.scoreHistory)

						r.Route("/draft", func(r chi.Router) {
							r.Post("/", s.beginEdit)
							r.Get("/", s.getDraft)
							r.Delete("/", s.cancelEdit)
							r.Patch("/dimensions/{dimension}", s.updateDimension)
							r.Post("/commit", s.commit)
						})
					})

					r.Route("/missing-information", func(r chi.Router) {
						r.Get("/", s.listMissingInfo)
						r.Post("/", s.addMissingInfo)
						r.Get("/{infoID}", s.getMissingInfo)
						r.Delete("/{infoID}", s.removeMissingInfo)
					})
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, goerr.Wrap(model.ErrNotFound, "no such route", goerr.V("path", r.URL.Path)))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func projectIDParam(r *http.Request) model.ProjectID {
	return model.ProjectID(chi.URLParam(r, "projectID"))
}

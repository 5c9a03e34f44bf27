package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	bookapp "github.com/libraria-api/internal/application/book"
	"github.com/libraria-api/internal/application/dispatch"
	notifapp "github.com/libraria-api/internal/application/notification"
	quizapp "github.com/libraria-api/internal/application/quiz"
	"github.com/libraria-api/internal/config"
	"github.com/libraria-api/internal/transport/http/handler"
	appmiddleware "github.com/libraria-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminMw := appmiddleware.AdminToken(cfg.AdminToken)
	// Every allowed dispatch request may fan out into an outbound push.
	dispatchRL := appmiddleware.NewRateLimiter(rate.Limit(2), 5)

	bookSvc := bookapp.NewService(deps.BookRepo, deps.CoverStore)
	quizSvc := quizapp.NewService(deps.QuizRepo, deps.QuestionRepo, deps.BookRepo)
	notifSvc := notifapp.NewService(deps.NotificationRepo)
	dispatchSvc := dispatch.NewService(dispatch.ServiceDeps{
		Books:        deps.BookRepo,
		Quizzes:      deps.QuizRepo,
		Questions:    deps.QuestionRepo,
		Sender:       deps.Sender,
		Records:      notifSvc,
		CoverURL:     bookSvc.CoverURL,
		DefaultTopic: cfg.PushDefaultTopic,
		Logger:       deps.Logger,
	})

	healthH := handler.NewHealthHandler()
	bookH := handler.NewBookHandler(bookSvc)
	quizH := handler.NewQuizHandler(quizSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	dispatchH := handler.NewDispatchHandler(dispatchSvc, notifSvc, deps.BookRepo, deps.QuizRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/notifications", notifH.ListActive)

		// ── Administrative routes (shared token) ─────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(adminMw)

			r.Post("/books", bookH.Create)
			r.Get("/books/{id}", bookH.Get)
			r.Post("/books/{id}/cover", bookH.UploadCover)

			r.Post("/quizzes", quizH.Create)
			r.Get("/quizzes/{id}", quizH.Get)
			r.Post("/quizzes/{id}/questions", quizH.AddQuestion)
			r.Get("/quizzes/{id}/questions", quizH.ListQuestions)

			// Trigger points: singles re-send deliberately, batches skip
			// already-sent entities.
			r.Group(func(r chi.Router) {
				r.Use(dispatchRL.Limit)

				r.Post("/notifications", dispatchH.Custom)
				r.Post("/books/{id}/notify", dispatchH.Book)
				r.Post("/books/notify", dispatchH.BookBatch)
				r.Post("/quizzes/{id}/notify", dispatchH.Quiz)
				r.Post("/quizzes/notify", dispatchH.QuizBatch)
			})

			r.Delete("/books/{id}/notification", dispatchH.ResetBook)
			r.Delete("/quizzes/{id}/notification", dispatchH.ResetQuiz)
			r.Post("/notifications/deactivate", notifH.Deactivate)
			r.Post("/notifications/activate", notifH.Activate)
		})
	})

	return r
}

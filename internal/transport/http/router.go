package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"student-analyzer/internal/app"
	"student-analyzer/internal/auth"
	"student-analyzer/internal/logger"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth         auth.Provider
	Registrar    *auth.Registrar
	Exams        *app.ExamService
	Leaderboards *app.LeaderboardService
	Roster       *app.RosterService
	Profiles     *app.ProfileService
	Social       *app.SocialService
}

// API serves the REST endpoints and websocket streams.
type API struct {
	svc      Services
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewAPI(svc Services) *API {
	return &API{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger.Get().With().Str("component", "http").Logger(),
	}
}

// Routes builds the router. An empty origins list allows any origin.
func (a *API) Routes(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, a.requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Post("/auth/students", a.signUpStudent)
	r.Post("/auth/teachers", a.signUpTeacher)
	r.Post("/auth/sessions", a.signIn)
	r.Delete("/auth/sessions", a.signOut)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(a.svc.Auth))

		pr.Get("/auth/me", a.me)
		pr.Get("/exams", a.listExams)
		pr.Get("/exams/{examID}", a.getExam)
		pr.Get("/leaderboards/overall", a.overallBoard)
		pr.Get("/leaderboards/class", a.classBoard)
		pr.Get("/leaderboards/{subject}", a.subjectBoard)

		pr.Group(func(sr chi.Router) {
			sr.Use(auth.RequireRole(auth.RoleStudent))

			sr.Post("/attempts", a.beginAttempt)
			sr.Get("/attempts/{attemptID}", a.getAttempt)
			sr.Post("/attempts/{attemptID}/start", a.startAttempt)
			sr.Put("/attempts/{attemptID}/answers/{questionID}", a.answer)
			sr.Post("/attempts/{attemptID}/next", a.nextQuestion)
			sr.Post("/attempts/{attemptID}/prev", a.prevQuestion)
			sr.Post("/attempts/{attemptID}/submit", a.submitAttempt)
			sr.Post("/attempts/{attemptID}/save", a.saveAttempt)
			sr.Get("/ws/attempts/{attemptID}", a.attemptStream)

			sr.Get("/me/standings", a.standings)
			sr.Get("/me/profile", a.profile)
			sr.Patch("/me/profile", a.updateProfile)
			sr.Get("/me/projects", a.listProjects)
			sr.Post("/me/projects", a.createProject)
			sr.Put("/me/projects/{projectID}", a.updateProject)
			sr.Delete("/me/projects/{projectID}", a.deleteProject)

			sr.Get("/students/search", a.searchStudents)
			sr.Get("/friends", a.socialState)
			sr.Post("/friends/requests", a.sendRequest)
			sr.Post("/friends/requests/{requestID}/accept", a.acceptRequest)
			sr.Post("/friends/requests/{requestID}/decline", a.declineRequest)
			sr.Get("/ws/social", a.socialStream)
		})

		pr.Group(func(tr chi.Router) {
			tr.Use(auth.RequireRole(auth.RoleTeacher))

			tr.Get("/teacher/students", a.rosterStudents)
			tr.Post("/teacher/students", a.linkStudent)
			tr.Get("/teacher/report.xlsx", a.rosterReport)
		})
	})
	return r
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// caller is set by auth.Middleware on every protected route.
func caller(r *http.Request) auth.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}

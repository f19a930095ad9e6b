package router

import (
	"database/sql"
	_ "joban-api/docs"
	"joban-api/handler"
	"joban-api/service"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Deps carries everything the routes need.
type Deps struct {
	AuthHandler  *handler.AuthHandler
	BoardHandler *handler.BoardHandler
	TaskHandler  *handler.TaskHandler
	AuthService  *service.AuthService
	CookieName   string
	// Limiter guards registration and login. Nil disables rate limiting.
	Limiter        service.RateLimiter
	TrustedProxies []*net.IPNet
	DB             *sql.DB
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	routes(r, d)

	// Wrapped outside the mux so preflights and unmatched paths pass through too.
	return handler.Recovery(handler.RequestLogger(handler.SecurityHeaders(handler.CORS(d.AllowedOrigins)(r))))
}

func routes(r *mux.Router, d Deps) {
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/ready", handler.Ready(d.DB)).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	if d.AuthHandler == nil {
		return
	}

	requireAuth := handler.AuthMiddleware(d.AuthService, d.CookieName)
	h := handler.ErrorHandlingMiddleware

	// Public auth routes.
	public := r.PathPrefix("/auth").Subrouter()
	if d.Limiter != nil {
		public.Use(handler.RateLimitMiddleware(d.Limiter, d.TrustedProxies))
	}
	public.Handle("/register", h(d.AuthHandler.Register)).Methods(http.MethodPost)
	public.Handle("/login", h(d.AuthHandler.Login)).Methods(http.MethodPost)

	protected := r.PathPrefix("/auth").Subrouter()
	protected.Use(requireAuth)
	protected.Handle("/logout", h(d.AuthHandler.Logout)).Methods(http.MethodPost)
	protected.Handle("/protected", h(d.AuthHandler.Protected)).Methods(http.MethodGet)
	protected.Handle("/whoami", h(d.AuthHandler.WhoAmI)).Methods(http.MethodGet)

	boards := r.PathPrefix("/boards").Subrouter()
	boards.Use(requireAuth)
	boards.Handle("", h(d.BoardHandler.ListBoards)).Methods(http.MethodGet)
	boards.Handle("/new", h(d.BoardHandler.CreateBoard)).Methods(http.MethodPost)
	boards.Handle("/{id:[0-9]+}", h(d.BoardHandler.GetBoard)).Methods(http.MethodGet)
	boards.Handle("/{id:[0-9]+}", h(d.BoardHandler.UpdateBoard)).Methods(http.MethodPut)
	boards.Handle("/{id:[0-9]+}", h(d.BoardHandler.DeleteBoard)).Methods(http.MethodDelete)
	boards.Handle("/{id:[0-9]+}/columns", h(d.BoardHandler.AddColumn)).Methods(http.MethodPost)
	boards.Handle("/{id:[0-9]+}/columns/{colId:[0-9]+}", h(d.BoardHandler.DeleteColumn)).Methods(http.MethodDelete)

	tasks := r.PathPrefix("/tasks").Subrouter()
	tasks.Use(requireAuth)
	tasks.Handle("/new", h(d.TaskHandler.CreateTask)).Methods(http.MethodPost)
	tasks.Handle("/{id:[0-9]+}", h(d.TaskHandler.GetTask)).Methods(http.MethodGet)
	tasks.Handle("/{id:[0-9]+}", h(d.TaskHandler.UpdateTask)).Methods(http.MethodPut)
	tasks.Handle("/{id:[0-9]+}", h(d.TaskHandler.DeleteTask)).Methods(http.MethodDelete)
}

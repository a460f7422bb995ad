package router

import (
	"net/http"

	articleHandler "newsdesk/internal/article"
	"newsdesk/internal/article/service"
	authHandler "newsdesk/internal/auth"
	authsvc "newsdesk/internal/auth/service"
	"newsdesk/middleware"
	"newsdesk/socket"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Articles    *service.ArticleService
	Auth        *authsvc.Service
	Hub         *socket.Hub
	CORSOrigins []string
}

func Setup(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(d.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket
	if d.Hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			socket.ServeWs(d.Hub, w, r)
		})
	}

	// REST API, served at the root and under /api
	api := apiRoutes(d)
	r.Mount("/api", api)
	r.Mount("/", api)

	return r
}

func apiRoutes(d Deps) http.Handler {
	articles := articleHandler.NewArticleHandler(d.Articles)
	auth := authHandler.NewAuthHandler(d.Auth)

	r := chi.NewRouter()
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", articles.ListArticles)
		r.Post("/", articles.CreateArticle)
		r.Get("/{id}", articles.GetArticle)
		r.Put("/{id}", articles.UpdateArticle)
		r.Delete("/{id}", articles.DeleteArticle)
	})
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", auth.Login)
		r.With(middleware.AuthMiddleware(d.Auth)).Get("/me", auth.Me)
	})
	return r
}

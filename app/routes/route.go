package routes

import (
	"net/http"

	"github.com/Rakhulsr/go-blog/app/configs"
	"github.com/Rakhulsr/go-blog/app/handlers"
	"github.com/Rakhulsr/go-blog/app/middlewares"
	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/Rakhulsr/go-blog/app/services"
	"github.com/Rakhulsr/go-blog/app/utils/renderer"
	"github.com/Rakhulsr/go-blog/app/utils/sessions"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const staticPrefix = "/static"

type Options struct {
	Env         configs.ENV
	Keys        configs.SessionKeys
	Log         *logrus.Logger
	Registry    *prometheus.Registry
	RateLimiter *middlewares.RateLimiter
	// DisableCSRF turns off token checks, used by handler tests.
	DisableCSRF bool
}

func NewRouter(db *gorm.DB, opts Options) http.Handler {
	log := opts.Log
	env := opts.Env

	rnd := renderer.New(env.TemplateDir, !env.IsProduction())
	sessionStore := sessions.NewCookieSessionStore(log, env.IsProduction(), opts.Keys.AuthKey, opts.Keys.EncKey)

	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	authService := services.NewAuthService(userRepo, log)
	postService := services.NewPostService(postRepo, categoryRepo, log)
	commentService := services.NewCommentService(commentRepo, postRepo, log)
	avatarService := services.NewAvatarService(userRepo, env.StaticDir, staticPrefix, log)

	authHandler := handlers.NewAuthHandler(rnd, authService, sessionStore, log)
	homeHandler := handlers.NewHomeHandler(rnd, postService, log)
	postHandler := handlers.NewPostHandler(rnd, postService, commentService, log)
	profileHandler := handlers.NewProfileHandler(rnd, postService, avatarService, log)
	healthHandler := handlers.NewHealthHandler(rnd, db)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middlewares.NewMetrics(registry)

	limiter := opts.RateLimiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(10, 5, log)
	}

	router := mux.NewRouter()
	router.NotFoundHandler = handlers.NotFoundHandler(rnd)
	router.Use(metrics.Middleware)

	router.HandleFunc("/healthz", healthHandler.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.PathPrefix(staticPrefix + "/").Handler(http.StripPrefix(staticPrefix+"/", http.FileServer(http.Dir(env.StaticDir))))

	web := router.NewRoute().Subrouter()
	web.Use(middlewares.SecurityHeaders)
	web.Use(middlewares.AuthMiddleware(sessionStore, userRepo, log))
	web.Use(middlewares.RequestLogger(log))

	auth := web.NewRoute().Subrouter()
	auth.Use(limiter.Limit)
	auth.HandleFunc("/login", authHandler.LoginGetHandler).Methods(http.MethodGet)
	auth.HandleFunc("/login", authHandler.LoginPostHandler).Methods(http.MethodPost)
	auth.HandleFunc("/register", authHandler.RegisterGetHandler).Methods(http.MethodGet)
	auth.HandleFunc("/register", authHandler.RegisterPostHandler).Methods(http.MethodPost)

	member := web.NewRoute().Subrouter()
	member.Use(middlewares.RequireLogin)
	member.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	member.HandleFunc("/logout", authHandler.LogoutHandler).Methods(http.MethodGet, http.MethodPost)
	member.HandleFunc("/profile", profileHandler.Profile).Methods(http.MethodGet)
	member.HandleFunc("/upload-avatar", profileHandler.UploadAvatar).Methods(http.MethodPost)
	member.HandleFunc("/blogs", homeHandler.Blogs).Methods(http.MethodGet)
	member.HandleFunc("/category/{slug}", homeHandler.Category).Methods(http.MethodGet)
	member.HandleFunc("/create", postHandler.CreateGetHandler).Methods(http.MethodGet)
	member.HandleFunc("/create", postHandler.CreatePostHandler).Methods(http.MethodPost)
	member.HandleFunc("/edit/{id}", postHandler.EditGetHandler).Methods(http.MethodGet)
	member.HandleFunc("/edit/{id}", postHandler.EditPostHandler).Methods(http.MethodPost, http.MethodPut)
	member.HandleFunc("/delete/{id}", postHandler.DeleteHandler).Methods(http.MethodPost, http.MethodDelete)
	member.HandleFunc("/post/{id}", postHandler.ShowHandler).Methods(http.MethodGet)
	member.HandleFunc("/post/{id}", postHandler.CommentHandler).Methods(http.MethodPost)
	member.HandleFunc("/reply/{id}", postHandler.ReplyHandler).Methods(http.MethodPost)
	member.HandleFunc("/comment/{id}/delete", postHandler.DeleteCommentHandler).Methods(http.MethodPost, http.MethodDelete)

	var handler http.Handler = router
	if !opts.DisableCSRF {
		protect := csrf.Protect(
			opts.Keys.CSRFKey,
			csrf.Secure(env.CSRFSecure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		)
		handler = protect(handler)
	}
	return middlewares.MethodOverrideMiddleware(handler)
}

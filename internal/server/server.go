package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/indieplatform/internal/config"
	"anoa.com/indieplatform/internal/jobs"
	"anoa.com/indieplatform/internal/middleware"
	"anoa.com/indieplatform/internal/modules/reference"
	"anoa.com/indieplatform/pkg/metrics"
	"anoa.com/indieplatform/pkg/storage"

	commentHttp "anoa.com/indieplatform/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/indieplatform/internal/modules/comment/repository"
	commentService "anoa.com/indieplatform/internal/modules/comment/service"

	gameHttp "anoa.com/indieplatform/internal/modules/game/delivery/http"
	gameRepo "anoa.com/indieplatform/internal/modules/game/repository"
	gameService "anoa.com/indieplatform/internal/modules/game/service"

	genreHttp "anoa.com/indieplatform/internal/modules/genre/delivery/http"
	genreRepo "anoa.com/indieplatform/internal/modules/genre/repository"
	genreService "anoa.com/indieplatform/internal/modules/genre/service"

	homeHttp "anoa.com/indieplatform/internal/modules/home/delivery/http"
	homeService "anoa.com/indieplatform/internal/modules/home/service"

	likeHttp "anoa.com/indieplatform/internal/modules/like/delivery/http"
	likeRepo "anoa.com/indieplatform/internal/modules/like/repository"
	likeService "anoa.com/indieplatform/internal/modules/like/service"

	notiHttp "anoa.com/indieplatform/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"

	postHttp "anoa.com/indieplatform/internal/modules/post/delivery/http"
	postRepo "anoa.com/indieplatform/internal/modules/post/repository"
	postService "anoa.com/indieplatform/internal/modules/post/service"

	profileHttp "anoa.com/indieplatform/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/indieplatform/internal/modules/profile/repository"
	profileService "anoa.com/indieplatform/internal/modules/profile/service"

	reportHttp "anoa.com/indieplatform/internal/modules/report/delivery/http"
	reportRepo "anoa.com/indieplatform/internal/modules/report/repository"
	reportService "anoa.com/indieplatform/internal/modules/report/service"

	reviewHttp "anoa.com/indieplatform/internal/modules/review/delivery/http"
	reviewRepo "anoa.com/indieplatform/internal/modules/review/repository"
	reviewService "anoa.com/indieplatform/internal/modules/review/service"

	searchHttp "anoa.com/indieplatform/internal/modules/search/delivery/http"
	searchService "anoa.com/indieplatform/internal/modules/search/service"

	userHttp "anoa.com/indieplatform/internal/modules/user/delivery/http"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	userService "anoa.com/indieplatform/internal/modules/user/service"

	viewService "anoa.com/indieplatform/internal/modules/view/service"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the external collaborators the server is built on.
type Dependencies struct {
	DB            *gorm.DB
	Redis         *redis.Client
	Storage       storage.FileStorage
	SearchBackend searchService.Backend
}

type Server struct {
	cfg       *config.Config
	engine    *gin.Engine
	http      *http.Server
	scheduler *jobs.Scheduler
}

func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	db, redisClient := deps.DB, deps.Redis

	registry := reference.NewRegistry()
	resolver := reference.NewResolver(db, registry)

	users := userRepo.NewUserRepository(db)
	games := gameRepo.NewGameRepository(db)
	genres := genreRepo.NewGenreRepository(db)
	reviews := reviewRepo.NewReviewRepository(db)
	posts := postRepo.NewPostRepository(db)

	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), redisClient)
	views := viewService.NewViewService(redisClient, cfg.ViewDedupWindow)
	searchSvc := searchService.NewSearchService(deps.SearchBackend, games, posts)

	authSvc := userService.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL)
	profileSvc := profileService.NewProfileService(users, profileRepo.NewProfileRepository(db), deps.Storage, notificationSvc)
	genreSvc := genreService.NewGenreService(genres)
	gameSvc := gameService.NewGameService(games, genres, users, deps.Storage, views, searchSvc)
	reviewSvc := reviewService.NewReviewService(reviews, games, notificationSvc, redisClient, cfg.RateLimitGlobal, cfg.RateLimitReview)
	likeSvc := likeService.NewLikeService(likeRepo.NewLikeRepository(db), resolver, notificationSvc)
	commentSvc := commentService.NewCommentService(commentRepo.NewCommentRepository(db), resolver, likeSvc, users, notificationSvc, redisClient, cfg.RateLimitGlobal, cfg.RateLimitComment)
	postSvc := postService.NewPostService(posts, games, users, deps.Storage, views, searchSvc)
	reportSvc := reportService.NewReportService(reportRepo.NewReportRepository(db), resolver, users, notificationSvc)
	homeSvc := homeService.NewHomeService(games, genreSvc, reviews, posts, users)

	authHandler := userHttp.NewAuthHandler(authSvc)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)
	genreHandler := genreHttp.NewGenreHandler(genreSvc)
	gameHandler := gameHttp.NewGameHandler(gameSvc)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)
	likeHandler := likeHttp.NewLikeHandler(likeSvc, resolver)
	commentHandler := commentHttp.NewCommentHandler(commentSvc, resolver)
	postHandler := postHttp.NewPostHandler(postSvc)
	reportHandler := reportHttp.NewReportHandler(reportSvc, resolver)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)
	homeHandler := homeHttp.NewHomeHandler(homeSvc)

	downloadLimiter := middleware.NewIPRateLimiter(cfg.DownloadRate, cfg.DownloadBurst)

	scheduler := jobs.NewScheduler(30 * time.Minute)
	if err := scheduler.Register(jobs.Func("search-reindex", cfg.ReindexSchedule, searchSvc.Reindex)); err != nil {
		return nil, err
	}
	if err := scheduler.Register(jobs.Func("download-limiter-cleanup", "@every 10m", func(context.Context) error {
		downloadLimiter.Cleanup(10 * time.Minute)
		return nil
	})); err != nil {
		return nil, err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	router.Use(metrics.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	if cfg.StorageDriver == "local" {
		router.Static("/media", cfg.LocalStorageDir)
	}

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Public routes, personalised when a token is present
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/home", homeHandler.GetHome)
		public.GET("/stats", homeHandler.GetStats)
		public.GET("/search", searchHandler.Search)

		public.GET("/genres", genreHandler.GetAllGenres)
		public.GET("/genres/:slug", genreHandler.GetGenre)

		public.GET("/games", gameHandler.ListGames)
		public.GET("/games/:slug", gameHandler.GetGame)
		public.GET("/games/:slug/reviews", reviewHandler.ListGameReviews)
		public.GET("/games/:slug/download", downloadLimiter.Middleware(), gameHandler.Download)
		public.GET("/games/:slug/download/:file_id", downloadLimiter.Middleware(), gameHandler.Download)

		public.GET("/reviews/:id", reviewHandler.GetReview)
		public.GET("/posts", postHandler.ListPosts)
		public.GET("/posts/:slug", postHandler.GetPost)
		public.GET("/comments/:kind/:id", commentHandler.ListComments)
		public.GET("/likes/:kind/:id", likeHandler.GetLikes)

		public.GET("/profiles/:username", profileHandler.GetProfileByUsername)
		public.GET("/developers", profileHandler.ListDevelopers)
		public.GET("/developers/:username", profileHandler.GetDeveloper)
		public.GET("/users/search", profileHandler.SearchUsers)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/me/profile", profileHandler.GetCurrentProfile)
		protected.PUT("/me/profile", profileHandler.UpdateProfile)
		protected.POST("/me/developer", profileHandler.EnsureDeveloperProfile)
		protected.PUT("/me/developer", profileHandler.UpdateDeveloperProfile)
		protected.GET("/me/games", gameHandler.GetMyGames)
		protected.GET("/me/library", gameHandler.GetLibrary)
		protected.GET("/me/wishlist", gameHandler.GetWishlist)
		protected.POST("/follow/:username", profileHandler.ToggleFollow)

		protected.POST("/games", gameHandler.CreateGame)
		protected.PUT("/games/:slug", gameHandler.UpdateGame)
		protected.DELETE("/games/:slug", gameHandler.DeleteGame)
		protected.PUT("/games/:slug/publish", gameHandler.SetPublished)
		protected.POST("/games/:slug/files", gameHandler.AddFile)
		protected.POST("/games/:slug/images", gameHandler.AddImage)
		protected.POST("/games/:slug/wishlist", gameHandler.ToggleWishlist)
		protected.POST("/games/:slug/reviews", reviewHandler.CreateReview)
		protected.PUT("/games/:slug/rating", reviewHandler.RateGame)

		protected.PUT("/reviews/:id", reviewHandler.UpdateReview)
		protected.DELETE("/reviews/:id", reviewHandler.DeleteReview)

		protected.POST("/posts", postHandler.CreatePost)
		protected.PUT("/posts/:slug", postHandler.UpdatePost)
		protected.DELETE("/posts/:slug", postHandler.DeletePost)
		protected.PUT("/posts/:slug/publish", postHandler.SetPublished)

		protected.POST("/comments", commentHandler.CreateComment)
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)
		protected.POST("/likes", likeHandler.ToggleLike)
		protected.POST("/reports", reportHandler.CreateReport)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		moderation := protected.Group("")
		moderation.Use(authMiddleware.RequireModerator())
		{
			moderation.POST("/genres", genreHandler.CreateGenre)
			moderation.GET("/reports", reportHandler.ListReports)
			moderation.PUT("/reports/:id/status", reportHandler.UpdateStatus)
		}
	}

	return &Server{
		cfg:       cfg,
		engine:    router,
		scheduler: scheduler,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests and jobs.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()
	defer s.scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", s.cfg.Port).Info("server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

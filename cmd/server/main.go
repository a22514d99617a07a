package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/collabhq/collaboard/internal/auth"
	"github.com/collabhq/collaboard/internal/config"
	"github.com/collabhq/collaboard/internal/crypto"
	"github.com/collabhq/collaboard/internal/database"
	"github.com/collabhq/collaboard/internal/health"
	"github.com/collabhq/collaboard/internal/logging"
	"github.com/collabhq/collaboard/internal/mail"
	"github.com/collabhq/collaboard/internal/meetings"
	"github.com/collabhq/collaboard/internal/pages"
	"github.com/collabhq/collaboard/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting collaboard server", "env", cfg.Env, "port", cfg.Port)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err.Error())
		log.Fatal(err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", "error", err.Error())
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		logger.Error("Failed to run migrations", "error", err.Error())
		log.Fatal(err)
	}

	if cfg.Env == "development" {
		if err := database.SeedDevData(db); err != nil {
			logger.Error("Failed to seed development data", "error", err.Error())
		}
	}

	signer, err := crypto.NewSigner(cfg.SecretKey, cfg.VerificationEmailSalt, auth.VerificationPurpose)
	if err != nil {
		logger.Error("Failed to build token signer", "error", err.Error())
		log.Fatal(err)
	}

	mailer, err := mail.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to build mailer", "error", err.Error())
		log.Fatal(err)
	}

	userStore := database.NewUserStore(db)
	meetingStore := database.NewMeetingStore(db)
	authSvc := auth.NewService(userStore, mailer, signer, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	tmpl, err := web.Templates()
	if err != nil {
		logger.Error("Failed to parse templates", "error", err.Error())
		log.Fatal(err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := web.Static()
	if err != nil {
		logger.Error("Failed to load static assets", "error", err.Error())
		log.Fatal(err)
	}
	r.StaticFS("/static", static)

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("collaboard_session", sessionStore))

	secureCookies := cfg.Env == "production"

	// Public pages.
	r.GET("/", pages.Landing())
	r.GET("/health", gin.WrapF(health.Handler))
	r.GET("/signup", auth.SignupPage())
	r.POST("/signup", auth.HandleSignup(authSvc))
	r.GET("/verify", auth.VerifyEmail(authSvc))
	r.GET("/login", auth.LoginPage())
	r.POST("/login", auth.HandleLogin(authSvc, secureCookies))
	r.POST("/logout", auth.HandleLogout())
	r.GET("/meeting/locked", meetings.LockedPage())
	r.GET("/meeting/ended", meetings.EndedPage())

	// Everything below requires a signed-in session.
	authed := r.Group("", auth.RequireAuth())
	authed.GET("/dashboard", pages.Dashboard(meetingStore, logger))
	authed.GET("/account", pages.AccountPage(meetingStore, logger))
	authed.POST("/account", pages.HandleAccountDelete(authSvc, logger))

	meeting := authed.Group("/meeting")
	meeting.GET("/create", meetings.CreatePage())
	meeting.POST("/create", meetings.HandleCreate(meetingStore, logger))
	meeting.GET("/:id/host", meetings.HostPage(meetingStore, logger))
	meeting.POST("/:id/end", meetings.HandleEnd(meetingStore, logger))

	logger.Info("Listening", "addr", ":"+cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", "error", err.Error())
		log.Fatal(err)
	}
}

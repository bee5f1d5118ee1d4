package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/oda/internal/config"
	"github.com/example/oda/internal/handlers"
	"github.com/example/oda/internal/middleware"
	"github.com/example/oda/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	otpService := services.NewOTPService(db)
	tokenService := services.NewTokenService(db, cfg.JWTSecret, cfg.TokenExpires)
	notifier := services.NewNotifier(cfg)
	storageService := services.NewStorageService(cfg.AWSRegion, cfg.S3Bucket, cfg.UploadsDir)
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	authHandler := handlers.NewAuthHandler(db, cfg, otpService, tokenService, notifier)
	resetHandler := handlers.NewPasswordResetHandler(db, notifier)
	profileHandler := handlers.NewProfileHandler(db)
	businessHandler := handlers.NewBusinessHandler(db, storageService, telegramService)
	adminHandler := handlers.NewAdminHandler(db, telegramService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/resend-otp", authHandler.ResendOTP)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-reset-code", resetHandler.VerifyResetCode)
	auth.Post("/reset-password", resetHandler.ResetPassword)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg, tokenService))

	protected.Post("/auth/refresh-token", authHandler.RefreshToken)
	protected.Post("/auth/logout", authHandler.Logout)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	business := protected.Group("/business")
	business.Post("/register", businessHandler.RegisterBusiness)
	business.Post("/upload-documents", businessHandler.UploadDocument)
	business.Get("/verification-status", businessHandler.VerificationStatus)

	// Staff-only routes
	admin := protected.Group("/admin", middleware.StaffMiddleware(db))
	admin.Get("/pending-businesses", adminHandler.ListPendingBusinesses)
	admin.Post("/business/:id/verify", adminHandler.UpdateVerificationStatus)
}

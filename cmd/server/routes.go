package main

import (
	"github.com/gin-gonic/gin"
	"smart-bin.backend/internal/interfaces/http/handlers"
	"smart-bin.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler         *handlers.AuthHandler
	registrationHandler *handlers.RegistrationHandler
	verificationHandler *handlers.VerificationHandler
	registryHandler     *handlers.RegistryHandler
	userHandler         *handlers.UserHandler
	ledgerHandler       *handlers.LedgerHandler
	adminHandler        *handlers.AdminHandler
	authMiddleware      gin.HandlerFunc
	deviceMiddleware    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Bin hardware routes (device secret)
		v1.POST("/scans", d.deviceMiddleware, d.registryHandler.RecordScan)

		// Token availability (public, polled by the registration form)
		v1.GET("/tokens/:token/availability", d.registryHandler.CheckAvailability)

		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/password-reset", d.authHandler.RequestPasswordReset)
			auth.POST("/password-reset/confirm", d.authHandler.ConfirmPasswordReset)
		}

		// Deferred registration (public: the emailed token is the proof)
		registrations := v1.Group("/registrations")
		{
			registrations.POST("/pending", d.registrationHandler.StartPending)
			registrations.POST("/:id/resend", d.registrationHandler.Resend)
			registrations.POST("/complete", d.registrationHandler.Complete)
		}

		// Verification state machine
		verify := v1.Group("/verify")
		{
			verify.POST("/email/confirm", d.verificationHandler.ConfirmEmail)

			authed := verify.Group("")
			authed.Use(d.authMiddleware)
			{
				authed.GET("/status", d.verificationHandler.Status)
				authed.POST("/email/resend", d.verificationHandler.ResendEmail)
				authed.POST("/phone/start", d.verificationHandler.StartPhone)
				authed.POST("/phone/confirm", d.verificationHandler.ConfirmPhone)
				authed.POST("/activate", d.verificationHandler.Activate)
			}
		}

		// Profile routes (protected)
		me := v1.Group("/me")
		me.Use(d.authMiddleware)
		{
			me.GET("", d.userHandler.Me)
			me.PATCH("", d.userHandler.UpdateProfile)
			me.POST("/change-password", d.userHandler.ChangePassword)
			me.POST("/change-email", d.userHandler.ChangeEmail)
			me.GET("/transactions", d.userHandler.Transactions)
		}

		// Ledger routes
		ledger := v1.Group("/ledger")
		{
			ledger.POST("/credits", d.deviceMiddleware, d.ledgerHandler.Credit)
			ledger.POST("/redemptions", d.authMiddleware, middleware.RequireVendor(), d.ledgerHandler.Redeem)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.GET("/unclaimed-tokens", d.adminHandler.ListUnclaimed)
			admin.POST("/users/:id/grant-admin", d.adminHandler.GrantAdmin)
			admin.POST("/users/:id/grant-vendor", d.adminHandler.GrantVendor)
			admin.GET("/report", d.adminHandler.Report)
		}
	}
}

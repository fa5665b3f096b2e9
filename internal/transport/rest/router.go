package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ussdlab/journey-console/internal/auth"
	"github.com/ussdlab/journey-console/internal/carrier"
	"github.com/ussdlab/journey-console/internal/category"
	"github.com/ussdlab/journey-console/internal/gateway"
	"github.com/ussdlab/journey-console/internal/journey"
	"github.com/ussdlab/journey-console/internal/menu"
	"github.com/ussdlab/journey-console/internal/payment"
	"github.com/ussdlab/journey-console/internal/registration"
	"github.com/ussdlab/journey-console/internal/transport/middleware"
	"github.com/ussdlab/journey-console/internal/transport/swagger"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	carrierHandler *carrier.Handler,
	gatewayHandler *gateway.Handler,
	menuHandler *menu.Handler,
	categoryHandler *category.Handler,
	journeyHandler *journey.Handler,
	registrationHandler *registration.Handler,
	paymentHandler *payment.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Metrics)

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Prometheus scrape endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Public read-only routes (no auth required)
		if carrierHandler != nil {
			r.Get("/carriers", carrierHandler.ListCarriers)
			r.Get("/carriers/{id}", carrierHandler.GetCarrier)
		}
		if categoryHandler != nil {
			r.Get("/categories", categoryHandler.ListCategories)
			r.Get("/categories/{id}", categoryHandler.GetCategory)
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if categoryHandler != nil {
					pr.Group(func(ar chi.Router) {
						ar.Use(authHandler.RequireAdmin)
						ar.Post("/categories", categoryHandler.CreateCategory)
						ar.Patch("/categories/{id}", categoryHandler.UpdateCategory)
						ar.Delete("/categories/{id}", categoryHandler.DeleteCategory)
					})
				}

				if gatewayHandler != nil {
					pr.Route("/gateways", func(gr chi.Router) {
						gr.Get("/", gatewayHandler.ListGateways)
						gr.Get("/{id}", gatewayHandler.GetGateway)

						gr.Group(func(ar chi.Router) {
							ar.Use(authHandler.RequireAdmin)
							ar.Post("/", gatewayHandler.CreateGateway)
							ar.Patch("/{id}", gatewayHandler.UpdateGateway)
							ar.Patch("/{id}/status", gatewayHandler.UpdateGatewayStatus)
						})

						if menuHandler != nil {
							gr.Route("/{gatewayID}/menus", func(mr chi.Router) {
								mr.Get("/", menuHandler.ListMenus)

								mr.Group(func(ar chi.Router) {
									ar.Use(authHandler.RequireAdmin)
									ar.Post("/", menuHandler.CreateMenu)
									ar.Patch("/{id}", menuHandler.UpdateMenu)
									ar.Delete("/{id}", menuHandler.DeleteMenu)
									ar.Post("/reorder", menuHandler.ReorderMenus)
								})
							})
						}

						if registrationHandler != nil {
							gr.Route("/{gatewayID}/registrations", func(rr chi.Router) {
								rr.Get("/", registrationHandler.ListRegistrations)
								rr.Get("/{id}", registrationHandler.GetRegistration)

								rr.Group(func(ar chi.Router) {
									ar.Use(authHandler.RequireAdmin)
									ar.Post("/", registrationHandler.CreateRegistration)
									ar.Patch("/{id}", registrationHandler.UpdateRegistration)
									ar.Delete("/{id}", registrationHandler.DeleteRegistration)
									ar.Post("/reorder", registrationHandler.ReorderRegistrations)
									ar.Post("/{id}/consume-credits", registrationHandler.ConsumeCredits)
								})
							})
						}
					})
				}

				if journeyHandler != nil {
					pr.Route("/journeys", func(jr chi.Router) {
						jr.Get("/", journeyHandler.ListJourneys)
						jr.Get("/{id}", journeyHandler.GetJourney)
						jr.Get("/{id}/versions", journeyHandler.ListVersions)

						jr.Group(func(ar chi.Router) {
							ar.Use(authHandler.RequireAdmin)
							ar.Post("/", journeyHandler.CreateJourney)
							ar.Patch("/{id}", journeyHandler.UpdateJourney)
							ar.Post("/{id}/publish", journeyHandler.PublishJourney)
							ar.Post("/{id}/archive", journeyHandler.ArchiveJourney)
							ar.Post("/{id}/versions", journeyHandler.CreateVersion)
							ar.Post("/{id}/versions/{versionID}/publish", journeyHandler.PublishVersion)
							ar.Post("/{id}/versions/{versionID}/promote", journeyHandler.PromoteVersion)
						})
					})
				}

				if paymentHandler != nil {
					pr.Route("/payment-methods", func(pmr chi.Router) {
						pmr.Get("/", paymentHandler.ListMethods)
						pmr.Get("/{id}", paymentHandler.GetMethod)
						pmr.Get("/{id}/transactions", paymentHandler.ListTransactions)

						pmr.Group(func(ar chi.Router) {
							ar.Use(authHandler.RequireAdmin)
							ar.Post("/", paymentHandler.CreateMethod)
							ar.Patch("/{id}", paymentHandler.UpdateMethod)
							ar.Delete("/{id}", paymentHandler.DeleteMethod)
							ar.Post("/{id}/default", paymentHandler.SetDefaultMethod)
							ar.Post("/{id}/transactions", paymentHandler.CreateTransaction)
							ar.Post("/{id}/transactions/{txnID}/complete", paymentHandler.CompleteTransaction)
							ar.Post("/{id}/transactions/{txnID}/fail", paymentHandler.FailTransaction)
							ar.Post("/{id}/transactions/{txnID}/cancel", paymentHandler.CancelTransaction)
						})
					})
				}
			})
		}
	})
}

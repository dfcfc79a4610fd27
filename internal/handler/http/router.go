package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diamondcartel/wishlist/internal/service"
	"github.com/diamondcartel/wishlist/pkg/health"
	"github.com/diamondcartel/wishlist/pkg/middleware"
)

// NewRouter creates a chi router with all wishlist service routes registered.
func NewRouter(
	wishlistService *service.WishlistService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))
	r.Use(middleware.Tracing("wishlist"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Wishlist API endpoints
	wishlistHandler := NewWishlistHandler(wishlistService, logger)

	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Get("/", wishlistHandler.GetWishlist)
		r.Delete("/", wishlistHandler.ClearWishlist)

		r.Post("/items", wishlistHandler.AddItem)
		r.Patch("/items/{itemID}", wishlistHandler.UpdateItemQuantity)
		r.Delete("/items/{itemID}", wishlistHandler.RemoveItem)

		r.Post("/send", wishlistHandler.SendQuote)
	})

	return r
}

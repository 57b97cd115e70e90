package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xenopets/backend/internal/config"
	assetsvc "github.com/xenopets/backend/internal/services/assets"
	authsvc "github.com/xenopets/backend/internal/services/auth"
	diagsvc "github.com/xenopets/backend/internal/services/diagnostics"
	invsvc "github.com/xenopets/backend/internal/services/inventory"
	profilesvc "github.com/xenopets/backend/internal/services/profiles"
	storesvc "github.com/xenopets/backend/internal/services/store"
	"github.com/xenopets/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	StoreService       *storesvc.Service
	ProfileService     *profilesvc.Service
	InventoryService   *invsvc.Service
	AssetService       *assetsvc.Service
	DiagnosticsService *diagsvc.Service
	JWTManager         *authsvc.JWTManager
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	shopHandler := handlers.NewShopHandler(deps.StoreService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.StoreService)
	inventoryHandler := handlers.NewInventoryHandler(deps.InventoryService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	healthHandler := handlers.NewHealthHandler(deps.DiagnosticsService)
	adminHandler := handlers.NewAdminHandler(deps.StoreService, deps.ProfileService, deps.AssetService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	adminMW := RequireRole(authsvc.RoleAdmin)

	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/readyz", healthHandler.Readiness)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/shops", shopHandler.ListShops)
		r.Get("/shops/{shopID}/items", shopHandler.ListShopItems)
		r.Get("/shop-items/{shopItemID}", shopHandler.GetListing)

		r.With(authMW).Post("/purchase", purchaseHandler.Purchase)
		r.With(authMW).Post("/purchase/affordability", purchaseHandler.Affordability)

		r.With(authMW).Get("/inventory", inventoryHandler.List)
		r.With(authMW).Get("/me", profileHandler.Me)
		r.With(authMW).Get("/me/balances", profileHandler.Balances)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminMW)
			r.Get("/diagnostics", healthHandler.Diagnostics)
			r.Post("/shop-items", adminHandler.UpsertShopItem)
			r.Post("/shop-items/{shopItemID}/restock", adminHandler.Restock)
			r.Post("/items/{itemID}/image", adminHandler.UploadItemImage)
			r.Post("/users/{userID}/credit", adminHandler.Credit)
		})
	})
}

package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenopets/backend/internal/config"
	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/infra/httpclient"
	s3infra "github.com/xenopets/backend/internal/infra/s3"
	memrepo "github.com/xenopets/backend/internal/repo/memory"
	pgrepo "github.com/xenopets/backend/internal/repo/postgres"
	redrepo "github.com/xenopets/backend/internal/repo/redis"
	sbrepo "github.com/xenopets/backend/internal/repo/supabase"
	assetsvc "github.com/xenopets/backend/internal/services/assets"
	authsvc "github.com/xenopets/backend/internal/services/auth"
	diagsvc "github.com/xenopets/backend/internal/services/diagnostics"
	invsvc "github.com/xenopets/backend/internal/services/inventory"
	profilesvc "github.com/xenopets/backend/internal/services/profiles"
	storesvc "github.com/xenopets/backend/internal/services/store"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	purchases  purchaseStore
	httpRouter http.Handler
}

type profileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	DebitBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error)
	CreditBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error)
}

type listingStore interface {
	ListShops(ctx context.Context) ([]model.Shop, error)
	ListItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, error)
	GetAvailableItem(ctx context.Context, shopItemID uuid.UUID) (model.ShopItem, error)
	DecrementStock(ctx context.Context, shopItemID uuid.UUID, quantity int64) error
	UpsertItem(ctx context.Context, listing model.ShopItem) (model.ShopItem, error)
	Restock(ctx context.Context, shopItemID uuid.UUID, stockLimit *int64) error
	UpdateItemImage(ctx context.Context, itemID uuid.UUID, imagePath string) error
}

type inventoryStore interface {
	Add(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error
	Remove(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.InventoryEntry, error)
}

type purchaseStore interface {
	Append(ctx context.Context, record model.PurchaseRecord) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// recordStores bundles one backend's repositories. Every backend fills all
// four concerns so the services above never know which one they run on.
type recordStores struct {
	profiles  profileStore
	listings  listingStore
	inventory inventoryStore
	purchases purchaseStore
	pinger    diagsvc.Pinger
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	app := &App{cfg: cfg, logger: log}

	stores, err := app.newRecordStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init record store backend: %w", err)
	}
	app.purchases = stores.purchases

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	app.redis = redisClient
	lockRepo := redrepo.NewLockRepo(redisClient)
	catalogCache := redrepo.NewCatalogCache(redisClient)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	app.s3 = s3Client

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	storeService := storesvc.NewService(storesvc.Dependencies{
		Profiles:  stores.profiles,
		Listings:  stores.listings,
		Inventory: stores.inventory,
		Audit:     stores.purchases,
		Locker:    lockRepo,
		Cache:     catalogCache,
	}, storesvc.Config{
		LockTTL:  cfg.Store.PurchaseLockTTL,
		CacheTTL: cfg.Store.CatalogCacheTTL,
	}, log)
	profileService := profilesvc.NewService(stores.profiles)
	inventoryService := invsvc.NewService(stores.inventory)

	assetStorage := assetsvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	assetService := assetsvc.NewService(stores.listings, assetStorage)

	diagTargets := []diagsvc.Target{
		{Name: "record_store", Pinger: stores.pinger},
		{Name: "redis", Pinger: redrepo.NewPinger(redisClient)},
	}
	diagnosticsService := diagsvc.NewService(diagTargets, 5*time.Second)

	RegisterRoutes(r, Dependencies{
		StoreService:       storeService,
		ProfileService:     profileService,
		InventoryService:   inventoryService,
		AssetService:       assetService,
		DiagnosticsService: diagnosticsService,
		JWTManager:         jwtManager,
		Logger:             log,
		Config:             cfg,
	})

	app.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	app.httpRouter = r

	return app, nil
}

func (a *App) newRecordStores(ctx context.Context, cfg config.Config) (recordStores, error) {
	switch cfg.RecordStore.Backend {
	case "supabase":
		client, err := sbrepo.NewClient(sbrepo.Config{
			URL:        cfg.RecordStore.Supabase.URL,
			ServiceKey: cfg.RecordStore.Supabase.ServiceKey,
		}, httpclient.New(cfg.RecordStore.Supabase.Timeout))
		if err != nil {
			return recordStores{}, fmt.Errorf("supabase client: %w", err)
		}
		return recordStores{
			profiles:  sbrepo.NewProfileRepo(client),
			listings:  sbrepo.NewShopRepo(client),
			inventory: sbrepo.NewInventoryRepo(client),
			purchases: sbrepo.NewPurchaseRepo(client),
			pinger:    client,
		}, nil

	case "postgres":
		pool, err := pgrepo.NewPool(ctx, cfg.RecordStore.Postgres.DSN)
		if err != nil {
			return recordStores{}, fmt.Errorf("postgres pool: %w", err)
		}
		a.postgres = pool
		return recordStores{
			profiles:  pgrepo.NewProfileRepo(pool),
			listings:  pgrepo.NewShopRepo(pool),
			inventory: pgrepo.NewInventoryRepo(pool),
			purchases: pgrepo.NewPurchaseRepo(pool),
			pinger:    pgrepo.NewPinger(pool),
		}, nil

	case "memory":
		mem := memrepo.NewStore()
		return recordStores{
			profiles:  mem,
			listings:  mem,
			inventory: mem,
			purchases: mem,
			pinger:    mem,
		}, nil

	default:
		return recordStores{}, fmt.Errorf("unknown record store backend %q", cfg.RecordStore.Backend)
	}
}

func (a *App) Run() error {
	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("record_store", a.cfg.RecordStore.Backend),
	)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// PurchaseLog exposes the purchase audit store so the cleanup job can prune
// it regardless of which backend is configured.
func (a *App) PurchaseLog() interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
} {
	return a.purchases
}

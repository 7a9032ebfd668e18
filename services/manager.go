package services

import (
	"bengaliboutique_server/database"
	"bengaliboutique_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	AuthService     *AuthService
	EmailService    *EmailService
	CacheService    *CacheService
	EventService    *EventService
	HealthService   *HealthService
	CartService     *CartService
	CatalogService  *CatalogService
	CheckoutService *CheckoutService
	OrderService    *OrderService
	ReviewService   *ReviewService
	WishlistService *WishlistService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB) *ServiceManager {
	catalogRepo := database.NewCatalogRepository(db)
	orderRepo := database.NewOrderRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	wishlistRepo := database.NewWishlistRepository(db)

	authService := NewAuthService(cfg, logger)
	cacheService := NewCacheService(logger, cfg)
	emailService := NewEmailService(logger, cfg)
	eventService := NewEventService(logger, cfg.Kafka)
	healthService := NewHealthService(logger, db, cacheService)

	return &ServiceManager{
		AuthService:     authService,
		EmailService:    emailService,
		CacheService:    cacheService,
		EventService:    eventService,
		HealthService:   healthService,
		CartService:     NewCartService(logger, cacheService, catalogRepo),
		CatalogService:  NewCatalogService(logger, cfg.Shop, catalogRepo, reviewRepo, cacheService),
		CheckoutService: NewCheckoutService(logger, cfg, cacheService, orderRepo, emailService, eventService, cacheService, cacheService),
		OrderService:    NewOrderService(logger, cfg, orderRepo),
		ReviewService:   NewReviewService(logger, catalogRepo, reviewRepo),
		WishlistService: NewWishlistService(logger, catalogRepo, wishlistRepo),
	}
}

// Close releases the Redis pool and the Kafka writer.
func (sm *ServiceManager) Close() error {
	if err := sm.EventService.Close(); err != nil {
		return err
	}
	return sm.CacheService.Close()
}

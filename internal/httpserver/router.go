package httpserver

import (
	"context"
	"errors"
	"io"
	"time"

	"ecofinds-api/internal/domain"
	uploadrepo "ecofinds-api/internal/repository/upload"
	cartsvc "ecofinds-api/internal/service/cart"
	uploadsvc "ecofinds-api/internal/service/upload"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartView, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.CartView, error)
	Clear(ctx context.Context, userID string) error
	Checkout(ctx context.Context, userID string, in cartsvc.CheckoutInput) (*cartsvc.CheckoutResult, error)
}

type uploadService interface {
	SaveOne(ctx context.Context, f *uploadsvc.File) (*uploadsvc.Stored, error)
	SaveMany(ctx context.Context, files []uploadsvc.File) ([]uploadsvc.Stored, error)
	Open(ctx context.Context, name string) (io.ReadCloser, *uploadrepo.Object, error)
}

// Deps carries the services and HTTP policies the router needs.
type Deps struct {
	CartSvc   cartService
	UploadSvc uploadService
	Auth      AuthConfig
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// UploadRatePerMinute limits upload POSTs per client IP. Zero disables the limit.
	UploadRatePerMinute int
	// MaxUploadBytes is the per-file limit, used to cap multipart request bodies.
	MaxUploadBytes int64
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.UploadSvc == nil {
		return nil, errors.New("httpserver: cart and upload services are required")
	}
	auth, err := authMiddleware(deps.Auth)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery(), corsMiddleware(deps.CORSOrigins))
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	ch := &cartHandlers{svc: deps.CartSvc, logger: logger}
	cart := router.Group("/cart", auth)
	cart.GET("", ch.get)
	cart.POST("/add", ch.add)
	cart.PUT("/update/:itemId", ch.update)
	cart.DELETE("/remove/:itemId", ch.remove)
	cart.DELETE("/clear", ch.clear)
	cart.POST("/checkout", ch.checkout)

	uh := &uploadHandlers{svc: deps.UploadSvc, logger: logger, maxFileBytes: deps.MaxUploadBytes}
	upload := router.Group("/upload")
	upload.GET("/:filename", uh.serve)
	router.GET("/uploads/:filename", uh.serve)

	writes := upload.Group("", auth)
	if deps.UploadRatePerMinute > 0 {
		limiter := newIPRateLimiter(rate.Every(time.Minute/time.Duration(deps.UploadRatePerMinute)), deps.UploadRatePerMinute, 10*time.Minute)
		writes.Use(limiter.middleware())
	}
	writes.POST("/image", uh.single)
	writes.POST("/images", uh.multiple)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

package controller

import (
	"time"

	"doc-anchor/conf"
	"doc-anchor/controller/handler"
	"doc-anchor/controller/respond"
	"doc-anchor/ratelimit"
	"doc-anchor/service/pin_service"
	"doc-anchor/service/record_service"
	"doc-anchor/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter setup document anchoring service router
func SetupRouter(pinService *pin_service.PinService, recordService *record_service.RecordService, mirror storage.Storage) *gin.Engine {
	// Create Gin engine
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     conf.Cfg.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Add timing middleware
	r.Use(respond.TimingMiddleware())

	// Add per-IP rate limit middleware
	r.Use(RateLimitMiddleware(ratelimit.NewPerKey(
		conf.Cfg.RateLimit.MaxRequests,
		time.Duration(conf.Cfg.RateLimit.WindowSeconds)*time.Second)))

	// Create handlers
	pinHandler := handler.NewPinHandler(pinService)
	recordHandler := handler.NewRecordHandler(recordService, mirror)
	healthHandler := handler.NewHealthHandler(recordService)

	api := r.Group("/api")
	{
		upload := api.Group("/upload")
		{
			// Pin a document to IPFS
			upload.POST("/ipfs", pinHandler.PinFile)

			// Upload record CRUD
			upload.POST("", recordHandler.CreateRecord)
			upload.GET("", recordHandler.ListRecords)
			upload.GET("/cid/:cid", recordHandler.GetRecordByCID)
			upload.GET("/wallet/:address", recordHandler.ListRecordsByWallet)

			// Mirrored content
			upload.GET("/content/:cid", recordHandler.GetContent)
		}
	}

	// Health check
	r.GET("/health", healthHandler.Health)

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RateLimitMiddleware answers 429 once a client IP exhausts its window
func RateLimitMiddleware(limiter *ratelimit.PerKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			respond.TooManyRequests(c, "Too many requests from this IP, please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

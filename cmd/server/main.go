package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doc-anchor/conf"
	"doc-anchor/controller"
	"doc-anchor/database"
	"doc-anchor/service/pin_service"
	"doc-anchor/service/record_service"
	"doc-anchor/storage"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "config.yaml", "Path to configuration file")
}

// @title           Document Anchor API
// @version         1.0
// @description     Document anchoring service: pins documents to IPFS and records their CIDs together with the anchoring transaction.

// @host      localhost:5001
// @BasePath  /

// @schemes http https

func main() {
	srv, cleanup := initAll()
	defer cleanup()

	go startServer(srv)

	waitForShutdown()

	log.Println("Shutting down server...")
	shutdownServer(srv)
	log.Println("Server exited")
}

// initAll initialize all components
func initAll() (*http.Server, func()) {
	flag.Parse()

	// Initialize configuration
	if err := conf.InitConfig(configFile); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	if err := conf.Cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.Printf("Configuration loaded: env=%s, port=%s, database=%s",
		conf.Cfg.Env, conf.Cfg.Port, conf.Cfg.Database.Type)

	if !conf.Cfg.Pinning.HasCredentials() {
		log.Printf("Warning: pinning credentials are not configured, uploads will be rejected")
	}

	// Initialize database
	if err := initDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (optional, won't fail if disabled or unavailable)
	if err := database.InitRedis(); err != nil {
		log.Printf("Redis initialization failed (cache will be disabled): %v", err)
	}

	// Initialize pin mirror storage (optional)
	var mirror storage.Storage
	if conf.Cfg.Mirror.Enabled {
		var err error
		mirror, err = storage.NewStorage()
		if err != nil {
			log.Fatalf("Failed to initialize mirror storage: %v", err)
		}
		log.Printf("Mirror storage initialized: type=%s", conf.Cfg.Mirror.Type)
	}

	// Create services
	pinService := pin_service.NewPinService(mirror)
	recordService := record_service.NewRecordService()

	// Setup router
	router := controller.SetupRouter(pinService, recordService, mirror)

	srv := &http.Server{
		Addr:    ":" + conf.Cfg.Port,
		Handler: router,
	}

	cleanup := func() {
		if database.DB != nil {
			database.DB.Close()
		}
		if err := database.CloseRedis(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		}
	}

	return srv, cleanup
}

// initDatabase initialize database based on configuration
func initDatabase() error {
	switch database.DBType(conf.Cfg.Database.Type) {
	case database.DBTypePebble:
		config := &database.PebbleConfig{
			DataDir: conf.Cfg.Database.DataDir,
		}
		return database.InitDatabase(database.DBTypePebble, config)

	default:
		config := &database.MySQLConfig{
			DSN:          conf.Cfg.Database.Dsn,
			MaxOpenConns: conf.Cfg.Database.MaxOpenConns,
			MaxIdleConns: conf.Cfg.Database.MaxIdleConns,
		}
		return database.InitDatabase(database.DBTypeMySQL, config)
	}
}

// startServer start HTTP server
func startServer(srv *http.Server) {
	log.Printf("Server starting on port %s...", conf.Cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/config"
	"github.com/ocna/restaurant-pos/database"
	"github.com/ocna/restaurant-pos/printer"
	"github.com/ocna/restaurant-pos/router"
	"github.com/ocna/restaurant-pos/services"
	"github.com/ocna/restaurant-pos/utils"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger()
	if err := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		utils.ErrorLogger.Fatalf("Invalid log settings: %v", err)
	}
	utils.InitJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.HTTP.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.EnsureSchema(db, database.Seed{
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
	}); err != nil {
		utils.ErrorLogger.Fatalf("Failed to prepare schema: %v", err)
	}

	ctx := context.Background()
	tables := services.NewTableRegistry(tableStore(cfg.Tables))
	if err := tables.Load(ctx); err != nil {
		utils.ErrorLogger.Fatalf("Failed to load tables: %v", err)
	}

	var dispatcher printer.Dispatcher = printer.LogDispatcher{Width: cfg.Printer.Width}
	if cfg.Printer.SpoolDir != "" {
		dispatcher = printer.NewSpoolDispatcher(cfg.Printer.SpoolDir, cfg.Printer.Width)
	}

	ledger := services.NewLedger(db)
	monitor := services.NewActiveMonitor(ledger, cfg.ActivePollInterval)
	if err := monitor.Start(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start active table monitor: %v", err)
	}

	r := router.SetupRouter(router.Deps{
		Auth:       services.NewAuthenticator(db),
		Ledger:     ledger,
		Kitchen:    services.NewKitchen(ledger, dispatcher),
		Catalog:    services.NewCatalog(db),
		Reports:    services.NewReports(db),
		Tables:     tables,
		Monitor:    monitor,
		PrintWidth: cfg.Printer.Width,
		CORSOrigin: cfg.HTTP.CORSOrigin,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Printf("Error setting trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:    "127.0.0.1:" + cfg.HTTP.Port,
		Handler: r,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown: %v", err)
	}
	if err := monitor.Stop(); err != nil {
		utils.ErrorLogger.Printf("Monitor shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func tableStore(cfg config.TablesConfig) services.BlobStore {
	if cfg.Store == config.TablesStoreRedis {
		utils.InfoLogger.Printf("Table list stored in redis at %s", cfg.RedisAddr)
		return services.NewRedisBlobStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), services.DefaultTablesKey)
	}
	return services.NewFileBlobStore(cfg.File)
}

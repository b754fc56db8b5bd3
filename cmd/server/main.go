package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/smartskincare/api/internal/app"
	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) || isWeakSecret(cfg.UserJWT.SecretKey) {
			stdLog.Fatalf("JWT secret is weak or still the default, configure a strong random key in production")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) || isWeakSecret(cfg.UserJWT.SecretKey) {
		stdLog.Printf("Warning: JWT secret is weak or still the default, replace it before going to production")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Database init failed: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Database migration failed: %v", err)
	}

	defaultAdminUser := os.Getenv("SSC_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("SSC_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		stdLog.Printf("Warning: SSC_DEFAULT_ADMIN_PASSWORD not set, skipped default admin bootstrap")
	} else if err := models.InitDefaultAdmin(defaultAdminUser, defaultAdminPass); err != nil {
		stdLog.Printf("Warning: default admin bootstrap failed: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "run mode: all (default), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("Service exited with error: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + " ____                       _     ____  _    _" + ansiReset)
	fmt.Println(ansiCyan + "/ ___| _ __ ___   __ _ _ __| |_  / ___|| | _(_)_ __   ___ __ _ _ __ ___" + ansiReset)
	fmt.Println(ansiCyan + "\\___ \\| '_ ` _ \\ / _` | '__| __| \\___ \\| |/ / | '_ \\ / __/ _` | '__/ _ \\" + ansiReset)
	fmt.Println(ansiCyan + " ___) | | | | | | (_| | |  | |_   ___) |   <| | | | | (_| (_| | | |  __/" + ansiReset)
	fmt.Println(ansiCyan + "|____/|_| |_| |_|\\__,_|_|   \\__| |____/|_|\\_\\_|_| |_|\\___\\__,_|_|  \\___|" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Smart Skincare API" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}

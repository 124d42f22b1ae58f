package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kentalbores/IntProg-sub001/internal/auth"
	"github.com/kentalbores/IntProg-sub001/internal/config"
	"github.com/kentalbores/IntProg-sub001/internal/profile"
	profilerepo "github.com/kentalbores/IntProg-sub001/internal/profile/repo"
	"github.com/kentalbores/IntProg-sub001/internal/router"
	"github.com/kentalbores/IntProg-sub001/internal/user"
	userrepo "github.com/kentalbores/IntProg-sub001/internal/user/repo"
	"github.com/kentalbores/IntProg-sub001/pkg/database"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

func main() {
	// best-effort: without a .env the real environment and defaults are used
	_ = godotenv.Load()

	cfg := config.Load()

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting eventhub api")

	if err := utilities.InitSnowflake(cfg.SnowflakeNode); err != nil {
		sugar.Fatalf("snowflake node %d: %v", cfg.SnowflakeNode, err)
	}

	db, err := database.ConnectX(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	users := userrepo.NewUserRepo(db)
	organizers := profilerepo.NewOrganizerRepo(db)
	vendors := profilerepo.NewVendorRepo(db)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"users":      users.EnsureTable,
		"organizers": organizers.EnsureTable,
		"vendors":    vendors.EnsureTable,
	} {
		if err := ensure(bootCtx); err != nil {
			bootCancel()
			sugar.Fatalf("ensure %s table: %v", name, err)
		}
	}
	bootCancel()

	profileSvc := profile.NewService(organizers, vendors, sugar)
	userSvc := user.NewUserService(users, profileSvc, nil, sugar)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	handler := router.RegisterRoutes(router.Deps{
		Logger:       sugar,
		Users:        user.NewHandler(userSvc, tokens, sugar),
		Profiles:     profile.NewHandler(profileSvc, userSvc, sugar),
		Tokens:       tokens,
		AuthRequired: cfg.AuthRequired,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("http server listening", "addr", cfg.HTTPAddr, "auth_required", cfg.AuthRequired)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

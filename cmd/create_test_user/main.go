package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"kodbank/internal/config"
	"kodbank/internal/db"
	"kodbank/internal/logger"
	"kodbank/internal/repository"
	"kodbank/internal/service"
)

// otpCapture keeps the last issued code so the seed can activate the account.
type otpCapture struct{ code string }

func (o *otpCapture) SendOTP(_ context.Context, _, code string) error {
	o.code = code
	return nil
}

func main() {
	username := flag.String("username", "demouser", "username")
	email := flag.String("email", "demo@kodbank.local", "email")
	password := flag.String("password", "demo-password", "password")
	mpin := flag.String("mpin", "1234", "4-6 digit mPIN")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	var store repository.Store = repository.NewMemoryStore()
	if cfg.StorageDriver == config.StoragePostgres {
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		store = repository.NewPgStore(pool)
	} else {
		logger.Warn("memory storage selected, the user will not outlive this process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions := service.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, nil)
	otp := &otpCapture{}
	auth := service.NewAuthService(store, sessions, otp)

	u, err := auth.Register(ctx, service.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: *password,
		Phone:    "+10000000000",
	})
	switch {
	case err == nil:
		logger.Info("user created", "id", u.ID, "username", u.Username)
		if err := auth.VerifyOTP(ctx, *email, otp.code); err != nil {
			logger.Fatal("activate user failed", "error", err)
		}
		if err := auth.SetupMPIN(ctx, *email, *mpin); err != nil {
			logger.Fatal("set mpin failed", "error", err)
		}
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		logger.Info("user already exists", "username", *username)
	default:
		logger.Fatal("create user failed", "error", err)
	}

	u, sess, err := auth.Login(ctx, *username, *password)
	if err != nil {
		logger.Fatal("login failed", "error", err)
	}
	logger.Info("fetched user", "id", u.ID, "username", u.Username, "balance", u.Balance, "holdings", len(u.Holdings))
	fmt.Printf("token=%s\nexpires_at=%s\n", sess.Token, sess.ExpiresAt.Format(time.RFC3339))
}

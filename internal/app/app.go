package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/291e/bogofit-verify/internal/config"
	httpx "github.com/291e/bogofit-verify/internal/http"
	"github.com/291e/bogofit-verify/internal/http/handlers"
	"github.com/291e/bogofit-verify/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	container, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if container.RedisClient != nil {
		if err := container.RedisClient.Ping(context.Background()); err != nil {
			return err
		}
	}

	emailH := handlers.NewEmailHandlers(container.VerificationSvc, container.AccountRepo, container.NotificationSvc)
	phoneH := handlers.NewPhoneHandlers(container.VerificationSvc, container.AccountRepo, container.NotificationSvc)
	debugH := handlers.NewDebugHandlers(container.VerificationSvc)

	jwtMW := middleware.NewAuthMW(container.TokenSvc)

	r := httpx.BuildRouter(emailH, phoneH, debugH, jwtMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (store backend: %s)", addr, cfg.StoreBackend)
	return http.ListenAndServe(addr, r)
}

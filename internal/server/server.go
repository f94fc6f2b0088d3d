package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecshop/internal/config"
	"ecshop/internal/middleware"
	"ecshop/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// New はバリデータ・共通middleware・全ルートを持つechoを返す
func New(cfg config.Config, log *zap.Logger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	RegisterRoutes(e, cfg, h)
	return e
}

// Start はctxがキャンセルされるまで待ち、その後gracefulに止める
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

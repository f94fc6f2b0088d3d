package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// メソッド・パス・ステータス・処理時間をzapで出す
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	l := log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if uid, ok := c.Get(CtxUserIDKey).(int64); ok {
				fields = append(fields, zap.Int64("user_id", uid))
			}

			switch s := c.Response().Status; {
			case s >= 500:
				l.Error("request", append(fields, zap.Error(err))...)
			case s >= 400:
				l.Warn("request", fields...)
			default:
				l.Info("request", fields...)
			}
			return nil
		}
	}
}

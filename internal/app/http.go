package app

import (
	"context"
	"log/slog"
	"net/http/httputil"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meetd2005/Forge-Frontend/internal/config"
	"github.com/meetd2005/Forge-Frontend/internal/middleware"
	"github.com/meetd2005/Forge-Frontend/internal/refresh"
	"github.com/meetd2005/Forge-Frontend/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	cookieOpts := session.Options(cfg.IsProduction(), cfg.CookieDomain)
	refresher := refresh.New(cfg.AuthBaseURL)
	gate := middleware.NewGate(refresher, infra.Denylist, cookieOpts)

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(requestLogger())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.GinGate(gate))

	// ----------------------------
	// Gateway-local Routes
	// ----------------------------

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Upstream Proxy
	// ----------------------------

	// Everything not handled above is the web app's problem; the gate
	// has already applied refresh, protection, and header injection.
	proxy := httputil.NewSingleHostReverseProxy(infra.Upstream)
	router.NoRoute(gin.WrapH(proxy))

	return router, infra.cleanup, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rlog := slog.Default().With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"request_id", requestid.Get(c),
		)

		start := time.Now()
		c.Next()
		rlog.Info("request completed",
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

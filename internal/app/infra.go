package app

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/meetd2005/Forge-Frontend/internal/config"
	"github.com/meetd2005/Forge-Frontend/internal/redis"
	"github.com/meetd2005/Forge-Frontend/internal/revocation"
)

type Infra struct {
	Upstream *url.URL

	// Denylist is nil when no redis is configured; the gate then skips
	// the best-effort revocation check.
	Denylist *revocation.Denylist

	cleanup func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return nil, err
	}

	infra := &Infra{Upstream: upstream}

	if cfg.RedisAddr != "" {
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		infra.Denylist = revocation.NewDenylist(client.Client)
		infra.cleanup = client.Close

		slog.Info("redis ready", "addr", cfg.RedisAddr)
	}

	return infra, nil
}

package main

import (
	"context"

	config "github.com/classtab/classtab/internal/config/server"
	pg "github.com/classtab/classtab/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}

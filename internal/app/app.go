// Package app wires configuration into the services both binaries serve.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/mind-engage/studyhub/internal/accounts"
	api "github.com/mind-engage/studyhub/internal/api/http"
	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/config"
	"github.com/mind-engage/studyhub/internal/db"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/notes"
	"github.com/mind-engage/studyhub/internal/paper"
	"github.com/mind-engage/studyhub/internal/rewards"
	"github.com/mind-engage/studyhub/internal/roles"
	"github.com/mind-engage/studyhub/internal/storage"
)

type App struct {
	DB   *sql.DB
	Deps api.Deps
}

func (a *App) Close() error { return a.DB.Close() }

// New opens the database and blob stores and builds every service. It also
// creates the bootstrap admin when ADMIN_PASS_HASH is set.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		dbh.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}
	bank, err := storage.NewFSStore(cfg.DataRoot)
	if err != nil {
		dbh.Close()
		return nil, fmt.Errorf("question bank: %w", err)
	}

	acc := accounts.NewSQLStore(dbh)
	if created, err := acc.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		dbh.Close()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	} else if created {
		log.Info("bootstrap admin created", "username", cfg.AdminUser)
	}
	rw := rewards.NewSQLStore(dbh, nil)

	return &App{
		DB: dbh,
		Deps: api.Deps{
			Log:                log,
			Auth:               authmw.NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
			Accounts:           acc,
			Roles:              acc,
			AllowClaimFallback: cfg.Mode == config.ModeOffline,
			Notes:              notes.NewService(notes.NewSQLStore(dbh, rw), blobs, cfg.PublicURL, log),
			Tokens:             rw,
			RoleReqs:           roles.NewService(dbh, acc),
			Papers:             paper.NewAssembler(paper.NewLoader(bank, log), paper.DefaultSource()),
			Bank:               os.DirFS(cfg.DataRoot),
			CORSOrigins:        cfg.CORSOrigins(),
			UploadMaxBytes:     cfg.UploadMaxBytes,
			TokensPerApproval:  cfg.TokensPerApproval,
			LeaderboardLimit:   cfg.LeaderboardLimit,
		},
	}, nil
}

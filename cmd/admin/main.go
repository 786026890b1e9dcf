package main

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/mind-engage/studyhub/internal/accounts"
	"github.com/mind-engage/studyhub/internal/config"
	"github.com/mind-engage/studyhub/internal/db"
	"github.com/mind-engage/studyhub/internal/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var dbh *sql.DB
	cli := commandLine{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		log:      log,
		dataRoot: cfg.DataRoot,
		accounts: func() (accountStore, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			h, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
			if err != nil {
				return nil, err
			}
			dbh = h
			return accounts.NewSQLStore(h), nil
		},
	}
	err = cli.run(os.Args)
	if dbh != nil {
		dbh.Close()
	}
	if err != nil {
		if err != errHelp {
			log.Error("admin command failed", "err", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

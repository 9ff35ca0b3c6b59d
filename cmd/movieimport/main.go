package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"moviecatalog/mongodb"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/provider/omdb"
)

const (
	idsFlag   = "ids"
	fileFlag  = "file"
	limitFlag = "limit"
)

func main() {
	app := cli.NewApp()
	app.Name = "movieimport"
	app.Usage = "Copies OMDb titles into the local catalog as external movies"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  idsFlag,
			Usage: "comma separated IMDb ids, defaults to CATALOG_MOVIE_SEEDS",
		},
		cli.StringFlag{
			Name:  fileFlag,
			Usage: "csv file whose first column holds IMDb ids",
		},
		cli.IntFlag{
			Name:  limitFlag,
			Usage: "import at most this many titles (0 = all)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ids, err := collectIDs(c.String(idsFlag), c.String(fileFlag), cfg.Catalog.MovieSeeds)
	if err != nil {
		return err
	}
	if n := c.Int(limitFlag); n > 0 && n < len(ids) {
		ids = ids[:n]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mongodb.NewDatabase(ctx, mongodb.Options{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: time.Duration(cfg.Mongo.ConnectTimeout) * time.Second,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	client := omdb.New(cfg.OMDB.BaseURL, cfg.OMDB.APIKey, time.Duration(cfg.OMDB.Timeout)*time.Second, nil)
	imported, failed := importMovies(ctx, client, mongodb.NewMovieRepository(db), ids, log)

	log.Infow("import completed", "imported", imported, "failed", failed, "requested", len(ids))
	if failed > 0 && imported == 0 {
		return fmt.Errorf("no movie imported out of %d", len(ids))
	}
	return nil
}

func splitIDs(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

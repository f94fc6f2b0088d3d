// importer はフィードをコマンドラインから取り込む。
//
//	importer [-async] <file|url>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ecshop/internal/app"
	"ecshop/internal/config"
	"ecshop/internal/logger"
	"ecshop/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	async := flag.Bool("async", false, "enqueue the import instead of running it now")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: importer [-async] <file|url>")
		os.Exit(2)
	}
	source := flag.Arg(0)

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.GoEnv)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("build app", zap.Error(err))
	}
	defer a.Close()

	in := usecase.ImportInput{Source: source}

	if *async {
		if a.InProcessQueue() {
			fmt.Fprintln(os.Stderr, "-async needs REDIS_ADDR")
			os.Exit(1)
		}
		id, err := a.Importer.ImportAsync(ctx, in)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("enqueued %s\n", id)
		return
	}

	res, err := a.Importer.Import(ctx, in)
	if err != nil {
		if ie, ok := usecase.AsImportError(err); ok {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ie.Kind.Describe(), ie.Err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	fmt.Printf("imported shop %q (id=%d): %d categories, %d goods\n", res.Shop, res.ShopID, res.Categories, res.Goods)
}

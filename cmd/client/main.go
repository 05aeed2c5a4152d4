package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/cli"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/config"
	"github.com/dmitrijs2005/bea-ebooks/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-m", "-dir", "-c", "-config", "--config"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, flagx.Positional(os.Args[1:], knownFlags)); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}

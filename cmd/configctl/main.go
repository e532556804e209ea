package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"gift_autobuy/internal/application"
	"gift_autobuy/internal/config"
	"gift_autobuy/internal/configctl"
	"gift_autobuy/pkg/logx"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})))

	cfg, err := config.LoadStorage()
	if err != nil {
		slog.Error("config load", logx.Error(err))
		os.Exit(1)
	}

	open := func(ctx context.Context) (configctl.Store, func(), error) {
		storage, err := application.OpenStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		return storage.Store, func() { storage.Close(ctx) }, nil
	}

	if err = configctl.NewRootCommand(open, cfg.Bot.OwnerIDs...).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

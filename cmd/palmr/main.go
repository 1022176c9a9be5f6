package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"palmr-api/internal"
)

func main() {
	ctx := context.Background()

	app, err := internal.NewApp(ctx)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer app.Close()

	if err = app.InitControllers(ctx); err != nil {
		app.Logger().Error("init controllers failed", zap.Error(err))
		app.Close()
		os.Exit(1)
	}

	if err = app.Run(ctx); err != nil {
		app.Logger().Sugar().Errorf("palmr stopped with error: %v", err)
		app.Close()
		os.Exit(1)
	}
}

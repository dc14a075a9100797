// Command shelfsync-server serves the shelfsync HTTP API.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/shelfsync/internal/server"
	"github.com/dmitrijs2005/shelfsync/internal/server/config"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx, config.LoadConfig(), os.Stdout)
	if err != nil {
		log.Printf("startup failed: %v", err)
		os.Exit(1)
	}

	app.Run(ctx)
}

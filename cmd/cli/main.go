// Command shelfsync is the interactive client for the shelfsync server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/shelfsync/internal/client/cli"
	"github.com/dmitrijs2005/shelfsync/internal/client/config"
)

func main() {
	ctx := context.Background()

	app, err := cli.NewApp(config.LoadConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app.Run(ctx)
}

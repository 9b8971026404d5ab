package main

import (
	"context"
	"log"
	"os"

	"github.com/avolkov/blogpulse/internal/buildinfo"
	"github.com/avolkov/blogpulse/internal/client/cli"
	"github.com/avolkov/blogpulse/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Root(ctx)

}

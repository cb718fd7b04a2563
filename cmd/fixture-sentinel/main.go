package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "fixture-sentinel",
		Usage: "Keep a calendar in step with a sports league fixture feed",
		Commands: []*cli.Command{
			runCmd,
			syncCmd,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

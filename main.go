// turbojet 单轴涡喷发动机热力循环计算
//
//	turbojet design --geometry geometry.json
//	turbojet offdesign --geometry geometry.json --altitude 30000 --mach 0.8 --throttle 0.9
//	turbojet sweep --altitude 30000 --mach 0.8 --from 1 --to 0.7 --xlsx sweep.xlsx
//	turbojet batch --in cases.xlsx --out results.xlsx
//	turbojet serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"turbojet/calculator"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "turbojet",
		Usage: "single-spool turbojet design-point and off-design cycle calculations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "conf",
				Aliases: []string{"c"},
				Usage:   "ini configuration file (default " + calculator.DefaultConfPath + ")",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "optional dotenv file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the [log] level of the configuration",
			},
		},
		Before: func(c *cli.Context) error {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			return calculator.LoadEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			designCommand(),
			offDesignCommand(),
			sweepCommand(),
			batchCommand(),
			serveCommand(),
			mapsCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ratecli 本地询价工具
//
// Usage:
//
//	ratecli validate --shipment shipment.json
//	ratecli quote --shipment shipment.json --carrier fedex --carrier ups [--timeout 5s]
//	ratecli carriers [--type courier]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"oip/ratesync/internal/business/engine"
	"oip/ratesync/internal/business/rating"
	"oip/ratesync/pkg/config"
	"oip/ratesync/pkg/logger"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "ratecli",
		Usage:  "Multi-carrier rate quoting from the command line",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config YAML (mock engines when omitted)",
				EnvVars: []string{"RATESYNC_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "error",
				Usage:   "Log level (debug, info, warn, error), logs go to stderr",
				EnvVars: []string{"RATESYNC_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			quoteCommand(),
			carriersCommand(),
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Normalize and validate a shipment form",
		Flags: []cli.Flag{shipmentFlag()},
		Action: func(c *cli.Context) error {
			form, err := readShipment(c.String("shipment"))
			if err != nil {
				return err
			}

			svc, _, err := newService(c)
			if err != nil {
				return err
			}

			req := rating.NormalizeShipment(form)
			result := svc.ValidateShipment(&req)
			if err := writeJSON(c.App.Writer, map[string]interface{}{
				"is_valid": result.IsValid,
				"errors":   result.Errors,
				"request":  req,
			}); err != nil {
				return err
			}
			if !result.IsValid {
				return fmt.Errorf("shipment is invalid")
			}
			return nil
		},
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Rate a shipment against carriers and select the best quote",
		Flags: []cli.Flag{
			shipmentFlag(),
			&cli.StringSliceFlag{
				Name:    "carrier",
				Aliases: []string{"C"},
				Usage:   "Carrier id (repeatable), defaults to the configured catalog",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall aggregation timeout (0 uses rating.timeout)",
			},
		},
		Action: func(c *cli.Context) error {
			form, err := readShipment(c.String("shipment"))
			if err != nil {
				return err
			}

			svc, cfg, err := newService(c)
			if err != nil {
				return err
			}

			ctx := context.Background()
			carrierIDs := c.StringSlice("carrier")
			if len(carrierIDs) == 0 {
				req := rating.NormalizeShipment(form)
				carrierIDs, err = engine.NewStaticCatalog(cfg.Rating.Carriers).EligibleCarriers(ctx, req.ShipmentType)
				if err != nil {
					return err
				}
			}

			timeout := c.Duration("timeout")
			if timeout <= 0 {
				timeout = cfg.Rating.Timeout
			}

			result, quoteErr := svc.Quote(ctx, form, carrierIDs, rating.RateOptions{Timeout: timeout})
			if result != nil {
				if err := writeJSON(c.App.Writer, result); err != nil {
					return err
				}
			}
			if quoteErr != nil {
				return quoteErr
			}
			return nil
		},
	}
}

func carriersCommand() *cli.Command {
	return &cli.Command{
		Name:  "carriers",
		Usage: "List carriers known to the mock engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Filter by shipment type (courier, freight)",
			},
		},
		Action: func(c *cli.Context) error {
			return writeJSON(c.App.Writer, engine.CarrierIDs(rating.ShipmentType(c.String("type"))))
		},
	}
}

func shipmentFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "shipment",
		Aliases:  []string{"s"},
		Usage:    "Path to shipment form JSON (- for stdin)",
		Required: true,
	}
}

// newService 按配置创建询价服务，未指定配置时使用 mock 引擎
func newService(c *cli.Context) (*rating.Service, *config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	log, err := logger.NewZapLoggerWithOutput(c.String("log-level"), "stderr")
	if err != nil {
		return nil, nil, err
	}

	primary, legacy, err := engine.NewPair(cfg.Engines)
	if err != nil {
		return nil, nil, err
	}
	return rating.NewService(primary, legacy, log), cfg, nil
}

func readShipment(path string) (map[string]interface{}, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read shipment: %w", err)
	}

	var form map[string]interface{}
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("parse shipment: %w", err)
	}
	return form, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/network"
	"github.com/thep2p/go-myso-localnet/internal/utils"
	"github.com/urfave/cli/v2"
)

var networkFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "validators",
		Usage: "number of validators in the committee",
		Value: model.DefaultValidatorCount,
	},
	&cli.DurationFlag{
		Name:  "epoch-duration",
		Usage: "length of an epoch",
		Value: model.DefaultEpochDuration,
	},
	&cli.StringFlag{
		Name:    "binary",
		Usage:   "path of the myso executable, looked up on PATH when empty",
		EnvVars: []string{model.BinaryEnvVar},
	},
	&cli.BoolFlag{
		Name:  "skip-validator-funding",
		Usage: "do not fund the validator accounts after startup",
	},
}

func main() {
	app := &cli.App{
		Name:  "myso-localnet",
		Usage: "Boot an ephemeral myso network for local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn or error",
				Value: zerolog.InfoLevel.String(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start a network and keep it running until interrupted",
				Action: start,
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{
						Name:  "fund",
						Usage: "fund an address once the network is up, as <address>=<amount>; repeatable",
					},
				}, networkFlags...),
			},
			{
				Name:      "build-package",
				Usage:     "Compile a Move package against a fresh network and print it as JSON",
				ArgsUsage: "<package-dir>",
				Action:    buildPackage,
				Flags:     networkFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger(), nil
}

func networkOptions(c *cli.Context, logger zerolog.Logger) []network.Option {
	opts := []network.Option{
		network.WithLogger(logger),
		network.WithValidatorCount(c.Int("validators")),
		network.WithEpochDuration(c.Duration("epoch-duration")),
		network.WithBinary(c.String("binary")),
	}
	if c.Bool("skip-validator-funding") {
		opts = append(opts, network.WithoutValidatorFunding())
	}
	return opts
}

func start(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	requests, err := parseFundRequests(c.StringSlice("fund"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := network.Start(ctx, networkOptions(c, logger)...)
	if err != nil {
		return fmt.Errorf("start network: %w", err)
	}
	defer func() {
		if err := h.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close network")
		}
	}()

	if err := h.Fund(ctx, requests); err != nil {
		return err
	}

	fmt.Printf("rpc_url=%s\nworking_dir=%s\n", h.RPCURL(), h.Dir())
	logger.Info().Msg("network running, interrupt to stop")
	<-ctx.Done()
	return nil
}

// builtPackageJSON is the printed form of a compiled package.
type builtPackageJSON struct {
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Digest       string   `json:"digest"`
}

func buildPackage(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one package directory, got %d arguments", c.NArg())
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := network.Start(ctx, networkOptions(c, logger)...)
	if err != nil {
		return fmt.Errorf("start network: %w", err)
	}
	defer func() {
		if err := h.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close network")
		}
	}()

	pkg, err := h.BuildPackage(ctx, c.Args().First())
	if err != nil {
		return err
	}

	out := builtPackageJSON{
		Modules:      utils.EncodeBase64All(pkg.Modules),
		Dependencies: make([]string, len(pkg.Dependencies)),
		Digest:       pkg.Digest.String(),
	}
	for i, d := range pkg.Dependencies {
		out.Dependencies[i] = d.String()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// parseFundRequests parses <address>=<amount> pairs.
func parseFundRequests(specs []string) ([]network.FundRequest, error) {
	requests := make([]network.FundRequest, 0, len(specs))
	for _, s := range specs {
		addr, amount, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid fund request %q: expected <address>=<amount>", s)
		}
		a, err := model.AddressFromHex(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid fund request %q: %w", s, err)
		}
		v, err := strconv.ParseUint(amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fund request %q: %w", s, err)
		}
		requests = append(requests, network.FundRequest{Address: a, Amount: v})
	}
	return requests, nil
}


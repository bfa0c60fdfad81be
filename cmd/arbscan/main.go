package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/config"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/oddsapi"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/poller"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file")
		sport      = flag.String("sport", "", "Sport key, e.g. upcoming or soccer_epl (default from config)")
		regions    = flag.String("regions", "", "Bookmaker regions, e.g. uk,eu (default from config)")
		stake      = flag.String("stake", "", "Total stake; prompted for when omitted")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env file:", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if strings.TrimSpace(cfg.OddsAPI.APIKey) == "" {
		fmt.Fprintln(os.Stderr, "no odds API key: set API_KEY in the environment or a .env file")
		os.Exit(1)
	}
	if s := strings.TrimSpace(*sport); s != "" {
		cfg.OddsAPI.Sport = s
	}
	if r := strings.TrimSpace(*regions); r != "" {
		cfg.OddsAPI.Regions = r
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(max(level, zerolog.WarnLevel)).
		With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := oddsapi.NewClient(oddsapi.Config{
		BaseURL: cfg.OddsAPI.BaseURL,
		APIKey:  cfg.OddsAPI.APIKey,
		Sport:   cfg.OddsAPI.Sport,
		Regions: cfg.OddsAPI.Regions,
		Markets: cfg.OddsAPI.Markets,
		Timeout: cfg.OddsAPI.Timeout,
	}, logger)

	app := &cli{
		fetcher: client,
		scanner: arbitrage.NewScanner(cfg.Scanner.ToScanParams(), logger),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		logger:  logger,
	}

	if err := app.run(ctx, *stake); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli fetches odds once, asks for a stake and prints every arbitrage found
type cli struct {
	fetcher poller.Fetcher
	scanner *arbitrage.Scanner
	in      *bufio.Reader
	out     io.Writer
	logger  zerolog.Logger
}

func (c *cli) run(ctx context.Context, stakeArg string) error {
	events, err := c.fetcher.FetchOdds(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch odds: %w", err)
	}

	records, rejected := oddsapi.Flatten(events)
	for _, err := range rejected {
		c.logger.Warn().Err(err).Msg("skipping odds data")
	}

	stake, err := c.readStake(stakeArg)
	if err != nil {
		return err
	}

	result, err := c.scanner.Scan(records, stake)
	if err != nil {
		return err
	}

	printReport(c.out, result, len(events))
	return nil
}

func (c *cli) readStake(stakeArg string) (decimal.Decimal, error) {
	input := stakeArg
	if strings.TrimSpace(input) == "" {
		fmt.Fprint(c.out, "> Enter your stake: ")
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return decimal.Zero, fmt.Errorf("failed to read stake: %w", err)
		}
		input = strings.TrimRight(line, "\r\n")
	}
	return arbitrage.ParseStake(input)
}

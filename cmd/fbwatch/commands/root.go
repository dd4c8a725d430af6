package commands

import (
	"context"
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	"fbwatch/internal/scrapers/facebook"
	"fbwatch/pkg/serviceutil"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fbwatch",
	Short: "fbwatch tracks when friends were last active and crawls profiles, timelines and reactions.",

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

var (
	configPath *string
	debug      *bool
	jsonOutput *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The configuration file to read.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
	jsonOutput = rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON instead of tables.")
}

type environment struct {
	cfg     Config
	time    chrono.StandardImpl
	tel     telemetry.API
	otel    telemetry.Otel
	fetcher *facebook.Fetcher
}

var env environment

func setup(cmd *cobra.Command, args []string) error {
	telemetry.InitSlog(*debug)

	otel, err := telemetry.SetupFromEnv(cmd.Context(), "fbwatch")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	cfg, err := readConfig(*configPath)
	if err != nil {
		return err
	}

	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	tel := telemetry.SlogAPI{}
	downloader := facebook.NewHttpDownloader(facebook.HttpDownloaderOptions{
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, tel)
	fetcher := facebook.NewFetcher(downloader, facebook.NewParser(clock, tel), tel, facebook.FetcherOptions{
		UserId:   cfg.UserId,
		CookieXs: cfg.CookieXs,
		ClientId: cfg.ClientId,
		Timeout:  cfg.Timeout(),
	})

	env = environment{
		cfg:     cfg,
		time:    clock,
		tel:     tel,
		otel:    otel,
		fetcher: fetcher,
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := env.otel.Shutdown(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to flush telemetry:", err)
	}
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		serviceutil.Fatal("fbwatch failed", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexf37/ingest-demo/internal/autofill"
	"github.com/alexf37/ingest-demo/internal/pipeline"
	"github.com/alexf37/ingest-demo/internal/profile"
	"github.com/alexf37/ingest-demo/plugin/ai"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
	"github.com/alexf37/ingest-demo/server"
	"github.com/alexf37/ingest-demo/store"
	"github.com/alexf37/ingest-demo/store/db"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "ingestd",
	Short: "An ingestion server that turns records into memories and actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Version: version,
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		logger := newLogger(instanceProfile)
		slog.SetDefault(logger)

		dbDriver, err := db.NewDBDriver(ctx, instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver)

		chatLLM, err := ai.NewLLMService(&ai.Config{
			BaseURL: instanceProfile.AIBaseURL,
			APIKey:  instanceProfile.AIAPIKey,
			Model:   instanceProfile.AIChatModel,
		})
		if err != nil {
			return fmt.Errorf("failed to create completion service: %w", err)
		}
		autofillLLM, err := ai.NewLLMService(&ai.Config{
			BaseURL: instanceProfile.AIBaseURL,
			APIKey:  instanceProfile.AIAPIKey,
			Model:   instanceProfile.AIAutofillModel,
		})
		if err != nil {
			return fmt.Errorf("failed to create autofill service: %w", err)
		}

		memories := supermemory.NewClient(instanceProfile.MemoryBaseURL, instanceProfile.MemoryAPIKey)
		ingestPipeline := pipeline.New(chatLLM, memories, storeInstance, logger)
		generator := autofill.NewGenerator(autofillLLM)

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, ingestPipeline, generator, logger)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		errChan := make(chan error, 1)
		go func() {
			errChan <- s.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
		case err := <-errChan:
			if err != nil {
				logger.Error("server stopped", "error", err)
			}
		}
		s.Shutdown(context.Background())
		return nil
	},
}

func newLogger(p *profile.Profile) *slog.Logger {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory for the ingestion log")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("ingest")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

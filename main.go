package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/ghstats"
	"github.com/Zachkp/folio/internal/site"
	"github.com/Zachkp/folio/internal/visits"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio site and admin dashboard",
	Long: "folio serves a portfolio site rendered from a remote data store and " +
		"manages its experience and project records from the command line.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the public portfolio site",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before the environment is read")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newAPIClient(cfg config.Config) (*api.Client, error) {
	return api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RatePerSecond, cfg.API.Burst),
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	opts := site.Options{
		Source: client,
		GitHub: ghstats.New(),
		Content: site.Content{
			Name:       cfg.Site.Name,
			About:      AboutMe,
			GitHubRepo: cfg.Site.GitHubRepo,
			Links:      cfg.Site.Links,
		},
	}

	if cfg.Visits.Enabled {
		store, err := visits.Open(cfg.Visits.DBPath, cfg.Visits.Salt)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Visits = store
		log.Println("Privacy: visitor tracking enabled with hashed IP addresses")

		if cfg.Visits.RetentionDays > 0 {
			go func() {
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
				defer cancel()
				retention := time.Duration(cfg.Visits.RetentionDays) * 24 * time.Hour
				if _, err := store.Prune(ctx, retention); err != nil {
					log.Printf("Error cleaning up old visitor data: %v", err)
				}
			}()
		}
	}

	r := site.NewRouter(opts)
	log.Printf("Serving portfolio on :%s (data store %s)", cfg.Site.Port, client.BaseURL())
	return r.Run(":" + cfg.Site.Port)
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/forkandfind/client/config"
	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/openfoodfacts"
	"github.com/forkandfind/client/internal/infrastructure/store"
	"github.com/forkandfind/client/internal/logging"
	"github.com/forkandfind/client/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forkandfind",
	Short: "ForkAndFind - browse Open Food Facts products",
	Long: `ForkAndFind browses the Open Food Facts product database.

Products can be listed by category or by search term, sorted by name or
Nutri-Score, and paged through until the end of the list. The last selected
category is remembered between runs when the sqlite store is configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Development)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, browseCmd, categoriesCmd, productCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds the upstream client from the loaded configuration
func newClient() *openfoodfacts.Client {
	return openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
		Burst:             cfg.OpenFoodFacts.Burst,
	}, logger)
}

func newCatalog(source domain.FoodSource) *usecase.CategoryCatalog {
	return usecase.NewCategoryCatalog(source, usecase.PredefinedCategories(), usecase.CatalogConfig{
		MinProducts: cfg.Catalog.MinProducts,
		Limit:       cfg.Catalog.Limit,
	}, logger)
}

// openPreferences opens the configured preference store. The returned
// closer must be called once the store is no longer used.
func openPreferences() (domain.PreferenceStore, func(), error) {
	if cfg.Store.Type != "sqlite" {
		return store.NewMemoryStore(), func() {}, nil
	}

	path := cfg.Store.Path
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}

	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("preference store opened", zap.String("path", db.Path()))

	return db, func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close preference store", zap.Error(err))
		}
	}, nil
}

// printItems writes one line per list item
func printItems(w io.Writer, items []domain.FoodItem) {
	for _, item := range items {
		fmt.Fprintf(w, "%-14s  %-3s  %s\n", item.Code, item.NutritionGrade, item.Name)
	}
}

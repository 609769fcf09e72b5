package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/cache"
	"github.com/forkandfind/client/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	browseCategory string
	browseSearch   string
	browsePages    int
	browseSort     string
	browseDesc     bool
)

// browseCmd prints the homepage list in the terminal
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List products by category or search term",
	Long: `List products from Open Food Facts.

Without flags the last selected category is restored, falling back to all
products. --pages loads further pages as if the end of the list was scrolled
into view.`,
	Example: `  forkandfind browse --category snacks --pages 3
  forkandfind browse --search nutella --sort nutrition --desc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var sortField domain.SortField
		if browseSort != "" {
			field, ok := domain.ParseSortField(browseSort)
			if !ok {
				return fmt.Errorf("--sort must be 'name' or 'nutrition', got %q", browseSort)
			}
			sortField = field
		}

		prefs, closePrefs, err := openPreferences()
		if err != nil {
			return fmt.Errorf("failed to open preference store: %w", err)
		}
		defer closePrefs()

		client := newClient()
		sentinel := &usecase.Sentinel{}
		home := usecase.NewHomepage(client, newCatalog(client), prefs, sentinel, logger)

		if browseCategory != "" && browseSearch == "" {
			if err := home.SelectCategory(ctx, browseCategory, ""); err != nil {
				return err
			}
		} else {
			home.Init(ctx, browseSearch)
		}

		for i := 1; i < browsePages && home.List().CanLoadMore(); i++ {
			sentinel.Enter(ctx)
		}

		if sortField != "" {
			order := domain.Ascending
			if browseDesc {
				order = domain.Descending
			}
			home.List().SetSort(domain.SortSpec{Field: sortField, Order: order})
		}

		view := home.View()
		out := cmd.OutOrStdout()

		switch {
		case view.SearchTerm != "":
			fmt.Fprintf(out, "Search: %s\n", view.SearchTerm)
		case view.SelectedCategoryName != "":
			fmt.Fprintf(out, "Category: %s\n", view.SelectedCategoryName)
		default:
			fmt.Fprintln(out, "All products")
		}
		printItems(out, view.List.Items)
		if view.List.Message != "" {
			fmt.Fprintln(out, view.List.Message)
		}
		return nil
	},
}

// categoriesCmd prints the predefined and the auxiliary categories
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the predefined and the most popular categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		names := make([]string, 0, 8)
		for _, c := range usecase.PredefinedCategories() {
			names = append(names, c.Name)
		}
		fmt.Fprintf(out, "Predefined: %s\n\n", strings.Join(names, ", "))

		for _, option := range newCatalog(newClient()).Load(cmd.Context()) {
			fmt.Fprintf(out, "%-40s  %-30s  %d\n", option.ID, option.DisplayName, option.ProductCount)
		}
		return nil
	},
}

// productCmd prints the detail view of one product as JSON
var productCmd = &cobra.Command{
	Use:   "product <code>",
	Short: "Show the details of one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		memoryCache := cache.NewMemoryCache()
		defer memoryCache.Close()

		products := usecase.NewProductService(memoryCache, newClient(), usecase.ProductServiceConfig{
			CacheTTL: cfg.Cache.TTL,
		}, logger)

		detail, err := products.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseCategory, "category", "", "Category id to filter by")
	browseCmd.Flags().StringVar(&browseSearch, "search", "", "Search term (wins over --category)")
	browseCmd.Flags().IntVar(&browsePages, "pages", 1, "Number of pages to load")
	browseCmd.Flags().StringVar(&browseSort, "sort", "", "Sort by 'name' or 'nutrition'")
	browseCmd.Flags().BoolVar(&browseDesc, "desc", false, "Sort descending")
}

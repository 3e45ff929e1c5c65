package kcal

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/app"
	"github.com/saadjs/kcal-planner/internal/provider/usda"
	"github.com/saadjs/kcal-planner/internal/service"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage the food catalog",
}

var (
	foodCategory     string
	foodCompleteOnly bool
	foodJSON         bool
	foodImportFile   string
	foodAdd          service.FoodInput
)

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			foods, err := service.ListFoods(sqldb, service.FoodFilter{Category: foodCategory, CompleteOnly: foodCompleteOnly})
			if err != nil {
				return err
			}
			if foodJSON {
				return printJSON(cmd.OutOrStdout(), "foods", foods)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCATEGORY\tPER\tKCAL\tP\tC\tF\tCOMPLETE")
			for _, f := range foods {
				per := "100g"
				if f.QuantityType == "units" {
					per = "unit"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\t%t\n",
					f.ID, f.Name, f.Category, per, f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.IsComplete)
			}
			return nil
		})
	},
}

var foodAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or replace one catalog food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := foodAdd
		in.ID = args[0]
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.ImportFoods(sqldb, []service.FoodInput{in})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved food %s\n", strings.ToLower(strings.TrimSpace(in.ID)))
			if res.Incomplete > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: food is incomplete and will not be used in plans")
			}
			return nil
		})
	},
}

var foodImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import foods from a YAML catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if foodImportFile == "" {
			return fmt.Errorf("--file is required")
		}
		raw, err := os.ReadFile(foodImportFile)
		if err != nil {
			return fmt.Errorf("read catalog file: %w", err)
		}
		foods, err := service.ParseCatalogYAML(raw)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.ImportFoods(sqldb, foods)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d foods (%d incomplete)\n", res.Imported, res.Incomplete)
			return nil
		})
	},
}

var foodSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the bundled starter catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.SeedDefaultCatalog(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d foods\n", res.Imported)
			return nil
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a catalog food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteFood(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food %s\n", args[0])
			return nil
		})
	},
}

var (
	lookupAPIKey   string
	lookupLimit    int
	lookupSave     int
	lookupID       string
	lookupCategory string
	lookupBaseURL  string
)

var foodLookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Search USDA FoodData Central for per-100g foods",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := strings.TrimSpace(lookupAPIKey)
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv(app.EnvUSDAAPIKey))
		}
		if apiKey == "" {
			return fmt.Errorf("missing USDA API key; set %s or pass --api-key", app.EnvUSDAAPIKey)
		}
		if lookupSave > 0 && lookupCategory == "" {
			return fmt.Errorf("--category is required with --save")
		}
		client := &usda.Client{APIKey: apiKey, BaseURL: lookupBaseURL}
		query := strings.Join(args, " ")
		candidates, err := service.LookupFoods(cmd.Context(), client, query, lookupLimit)
		if err != nil {
			return err
		}
		if lookupSave == 0 {
			if foodJSON {
				return printJSON(cmd.OutOrStdout(), "lookup", candidates)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "#\tFDC_ID\tDESCRIPTION\tKCAL\tP\tC\tF")
			for i, c := range candidates {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", i+1, c.FDCID, c.Description, c.Calories, c.ProteinG, c.CarbsG, c.FatG)
			}
			return nil
		}
		if lookupSave > len(candidates) {
			return fmt.Errorf("--save %d out of range (%d results)", lookupSave, len(candidates))
		}
		in := service.CandidateFoodInput(candidates[lookupSave-1], lookupID, lookupCategory)
		return withDB(func(sqldb *sql.DB) error {
			if _, err := service.ImportFoods(sqldb, []service.FoodInput{in}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %s (%s)\n", in.Name, in.ID, in.Category)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodListCmd, foodAddCmd, foodImportCmd, foodSeedCmd, foodDeleteCmd, foodLookupCmd)

	foodListCmd.Flags().StringVar(&foodCategory, "category", "", "Filter by category")
	foodListCmd.Flags().BoolVar(&foodCompleteOnly, "complete", false, "Only foods usable in plans")
	for _, c := range []*cobra.Command{foodListCmd, foodLookupCmd} {
		c.Flags().BoolVar(&foodJSON, "json", false, "Output JSON")
	}

	foodAddCmd.Flags().StringVar(&foodAdd.Name, "name", "", "Display name")
	foodAddCmd.Flags().StringVar(&foodAdd.Category, "category", "", "Food category")
	foodAddCmd.Flags().StringVar(&foodAdd.QuantityType, "per", "grams", "grams (values per 100 g) or units (values per piece)")
	foodAddCmd.Flags().Float64Var(&foodAdd.Calories, "calories", 0, "Calories")
	foodAddCmd.Flags().Float64Var(&foodAdd.ProteinG, "protein", 0, "Protein grams")
	foodAddCmd.Flags().Float64Var(&foodAdd.CarbsG, "carbs", 0, "Carb grams")
	foodAddCmd.Flags().Float64Var(&foodAdd.FatG, "fat", 0, "Fat grams")
	_ = foodAddCmd.MarkFlagRequired("name")
	_ = foodAddCmd.MarkFlagRequired("category")

	foodImportCmd.Flags().StringVar(&foodImportFile, "file", "", "YAML file with a top-level foods list")

	foodLookupCmd.Flags().StringVar(&lookupAPIKey, "api-key", "", "USDA API key (default: $USDA_API_KEY)")
	foodLookupCmd.Flags().StringVar(&lookupBaseURL, "base-url", "", "Override USDA API base URL")
	foodLookupCmd.Flags().IntVar(&lookupLimit, "limit", 10, "Maximum results")
	foodLookupCmd.Flags().IntVar(&lookupSave, "save", 0, "Save result number N into the catalog")
	foodLookupCmd.Flags().StringVar(&lookupID, "id", "", "Catalog id for the saved food (default: from description)")
	foodLookupCmd.Flags().StringVar(&lookupCategory, "category", "", "Catalog category for the saved food")
}

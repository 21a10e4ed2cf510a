package main

import (
	"fmt"
	"os"
	"strings"

	"pantry-recommender/internal/core/corpus"
	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/pkg/common"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recommend",
		Short:         "Offline pantry recipe recommendations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pantry-recommender v%s\n", version)
		},
	})

	runCmd := &cobra.Command{
		Use:   "run <fixture.yaml>",
		Short: "Rank the recipes of a fixture file against its inventory",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecommend,
	}
	runCmd.Flags().String("meal-type", "", "Override the fixture meal type")
	runCmd.Flags().Int("count", 0, "Override the number of results")
	runCmd.Flags().Bool("prioritize-expiring", true, "Weight soon-to-expire ingredients higher")
	runCmd.Flags().StringSlice("select", nil, "Only use these inventory ingredients")
	runCmd.Flags().Bool("show-inventory", false, "Print the fixture inventory to stderr")
	rootCmd.AddCommand(runCmd)

	matchCmd := &cobra.Command{
		Use:   "match <ingredient> <candidate>...",
		Short: "Show how an ingredient matches each candidate",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runMatch,
	}
	rootCmd.AddCommand(matchCmd)

	return rootCmd
}

func initLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	if err := common.InitLogger(level, ""); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd); err != nil {
		return err
	}
	defer common.Sync()

	fx, err := corpus.Load(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("meal-type") {
		fx.MealType, _ = cmd.Flags().GetString("meal-type")
		if _, err := common.ParseMealType(fx.MealType); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("count") {
		fx.Count, _ = cmd.Flags().GetInt("count")
	}
	if cmd.Flags().Changed("prioritize-expiring") {
		prioritize, _ := cmd.Flags().GetBool("prioritize-expiring")
		fx.PrioritizeExpiring = &prioritize
	}
	if cmd.Flags().Changed("select") {
		fx.SelectedIngredients, _ = cmd.Flags().GetStringSlice("select")
	}

	if show, _ := cmd.Flags().GetBool("show-inventory"); show {
		fmt.Fprint(cmd.ErrOrStderr(), common.FormatIngredients(fx.Inventory))
	}

	engine := recommend.New(recommend.WithLogger(common.Logger))
	out, err := common.ToIndentedJSON(fx.Recommend(engine))
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd); err != nil {
		return err
	}
	defer common.Sync()

	name, candidates := args[0], args[1:]
	m := match.NewMatcher(common.Logger)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s → %q (%s)\n", name, match.Normalize(name), orDash(match.Category(name)))
	for _, c := range candidates {
		res := m.Match(name, c)
		fmt.Fprintf(w, "  %-30s %-8s quality=%.2f confidence=%.2f\n", c, res.MatchType, res.Quality, res.Confidence)
	}

	best := m.FindBestMatch(name, candidates)
	if best.Matched() {
		fmt.Fprintf(w, "best: %s (%.2f)\n", best.MatchedName, best.Quality)
	} else {
		fmt.Fprintln(w, "best: none")
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

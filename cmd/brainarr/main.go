// Command brainarr runs the prompt-planning engine against a library
// snapshot and prints the resulting plan. It exists for local debugging and
// for exercising the engine outside the host application.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RicherTunes/brainarr/internal/config"
	"github.com/RicherTunes/brainarr/internal/logging"
	"github.com/RicherTunes/brainarr/internal/planner"
)

// version is stamped by the build.
var version = "dev"

var (
	flagDebug    bool
	flagLibrary  string
	flagSettings string
	flagJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "brainarr",
	Short: "Brainarr prompt-planning engine",
	Long:  "Deterministic prompt planning, library sampling, and plan caching for LLM music recommendations.",
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a prompt plan from a library snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(flagDebug)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		snapshot, err := loadSnapshot(flagLibrary)
		if err != nil {
			return err
		}

		settings := config.Defaults()
		if flagSettings != "" {
			settings, err = config.Load(flagSettings)
			if err != nil {
				return err
			}
		}

		p, err := planner.New(planner.Options{
			Catalog: snapshot.Catalog(),
			Logger:  log,
		})
		if err != nil {
			return err
		}

		plan, err := p.Plan(cmd.Context(), snapshot.Profile(), &planner.Request{
			Settings:     settings,
			StyleContext: snapshot.StyleContext(),
			Artists:      snapshot.Artists(),
			Albums:       snapshot.Albums(),
		})
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}

		printSummary(plan)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("brainarr", version)
	},
}

func printSummary(plan *planner.Plan) {
	fmt.Printf("plan %s\n", plan.ID)
	fmt.Printf("  cache key:   %.32s...\n", plan.CacheKey)
	fmt.Printf("  fingerprint: %.16s...\n", plan.LibraryFingerprint)
	fmt.Printf("  seed:        %d\n", plan.Seed)
	fmt.Printf("  from cache:  %t  sparse: %t  relaxed: %t\n", plan.FromCache, plan.Sparse, plan.Relaxed)

	fmt.Printf("  styles (%d):\n", len(plan.StylesUsed))
	for _, e := range plan.StylesUsed {
		fmt.Printf("    %s (%s), coverage %d, matched %d\n",
			e.Name, e.Slug, plan.Coverage[e.Slug], plan.MatchedCounts[e.Slug])
	}
	if len(plan.TrimmedStyles) > 0 {
		fmt.Printf("  trimmed: %v\n", plan.TrimmedStyles)
	}

	fmt.Printf("  artists (%d):\n", len(plan.Sample.Artists))
	for _, a := range plan.Sample.Artists {
		fmt.Printf("    %-30s score %.2f weight %.2f albums %d\n",
			a.Name, a.MatchScore, a.Weight, len(a.Albums))
	}
	fmt.Printf("  albums: %d\n", len(plan.Sample.Albums))
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	planCmd.Flags().StringVar(&flagLibrary, "library", "", "path to library snapshot YAML (required)")
	planCmd.Flags().StringVar(&flagSettings, "settings", "", "path to settings YAML")
	planCmd.Flags().BoolVar(&flagJSON, "json", false, "print the full plan as JSON")
	_ = planCmd.MarkFlagRequired("library")

	rootCmd.AddCommand(planCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/semantic"
	"github.com/c360studio/formroute/source"
)

func analyzeCmd() *cobra.Command {
	var (
		configPath string
		input      string
		asJSON     bool
		useMapper  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze how well a data source maps onto the semantic keys",
		Long: `Analyze inspects the first record of an export and reports which semantic
keys can be resolved from its field names, with a confidence score per key
and an overall readiness verdict. Run this before wiring a new form
revision into automated processing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			return runAnalyze(cmd.Context(), configPath, input, asJSON, useMapper)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file to sample")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the analysis as JSON")
	cmd.Flags().BoolVar(&useMapper, "mapper", false, "Consult the external mapping service for unresolved keys")

	return cmd
}

func runAnalyze(ctx context.Context, configPath, input string, asJSON, useMapper bool) error {
	cfg, err := loadEngineConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	res, _, err := buildEngine(ctx, cfg, useMapper)
	if err != nil {
		return err
	}

	records, err := source.NewReader().Read(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", input)
	}

	var analysis *resolver.Analysis
	if useMapper {
		analysis = res.AnalyzeWithMapper(ctx, records[0])
	} else {
		analysis = res.Analyze(records[0])
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printAnalysis(analysis)
	return nil
}

func printAnalysis(a *resolver.Analysis) {
	fmt.Printf("Fields in sample: %d\n", len(a.AvailableFields))
	fmt.Printf("Keys mapped:      %d/%d\n", a.Mapped, a.TotalKeys)
	fmt.Printf("Important keys:   %d/%d\n", a.ImportantFound, len(semantic.ImportantKeys()))
	fmt.Printf("Confidence:       %.2f\n", a.Confidence)
	if a.MapperEnhanced {
		fmt.Println("Mapping service filled in keys fuzzy matching missed.")
	}
	if a.ReadyForProduction {
		fmt.Println("Verdict:          ready for production")
	} else {
		fmt.Println("Verdict:          NOT ready, review the suggestions below")
	}

	if len(a.Suggestions) == 0 {
		return
	}

	keys := make([]semantic.Key, 0, len(a.Suggestions))
	for key := range a.Suggestions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	fmt.Println("\nSuggested mappings:")
	for _, key := range keys {
		fmt.Printf("  %-28s %-40q %.2f\n", key, a.Suggestions[key], a.ConfidenceScores[key])
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/mapper"
	_ "github.com/c360studio/formroute/mapper/providers"
	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/rules"
	"github.com/c360studio/formroute/source"
)

// loadEngineConfig loads the engine configuration. An explicit path wins;
// otherwise the layered loader applies user and project overrides.
func loadEngineConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(slog.Default()).Load()
}

// buildEngine constructs the resolver and rule engine, optionally with the
// external mapping service enabled.
func buildEngine(ctx context.Context, cfg *config.Config, useMapper bool) (*resolver.Resolver, *rules.Engine, error) {
	opts := []resolver.Option{resolver.WithLogger(slog.Default())}
	useMapper = useMapper && cfg.Mapper.Enabled
	if useMapper {
		client, err := mapper.New(cfg.Mapper,
			mapper.WithLogger(slog.Default()),
			mapper.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
		if err != nil {
			return nil, nil, fmt.Errorf("create mapping client: %w", err)
		}
		opts = append(opts, resolver.WithMapper(client))
	}

	res := resolver.New(cfg, opts...)
	var fr rules.FieldResolver = res
	if useMapper {
		fr = res.WithMapperContext(ctx)
	}
	return res, rules.New(cfg, fr, rules.WithLogger(slog.Default())), nil
}

func assignCmd() *cobra.Command {
	var (
		configPath string
		inputs     []string
		asJSON     bool
		useMapper  bool
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign templates to records from CSV or JSONL exports",
		Long: `Assign reads exported survey records, resolves their fields against the
semantic key set, and prints the template assignment decision for each
record. Records missing an email address or a name are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 {
				return fmt.Errorf("at least one --input pattern is required")
			}
			return runAssign(cmd.Context(), configPath, inputs, asJSON, useMapper)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Input file or glob pattern (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit one JSON decision per line")
	cmd.Flags().BoolVar(&useMapper, "mapper", false, "Consult the external mapping service for unresolved fields")

	return cmd
}

func runAssign(ctx context.Context, configPath string, inputs []string, asJSON, useMapper bool) error {
	cfg, err := loadEngineConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	_, engine, err := buildEngine(ctx, cfg, useMapper)
	if err != nil {
		return err
	}

	paths, err := source.Expand(inputs)
	if err != nil {
		return fmt.Errorf("expand inputs: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %v", inputs)
	}

	reader := source.NewReader(source.WithLogger(slog.Default()))
	enc := json.NewEncoder(os.Stdout)

	var processed, assigned, skipped int
	for _, path := range paths {
		records, err := reader.Read(path)
		if err != nil {
			slog.Error("Failed to read input", "path", path, "error", err)
			continue
		}

		for _, rec := range records {
			processed++

			if !engine.ShouldProcess(rec) {
				skipped++
				if asJSON {
					summary := engine.Summarize(rec, nil)
					if err := enc.Encode(summary); err != nil {
						return err
					}
				}
				continue
			}

			assignments := engine.Assign(rec)
			summary := engine.Summarize(rec, assignments)
			assigned++

			if asJSON {
				if err := enc.Encode(summary); err != nil {
					return err
				}
				continue
			}

			printSummary(summary)
		}
	}

	if !asJSON {
		fmt.Printf("\n%d records processed, %d assigned, %d skipped\n", processed, assigned, skipped)
	}
	return nil
}

func printSummary(s rules.Summary) {
	fmt.Printf("%s <%s>", s.Name, s.Email)
	if s.Location != "" {
		fmt.Printf(" [%s]", s.Location)
	}
	fmt.Println()
	if len(s.Templates) == 0 {
		fmt.Println("  no templates")
		return
	}
	for i, tmpl := range s.Templates {
		reason := ""
		if i < len(s.Reasons) {
			reason = s.Reasons[i]
		}
		fmt.Printf("  %-30s %s\n", tmpl, reason)
	}
}

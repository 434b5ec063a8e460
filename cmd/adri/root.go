package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"adri/adapters/csvfile"
	"adri/adapters/excel"
	"adri/domain/assessment"
	"adri/domain/dataset"
	"adri/domain/standard"
	"adri/internal/audit"
	"adri/internal/bundled"
	"adri/internal/config"
	"adri/internal/engine"
	"adri/internal/generation"
	"adri/ports"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "adri",
		Short:        "Assess tabular data quality against standards",
		Long:         "adri scores datasets across validity, completeness, consistency, freshness and plausibility, and gates execution on the result.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newAssessCmd(),
		newGenerateCmd(),
		newShowStandardCmd(),
		newListStandardsCmd(),
		newViewLogsCmd(),
	)
	return root
}

// loadDataset picks the ingestion adapter from the file extension
func loadDataset(path string) (*dataset.Dataset, error) {
	var reader ports.DatasetReader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		reader = csvfile.NewReader(path)
	case ".tsv":
		reader = csvfile.NewDelimitedReader(path, '\t')
	case ".xlsx", ".xlsm":
		reader = excel.NewReader(path, "")
	default:
		return nil, fmt.Errorf("unsupported data file type: %s", path)
	}
	return reader.Read()
}

// resolveStandard accepts a file path, a bundled name, or a contract
// name resolved through the configuration.
func resolveStandard(ref string) (*standard.Standard, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return standard.LoadFile(ref)
	}
	loader := bundled.NewLoader()
	if loader.Exists(ref) {
		return loader.Load(ref)
	}
	cfg, err := config.LoadOrDefault("")
	if err != nil {
		return nil, err
	}
	return standard.LoadFile(config.NewResolver(cfg).Resolve(ref, "").Path)
}

func newAssessCmd() *cobra.Command {
	var dataPath, standardRef string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a dataset against a standard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(dataPath)
			if err != nil {
				return err
			}
			std, err := resolveStandard(standardRef)
			if err != nil {
				return err
			}
			result, err := engine.New().Assess(ds, std)
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				printReport(cmd, result, std)
			}

			if !result.Passed {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "data file to assess (.csv, .tsv, .xlsx)")
	cmd.Flags().StringVar(&standardRef, "standard", "", "standard file path, bundled name, or contract name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full assessment as JSON")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("standard")
	return cmd
}

func printReport(cmd *cobra.Command, result *assessment.AssessmentResult, std *standard.Standard) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, result.Summary())
	for _, dim := range standard.Dimensions {
		score, found := result.DimensionScoreValue(dim)
		if !found {
			continue
		}
		minimum := std.Requirements.DimensionRequirements[dim].MinimumScore
		marker := ""
		if score < minimum {
			marker = "  (below minimum)"
		}
		fmt.Fprintf(w, "  %-13s %5.1f/20%s\n", dim, score, marker)
	}
	if top := result.TopFailures(3); len(top) > 0 {
		fmt.Fprintln(w, "Top issues:")
		for _, f := range top {
			fmt.Fprintf(w, "  - %s: %s on %d rows (%.1f%%)\n", f.FieldName, f.IssueType, f.AffectedRows, f.AffectedPercentage)
		}
	}
}

func newGenerateCmd() *cobra.Command {
	var dataPath, output, name string
	var minimum float64

	cmd := &cobra.Command{
		Use:   "generate-standard",
		Short: "Infer a standard from training data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(dataPath)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
			}
			opts := generation.DefaultOptions(name)
			if minimum > 0 {
				opts.OverallMinimum = minimum
			}
			std, err := generation.NewGenerator(opts).Generate(ds)
			if err != nil {
				return err
			}
			if output == "" {
				cfg, err := config.LoadOrDefault("")
				if err != nil {
					return err
				}
				output = cfg.StandardPath(name)
			}
			if err := generation.WriteStandard(output, std); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Standard %s written to %s (%d fields, %d training rows)\n",
				std.Standards.ID, output, len(std.Requirements.FieldRequirements), ds.RowCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "training data file")
	cmd.Flags().StringVar(&output, "output", "", "output path (defaults to the configured standards directory)")
	cmd.Flags().StringVar(&name, "name", "", "standard name (defaults to the data file stem)")
	cmd.Flags().Float64Var(&minimum, "minimum", 0, "overall minimum score (default 75)")
	cmd.MarkFlagRequired("data")
	return cmd
}

func newShowStandardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-standard <name-or-path>",
		Short: "Print a standard's requirements as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			std, err := resolveStandard(args[0])
			if err != nil {
				return err
			}
			data, err := std.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newListStandardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-standards",
		Short: "List the standards bundled with the binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := bundled.NewLoader()
			names, err := loader.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				meta, err := loader.Metadata(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s (v%s)\n", name, meta.Name, meta.Version)
			}
			return nil
		},
	}
}

func newViewLogsCmd() *cobra.Command {
	var dir string
	var limit int
	var showFailures bool

	cmd := &cobra.Command{
		Use:   "view-logs",
		Short: "Show recent audit records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := config.LoadOrDefault("")
				if err != nil {
					return err
				}
				dir = cfg.Paths.AuditLogs
			}
			logger, err := audit.NewLogger(dir)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if showFailures {
				records, err := logger.ReadFailures()
				if err != nil {
					return err
				}
				records = tail(records, limit)
				for _, r := range records {
					fmt.Fprintf(w, "%s  %-20s %-18s %d rows (%.1f%%)\n",
						r.Timestamp.Format("2006-01-02 15:04:05"), r.FieldName, r.IssueType, r.AffectedRows, r.AffectedPercentage)
				}
				return nil
			}

			records, err := logger.ReadAssessments()
			if err != nil {
				return err
			}
			records = tail(records, limit)
			for _, r := range records {
				fmt.Fprintf(w, "%s  %-28s %6.1f/%.0f  %-15s %s\n",
					r.Timestamp.Format("2006-01-02 15:04:05"), r.StandardID, r.OverallScore, r.RequiredScore,
					r.ExecutionDecision, r.FunctionName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "audit log directory (defaults to the configured path)")
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many records")
	cmd.Flags().BoolVar(&showFailures, "failures", false, "show failed validations instead of assessments")
	return cmd
}

func tail[T any](records []T, n int) []T {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

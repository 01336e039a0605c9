package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archlens/archlens/internal/cache"
	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/internal/layout"
	"github.com/archlens/archlens/internal/logging"
	"github.com/archlens/archlens/internal/pipeline"
	"github.com/archlens/archlens/internal/render"
	"github.com/archlens/archlens/pkg/types"
)

var (
	configPath     string
	outputDir      string
	outputName     string
	formats        []string
	jsonOutput     bool
	optimizeLayout bool
)

var analyzeCmd = &cobra.Command{
	Use:          "analyze <directory>",
	Short:        "Analyze a repository and render its architecture",
	Long:         "Analyze a repository's inter-module dependencies and render the detected\narchitecture.\n\nSupported languages: TypeScript, JavaScript, Python, Go, Java.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}

		cfg, err := config.Load(dir, configPath)
		if err != nil {
			return err
		}
		if outputDir != "" {
			cfg.Output.Directory = outputDir
		}
		if outputName != "" {
			cfg.Output.Filename = outputName
		}
		if len(formats) > 0 {
			cfg.Output.Formats = formats
		}

		progress := pipeline.NewProgress(os.Stderr)
		defer progress.Done()

		p, err := pipeline.New(cfg, progress.Step)
		if err != nil {
			return err
		}

		result, err := p.Run(dir)
		if err != nil {
			return err
		}
		progress.Done()

		if jsonOutput {
			return render.JSON(cmd.OutOrStdout(), result)
		}

		render.Summary(cmd.OutOrStdout(), result)

		if err := writeOutputs(cmd, cfg, result); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&configPath, "config", "", "path to .archlens.yml project config file")
	analyzeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	analyzeCmd.Flags().StringVar(&outputName, "name", "", "output base filename (overrides config)")
	analyzeCmd.Flags().StringSliceVar(&formats, "format", nil, "output formats: drawio, mermaid, html, json (overrides config)")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the analysis result as JSON instead of rendering")
	analyzeCmd.Flags().BoolVar(&optimizeLayout, "optimize-layout", false, "apply the barycenter crossing-minimization pass")
	rootCmd.AddCommand(analyzeCmd)
}

// writeOutputs renders each requested format into the output directory.
// The draw.io output is skipped when it matches the cached previous
// emission after normalization.
func writeOutputs(cmd *cobra.Command, cfg *config.ProjectConfig, result *types.AnalysisResult) error {
	diagram := layout.Plan(result, layout.Options{MinimizeCrossings: optimizeLayout})

	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, format := range cfg.Output.Formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "drawio":
			if err := writeDrawIO(cmd, cfg, result, diagram); err != nil {
				return err
			}
		case "mermaid":
			path := outputPath(cfg, "mmd")
			if err := writeFile(path, func(f *os.File) error { return render.Mermaid(f, result) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nMermaid chart: %s\n", path)
		case "html":
			path := outputPath(cfg, "html")
			if err := writeFile(path, func(f *os.File) error { return render.HTML(f, result) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nHTML dashboard: %s\n", path)
		case "json":
			path := outputPath(cfg, "json")
			if err := writeFile(path, func(f *os.File) error { return render.JSON(f, result) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nJSON result: %s\n", path)
		default:
			logging.Logger().Warnf("unknown output format %q", format)
		}
	}
	return nil
}

// writeDrawIO emits the draw.io XML unless it is unchanged from the
// cached previous emission.
func writeDrawIO(cmd *cobra.Command, cfg *config.ProjectConfig, result *types.AnalysisResult, diagram *layout.Diagram) error {
	var sb strings.Builder
	if err := render.DrawIO(&sb, result, diagram); err != nil {
		return err
	}
	xml := sb.String()

	c := cache.New(cfg.Output.Directory)
	path := outputPath(cfg, "drawio")

	if prev := c.Load(); prev != "" && !cache.Changed(prev, xml) {
		fmt.Fprintf(cmd.OutOrStdout(), "\nDiagram unchanged: %s\n", path)
		return nil
	}

	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	if err := c.Store(xml); err != nil {
		logging.Logger().Debugf("cache store failed: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nDiagram: %s\n", path)
	return nil
}

func outputPath(cfg *config.ProjectConfig, ext string) string {
	return filepath.Join(cfg.Output.Directory, cfg.Output.Filename+"."+ext)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}

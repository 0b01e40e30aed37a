// Command analyzer runs the second pipeline stage: it reads the
// cleaned dataset, prints the sales analysis, renders the dashboard
// and writes the machine-readable insights file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"salespipe/internal/app"
	"salespipe/internal/chart"
	"salespipe/internal/dataprocessing"
	apperrors "salespipe/internal/errors"
)

func main() {
	input := flag.String("input", "", "cleaned dataset to analyze (defaults to data/cleaned_tax_data.csv next to the executable)")
	configFile := flag.String("config", "", "path to config.yaml (defaults to the standard search locations)")
	flag.Parse()

	fmt.Println("=== Sales Data Analyzer ===")
	fmt.Println("This script analyzes cleaned sales data and generates insights.")
	fmt.Println()

	stage, err := app.Bootstrap("analyzer", *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Analysis failed: %v\n", err)
		os.Exit(1)
	}

	err = run(stage, *input)
	stage.Shutdown(context.Background())
	if err != nil {
		fmt.Printf("❌ Analysis failed: %v\n", err)
		if hint := apperrors.Hint(err); hint != "" {
			fmt.Printf("💡 Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(stage *app.Stage, inputFlag string) error {
	ctx := context.Background()

	// The analyzer reads what the cleaner wrote, so the output override
	// applies here too. Flag beats config file beats the well-known path.
	inputPath := stage.Config.ResolveOutput(stage.Paths)
	if inputFlag != "" {
		inputPath = inputFlag
	}

	return stage.RunStage(ctx, "analyze_data", func(ctx context.Context) error {
		renderer := chart.NewRenderer(chart.RenderConfig{
			Width:  stage.Config.Chart.Width,
			Height: stage.Config.Chart.Height,
			Title:  stage.Config.Chart.Title,
		}, stage.Logger)

		analyzer, err := dataprocessing.NewAnalyzer(dataprocessing.AnalyzerConfig{
			Paths:    stage.Paths,
			Logger:   stage.Logger,
			Metrics:  stage.Metrics,
			Renderer: renderer,
		})
		if err != nil {
			return err
		}

		report, err := analyzer.AnalyzeFile(ctx, inputPath, os.Stdout)
		if err != nil {
			return err
		}

		if report.ChartPath != "" {
			fmt.Printf("\n🎉 Analysis complete! Check '%s' for charts.\n", filepath.Base(report.ChartPath))
		} else {
			fmt.Println("\n🎉 Analysis complete!")
		}
		return nil
	})
}

// Command cleaner runs the first pipeline stage: it repairs, filters
// and enriches the raw sales feed, then writes the tax-ready dataset
// consumed by the analyzer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"salespipe/internal/app"
	"salespipe/internal/dataprocessing"
	apperrors "salespipe/internal/errors"
	"salespipe/internal/sample"
	"salespipe/pkg/contracts/domain"
)

func main() {
	input := flag.String("input", "", "raw sales file to clean, .csv or .xlsx (defaults to data/sample_sales_data.csv next to the executable)")
	output := flag.String("output", "", "destination for the cleaned dataset (defaults to data/cleaned_tax_data.csv)")
	configFile := flag.String("config", "", "path to config.yaml (defaults to the standard search locations)")
	genSample := flag.Bool("sample", false, "generate the demonstration dataset before cleaning")
	flag.Parse()

	fmt.Println("=== Sales Data Cleaning Pipeline ===")
	fmt.Println("This script demonstrates ETL processes for financial data transformation.")
	fmt.Println()

	stage, err := app.Bootstrap("cleaner", *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Pipeline failed: %v\n", err)
		os.Exit(1)
	}

	err = run(stage, *input, *output, *genSample)
	stage.Shutdown(context.Background())
	if err != nil {
		fmt.Printf("❌ Pipeline failed: %v\n", err)
		if hint := apperrors.Hint(err); hint != "" {
			fmt.Printf("💡 Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(stage *app.Stage, inputFlag, outputFlag string, generateSample bool) error {
	ctx := context.Background()

	if generateSample {
		generator, err := sample.NewGenerator(stage.Paths, stage.Logger)
		if err != nil {
			return err
		}
		if _, err := generator.Generate(ctx); err != nil {
			return fmt.Errorf("failed to generate sample data: %w", err)
		}
	}

	// Flag beats config file beats the well-known path.
	inputPath := stage.Config.ResolveInput(stage.Paths)
	if inputFlag != "" {
		inputPath = inputFlag
	}
	outputPath := stage.Config.ResolveOutput(stage.Paths)
	if outputFlag != "" {
		outputPath = outputFlag
	}

	return stage.RunStage(ctx, "clean_data", func(ctx context.Context) error {
		cleaner, err := dataprocessing.NewCleaner(dataprocessing.CleanerConfig{
			Paths:          stage.Paths,
			BackupPrevious: stage.Config.Pipeline.BackupPrevious,
			Logger:         stage.Logger,
			Metrics:        stage.Metrics,
		})
		if err != nil {
			return err
		}

		result, err := cleaner.CleanFile(ctx, inputPath, outputPath)
		if err != nil {
			return err
		}

		printRawSample(os.Stdout, result.RawSample)
		cleaner.WriteSummary(os.Stdout, result)

		fmt.Println("\n🎉 Pipeline completed successfully!")
		printCleanedSample(os.Stdout, result.Transactions)
		return nil
	})
}

// printRawSample echoes the first input rows exactly as they arrived.
func printRawSample(w io.Writer, records []domain.RawRecord) {
	if len(records) == 0 {
		return
	}

	fmt.Fprintln(w, "\n=== ORIGINAL DATA SAMPLE ===")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "transaction_id\ttransaction_date\tproduct_id\tproduct_name\tsales_amount\tstate\tcustomer_id")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.TransactionID, r.TransactionDate, r.ProductID, r.ProductName,
			r.SalesAmount, r.State, r.CustomerID)
	}
	tw.Flush()
}

// printCleanedSample shows the tax-relevant columns of the first
// cleaned rows.
func printCleanedSample(w io.Writer, transactions []domain.Transaction) {
	fmt.Fprintln(w, "\n=== CLEANED DATA SAMPLE ===")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "transaction_date\tproduct_category\tstate\tsales_amount\ttax_jurisdiction")
	for i, tx := range transactions {
		if i == 5 {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.TransactionDate.Format(domain.DateLayout),
			tx.ProductCategory,
			tx.State,
			tx.SalesAmount.StringFixed(2),
			tx.TaxJurisdiction)
	}
	tw.Flush()
}

package chart

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespipe/internal/errors"
	"salespipe/pkg/contracts/domain"
)

func testRenderConfig() RenderConfig {
	return RenderConfig{Width: 800, Height: 600, Title: "Sales Data Analysis Dashboard"}
}

func chartTransaction(t *testing.T, id int64, date, product, amount, state string) domain.Transaction {
	t.Helper()

	day, err := time.Parse(domain.DateLayout, date)
	require.NoError(t, err)

	category := domain.CategorizeProduct(product)
	return domain.Transaction{
		TransactionID:      id,
		TransactionDate:    day,
		ProductID:          product,
		ProductName:        "Item",
		SalesAmount:        decimal.RequireFromString(amount),
		State:              state,
		CustomerID:         id + 100,
		TransactionMonth:   domain.MonthBucket(day),
		TransactionQuarter: domain.QuarterOf(day),
		ProductCategory:    category,
		TaxJurisdiction:    domain.JurisdictionFor(state, category),
	}
}

func chartSampleTransactions(t *testing.T) []domain.Transaction {
	t.Helper()

	return []domain.Transaction{
		chartTransaction(t, 1001, "2024-01-15", "ELE-1001", "799.99", "CA"),
		chartTransaction(t, 1002, "2024-01-15", "CLO-2001", "29.99", "NY"),
		chartTransaction(t, 1003, "2024-01-16", "ELE-1002", "1299.99", "TX"),
		chartTransaction(t, 1004, "2024-01-17", "GRO-3001", "5.99", "CA"),
		chartTransaction(t, 1005, "2024-01-18", "ELE-1001", "799.99", "AZ"),
		chartTransaction(t, 1006, "2024-01-18", "OTHER-999", "15.50", "NY"),
		chartTransaction(t, 1007, "2024-01-19", "ELE-1003", "459.99", "CA"),
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	renderer := NewRenderer(RenderConfig{}, nil)

	assert.Equal(t, 1600, renderer.config.Width)
	assert.Equal(t, 1200, renderer.config.Height)
	assert.Equal(t, "Sales Data Analysis Dashboard", renderer.config.Title)
	assert.NotNil(t, renderer.logger)
}

func TestRenderer_RenderDashboard(t *testing.T) {
	renderer := NewRenderer(testRenderConfig(), nil)
	outputPath := filepath.Join(t.TempDir(), "sales_analysis_dashboard.png")

	err := renderer.RenderDashboard(context.Background(), chartSampleTransactions(t), outputPath)
	require.NoError(t, err)

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Width)
	assert.Equal(t, 600, img.Height)
}

func TestRenderer_RenderDashboard_SingleTransaction(t *testing.T) {
	// One row means a single pie slice, single bars and a one-point
	// trend line; none of the panels may fail on the degenerate ranges.
	renderer := NewRenderer(testRenderConfig(), nil)
	outputPath := filepath.Join(t.TempDir(), "dashboard.png")

	transactions := []domain.Transaction{
		chartTransaction(t, 1001, "2024-01-15", "ELE-1001", "799.99", "CA"),
	}

	err := renderer.RenderDashboard(context.Background(), transactions, outputPath)
	require.NoError(t, err)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderer_RenderDashboard_NoTransactions(t *testing.T) {
	renderer := NewRenderer(testRenderConfig(), nil)
	outputPath := filepath.Join(t.TempDir(), "dashboard.png")

	err := renderer.RenderDashboard(context.Background(), nil, outputPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transactions to chart")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeRender, appErr.Type)

	assert.NoFileExists(t, outputPath)
}

func TestRenderer_RenderDashboard_CreatesOutputDirectory(t *testing.T) {
	renderer := NewRenderer(testRenderConfig(), nil)
	outputPath := filepath.Join(t.TempDir(), "reports", "nested", "dashboard.png")

	err := renderer.RenderDashboard(context.Background(), chartSampleTransactions(t), outputPath)
	require.NoError(t, err)
	assert.FileExists(t, outputPath)
}

func TestCategoryTotals(t *testing.T) {
	entries := categoryTotals(chartSampleTransactions(t))

	require.Len(t, entries, 4)
	// Ascending by category name, matching the pie legend order.
	assert.Equal(t, "CLOTHING", entries[0].label)
	assert.Equal(t, "ELECTRONICS", entries[1].label)
	assert.Equal(t, "GROCERIES", entries[2].label)
	assert.Equal(t, "OTHER", entries[3].label)
	assert.InDelta(t, 3359.96, entries[1].value, 0.001)
}

func TestStateTotals(t *testing.T) {
	entries := stateTotals(chartSampleTransactions(t))

	require.Len(t, entries, 4)
	assert.Equal(t, "TX", entries[0].label)
	assert.InDelta(t, 1299.99, entries[0].value, 0.001)
	assert.Equal(t, "CA", entries[1].label)
	assert.InDelta(t, 1265.97, entries[1].value, 0.001)
	assert.Equal(t, "AZ", entries[2].label)
	assert.Equal(t, "NY", entries[3].label)
}

func TestCategoryMeans(t *testing.T) {
	entries := categoryMeans(chartSampleTransactions(t))

	require.Len(t, entries, 4)
	assert.Equal(t, "ELECTRONICS", entries[0].label)
	assert.InDelta(t, 839.99, entries[0].value, 0.001)
	assert.Equal(t, "CLOTHING", entries[1].label)
	assert.InDelta(t, 29.99, entries[1].value, 0.001)
	assert.Equal(t, "OTHER", entries[2].label)
	assert.Equal(t, "GROCERIES", entries[3].label)
	assert.InDelta(t, 5.99, entries[3].value, 0.001)
}

func TestDailyTotals(t *testing.T) {
	days, values := dailyTotals(chartSampleTransactions(t))

	require.Len(t, days, 5)
	require.Len(t, values, 5)
	assert.Equal(t, "2024-01-15", days[0].Format(domain.DateLayout))
	assert.InDelta(t, 829.98, values[0], 0.001)
	assert.Equal(t, "2024-01-16", days[1].Format(domain.DateLayout))
	assert.InDelta(t, 1299.99, values[1], 0.001)
	assert.Equal(t, "2024-01-19", days[4].Format(domain.DateLayout))
	assert.InDelta(t, 459.99, values[4], 0.001)
}

func TestPaddedMax(t *testing.T) {
	assert.InDelta(t, 1100.0, paddedMax(1000), 0.001)
	assert.Equal(t, 1.0, paddedMax(0))
	assert.Equal(t, 1.0, paddedMax(0.5))
}

package validation

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespipe/internal/errors"
	"salespipe/pkg/contracts/domain"
)

func validTransaction() domain.Transaction {
	return domain.Transaction{
		TransactionID:      1001,
		TransactionDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		ProductID:          "ELE-1001",
		ProductName:        "Smartphone",
		SalesAmount:        decimal.NewFromFloat(799.99),
		State:              "CA",
		CustomerID:         201,
		TransactionMonth:   "2024-01",
		TransactionQuarter: 1,
		ProductCategory:    domain.CategoryElectronics,
		TaxJurisdiction:    domain.JurisdictionStandard,
	}
}

func TestRecordValidator_ValidTransaction(t *testing.T) {
	rv := NewRecordValidator(slog.Default())

	tx := validTransaction()
	assert.NoError(t, rv.ValidateTransaction(&tx))
}

func TestRecordValidator_InvalidTransactions(t *testing.T) {
	rv := NewRecordValidator(slog.Default())

	tests := []struct {
		name      string
		mutate    func(tx *domain.Transaction)
		wantInMsg string
	}{
		{
			name:      "missing state",
			mutate:    func(tx *domain.Transaction) { tx.State = "" },
			wantInMsg: "state is required",
		},
		{
			name:      "zero date",
			mutate:    func(tx *domain.Transaction) { tx.TransactionDate = time.Time{} },
			wantInMsg: "transaction_date is required",
		},
		{
			name:      "bad month bucket",
			mutate:    func(tx *domain.Transaction) { tx.TransactionMonth = "January 2024" },
			wantInMsg: "transaction_month must be a YYYY-MM month",
		},
		{
			name:      "quarter out of range",
			mutate:    func(tx *domain.Transaction) { tx.TransactionQuarter = 5 },
			wantInMsg: "transaction_quarter must be at most 4",
		},
		{
			name:      "unknown category",
			mutate:    func(tx *domain.Transaction) { tx.ProductCategory = "GADGETS" },
			wantInMsg: "product_category must be a known product category",
		},
		{
			name:      "unknown jurisdiction",
			mutate:    func(tx *domain.Transaction) { tx.TaxJurisdiction = "FULL_RATE" },
			wantInMsg: "tax_jurisdiction must be a known tax jurisdiction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)

			err := rv.ValidateTransaction(&tx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantInMsg)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
			assert.Contains(t, appErr.Context, "fields")
		})
	}
}

func TestRecordValidator_MultipleFailures(t *testing.T) {
	rv := NewRecordValidator(slog.Default())

	tx := validTransaction()
	tx.State = ""
	tx.TransactionMonth = "bad"

	err := rv.ValidateTransaction(&tx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state is required")
	assert.Contains(t, err.Error(), "transaction_month must be a YYYY-MM month")
}

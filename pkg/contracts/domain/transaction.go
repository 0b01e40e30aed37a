package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one row of the raw sales feed exactly as read from the
// source file. Every field is kept as text so that repair and drop
// decisions happen in the cleaning steps, not during parsing.
type RawRecord struct {
	TransactionID   string `json:"transaction_id"`
	TransactionDate string `json:"transaction_date"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	SalesAmount     string `json:"sales_amount"`
	State           string `json:"state"`
	CustomerID      string `json:"customer_id"`
}

// Key returns the exact-duplicate identity of the row: all seven raw
// fields. Two rows with the same key collapse to one during cleaning.
func (r RawRecord) Key() string {
	return strings.Join([]string{
		r.TransactionID,
		r.TransactionDate,
		r.ProductID,
		r.ProductName,
		r.SalesAmount,
		r.State,
		r.CustomerID,
	}, "\x1f")
}

// Transaction represents a cleaned sales transaction ready for tax
// reporting and analysis
type Transaction struct {
	TransactionID      int64           `json:"transaction_id" csv:"transaction_id" validate:"required"`
	TransactionDate    time.Time       `json:"transaction_date" csv:"transaction_date" validate:"required"`
	ProductID          string          `json:"product_id" csv:"product_id"`
	ProductName        string          `json:"product_name" csv:"product_name"`
	SalesAmount        decimal.Decimal `json:"sales_amount" csv:"sales_amount"`
	State              string          `json:"state" csv:"state" validate:"required"`
	CustomerID         int64           `json:"customer_id" csv:"customer_id"`
	TransactionMonth   string          `json:"transaction_month" csv:"transaction_month" validate:"required,month_bucket"`
	TransactionQuarter int             `json:"transaction_quarter" csv:"transaction_quarter" validate:"required,min=1,max=4"`
	ProductCategory    ProductCategory `json:"product_category" csv:"product_category" validate:"required,product_category"`
	TaxJurisdiction    TaxJurisdiction `json:"tax_jurisdiction" csv:"tax_jurisdiction" validate:"required,tax_jurisdiction"`
}

// ProductCategory is the coarse product classification used for tax
// reporting, derived from the product id prefix
type ProductCategory string

const (
	CategoryElectronics   ProductCategory = "ELECTRONICS"
	CategoryClothing      ProductCategory = "CLOTHING"
	CategoryGroceries     ProductCategory = "GROCERIES"
	CategoryOther         ProductCategory = "OTHER"
	CategoryUncategorized ProductCategory = "UNCATEGORIZED"
)

// TaxJurisdiction is the coarse tax bucket assigned per transaction
type TaxJurisdiction string

const (
	JurisdictionStandard      TaxJurisdiction = "STANDARD"
	JurisdictionGroceryExempt TaxJurisdiction = "GROCERY_EXEMPT"
	JurisdictionReducedRate   TaxJurisdiction = "REDUCED_RATE"
)

// standardRateStates are the states that collect the standard rate on
// non-grocery sales.
var standardRateStates = map[string]bool{
	"CA": true,
	"NY": true,
	"TX": true,
}

// CategorizeProduct maps a product id to its category by prefix,
// case-insensitive, first match wins. An absent id is UNCATEGORIZED;
// any unrecognized prefix is OTHER.
func CategorizeProduct(productID string) ProductCategory {
	if productID == "" {
		return CategoryUncategorized
	}
	upper := strings.ToUpper(productID)
	switch {
	case strings.HasPrefix(upper, "ELE"):
		return CategoryElectronics
	case strings.HasPrefix(upper, "CLO"):
		return CategoryClothing
	case strings.HasPrefix(upper, "GRO"):
		return CategoryGroceries
	default:
		return CategoryOther
	}
}

// JurisdictionFor assigns the tax jurisdiction for a (state, category)
// pair. Groceries are exempt everywhere; CA, NY and TX collect the
// standard rate on everything else; all remaining combinations fall to
// the reduced rate.
func JurisdictionFor(state string, category ProductCategory) TaxJurisdiction {
	if standardRateStates[state] && category != CategoryGroceries {
		return JurisdictionStandard
	}
	if category == CategoryGroceries {
		return JurisdictionGroceryExempt
	}
	return JurisdictionReducedRate
}

// MonthBucket formats the calendar month bucket of a date as YYYY-MM.
func MonthBucket(t time.Time) string {
	return t.Format("2006-01")
}

// QuarterOf returns the calendar quarter (1-4) of a date.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// RawColumns is the required header of the raw sales feed, in order.
var RawColumns = []string{
	"transaction_id",
	"transaction_date",
	"product_id",
	"product_name",
	"sales_amount",
	"state",
	"customer_id",
}

// CleanedColumns is the header of the cleaned dataset: the raw columns
// followed by the four derived ones, in order.
var CleanedColumns = []string{
	"transaction_id",
	"transaction_date",
	"product_id",
	"product_name",
	"sales_amount",
	"state",
	"customer_id",
	"transaction_month",
	"transaction_quarter",
	"product_category",
	"tax_jurisdiction",
}

// DateLayout is the canonical date format of the cleaned dataset.
const DateLayout = "2006-01-02"

// UnknownState is substituted for a missing state during cleaning.
const UnknownState = "UNKNOWN"

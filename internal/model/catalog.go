package model

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultLocationCode is used when a warehouse code is too short to derive a shelf.
const DefaultLocationCode = "130101"

// LocationCodeFor derives the default shelf of a warehouse: "<wh>01".
func LocationCodeFor(wh string) string {
	if len(wh) >= 4 {
		return wh + "01"
	}
	return DefaultLocationCode
}

// CodeName is a lookup row (warehouse, location, customer).
type CodeName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Category groups in-stock products.
type Category struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

// Product is an in-stock item at a warehouse location.
type Product struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	UnitCode   string          `json:"unit_code"`
	Category   string          `json:"category"`
	Barcode    string          `json:"barcode,omitempty"`
	Price      decimal.Decimal `json:"price"`
	BalanceQty decimal.Decimal `json:"balance_qty"`
	ImageURL   string          `json:"url_image"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	WhCode   string
	Location string
	Category string
	Search   string
	Limit    int
	Offset   int
}

// AnalysisRow is one item of the daily stock/sales snapshot.
type AnalysisRow struct {
	DocDate           string          `json:"doc_date"`
	ItemCode          string          `json:"item_code"`
	ItemName          string          `json:"item_name"`
	UnitCode          string          `json:"unit_code"`
	BalanceQtyStart   decimal.Decimal `json:"balance_qty_start"`
	SaleQty           decimal.Decimal `json:"sale_qty"`
	BalanceQty        decimal.Decimal `json:"balance_qty"`
	BalanceQtyCompare decimal.Decimal `json:"balance_qty_compare"`
}

// AnalysisQuery selects the snapshot date, the two warehouses compared and the page.
type AnalysisQuery struct {
	DocDate       string
	UserWhCode    string
	CompareWhCode string
	Limit         int
	Offset        int
}

// Defaults for the analysis snapshot.
const (
	DefaultUserWhCode    = "1301"
	DefaultCompareWhCode = "1302"
)

package model

import "github.com/shopspring/decimal"

// DefaultSaleUser is recorded as the seller when a sale names no user.
const DefaultSaleUser = "SYSTEM"

// NewSale is the input for a POS checkout.
type NewSale struct {
	DocNo        string          `json:"doc_no"`
	DocDate      string          `json:"doc_date"`
	CustomerCode string          `json:"customer_code"`
	UserCode     string          `json:"user_code"`
	WhCode       string          `json:"wh_code"`
	ShelfCode    string          `json:"shelf_code"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []SaleLine      `json:"items"`
}

// SaleLine is one cart line.
type SaleLine struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	UnitCode string          `json:"unit_code"`
	Qty      decimal.Decimal `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// Normalize fills derived amounts: a zero line amount becomes qty*price and a
// zero total becomes the sum of line amounts.
func (s *NewSale) Normalize() {
	total := decimal.Zero
	for i := range s.Items {
		if s.Items[i].Amount.IsZero() {
			s.Items[i].Amount = s.Items[i].Qty.Mul(s.Items[i].Price)
		}
		total = total.Add(s.Items[i].Amount)
	}
	if s.TotalAmount.IsZero() {
		s.TotalAmount = total
	}
	if s.UserCode == "" {
		s.UserCode = DefaultSaleUser
	}
}

// Transaction is a recent document line as shown on the POS home screen.
type Transaction struct {
	ItemCode  string          `json:"item_code"`
	ItemName  string          `json:"item_name"`
	Qty       decimal.Decimal `json:"qty"`
	UnitCode  string          `json:"unit_code"`
	TransFlag int             `json:"trans_flag"`
}

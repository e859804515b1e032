package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Document classification in ic_trans / ic_trans_detail.
const (
	TransTypeStock = 3

	TransFlagTransfer = 124
	TransFlagSale     = 44

	DocFormatTransfer = "FR"
	DocFormatSale     = "POS"

	DefaultBranchCode = "00"
)

// Transfer completion states stored in ic_trans.doc_success.
const (
	TransferPending   = 0
	TransferCompleted = 1
)

// TransferStatus returns the status key and the display label for doc_success.
func TransferStatus(docSuccess int) (status, label string) {
	if docSuccess == TransferCompleted {
		return "completed", "ໂອນສຳເລັດ"
	}
	return "pending", "ລໍຖ້າໂອນ"
}

// Transfer is a stock transfer document header with its lines.
type Transfer struct {
	TransferNo       string           `json:"transfer_no"`
	ID               string           `json:"id"`
	DocDate          string           `json:"doc_date"`
	DocTime          string           `json:"doc_time"`
	DocDateTime      string           `json:"doc_date_time"`
	DocRef           string           `json:"doc_ref"`
	BranchCode       string           `json:"branch_code"`
	Remark           string           `json:"remark"`
	Creator          string           `json:"creator"`
	CreatorName      string           `json:"creator_name"`
	WhFrom           string           `json:"wh_from"`
	WhFromName       string           `json:"wh_from_name"`
	LocationFrom     string           `json:"location_from"`
	LocationFromName string           `json:"location_from_name"`
	WhTo             string           `json:"wh_to"`
	WhToName         string           `json:"wh_to_name"`
	LocationTo       string           `json:"location_to"`
	LocationToName   string           `json:"location_to_name"`
	Status           string           `json:"status"`
	StatusName       string           `json:"status_name"`
	Quantity         decimal.Decimal  `json:"quantity"`
	Details          []TransferDetail `json:"details"`
}

// TransferDetail is one item line of a transfer.
type TransferDetail struct {
	ItemCode   string          `json:"item_code"`
	ItemName   string          `json:"item_name"`
	UnitCode   string          `json:"unit_code"`
	Quantity   decimal.Decimal `json:"quantity"`
	WhCode     string          `json:"wh_code"`
	ShelfCode  string          `json:"shelf_code"`
	WhCode2    string          `json:"wh_code_2"`
	ShelfCode2 string          `json:"shelf_code_2"`
}

// MarshalJSON adds qty, the line quantity key the transfer print and edit
// pages read, next to quantity.
func (d TransferDetail) MarshalJSON() ([]byte, error) {
	type detail TransferDetail
	return json.Marshal(struct {
		detail
		Qty decimal.Decimal `json:"qty"`
	}{detail(d), d.Quantity})
}

// TransferSummary is a transfer header as returned by creation and listing.
type TransferSummary struct {
	TransferNo       string          `json:"transfer_no"`
	ID               string          `json:"id"`
	DocDateTime      string          `json:"doc_date_time"`
	Creator          string          `json:"creator"`
	CreatorName      string          `json:"creator_name,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	Status           string          `json:"status,omitempty"`
	StatusName       string          `json:"status_name,omitempty"`
	WhFrom           string          `json:"wh_from,omitempty"`
	WhFromName       string          `json:"wh_from_name,omitempty"`
	LocationFrom     string          `json:"location_from,omitempty"`
	LocationFromName string          `json:"location_from_name,omitempty"`
	WhTo             string          `json:"wh_to,omitempty"`
	WhToName         string          `json:"wh_to_name,omitempty"`
	LocationTo       string          `json:"location_to,omitempty"`
	LocationToName   string          `json:"location_to_name,omitempty"`
}

// NewTransfer is the input for creating a transfer.
type NewTransfer struct {
	TransferNo   string           `json:"transfer_no"`
	Creator      string           `json:"creator"`
	WhFrom       string           `json:"wh_from"`
	LocationFrom string           `json:"location_from"`
	WhTo         string           `json:"wh_to"`
	LocationTo   string           `json:"location_to"`
	Details      []TransferDetail `json:"details"`
}

// TransferRoute is the editable part of a transfer header.
type TransferRoute struct {
	WhFrom       string `json:"wh_from"`
	LocationFrom string `json:"location_from"`
	WhTo         string `json:"wh_to"`
	LocationTo   string `json:"location_to"`
}

// SameEnds reports whether source and destination are the same warehouse/location pair.
func (r TransferRoute) SameEnds() bool {
	return r.WhFrom == r.WhTo && r.LocationFrom == r.LocationTo
}

// Complete reports whether all four warehouse/location fields are set.
func (r TransferRoute) Complete() bool {
	return r.WhFrom != "" && r.LocationFrom != "" && r.WhTo != "" && r.LocationTo != ""
}

// Route returns the warehouse/location part of the request.
func (t *NewTransfer) Route() TransferRoute {
	return TransferRoute{WhFrom: t.WhFrom, LocationFrom: t.LocationFrom, WhTo: t.WhTo, LocationTo: t.LocationTo}
}

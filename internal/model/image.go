package model

import "time"

// Image history actions.
const (
	ImageActionUpdate = "UPDATE"
	ImageActionRevert = "REVERT"
)

// DefaultImageEditor is recorded when an image change names no user.
const DefaultImageEditor = "SYSTEM"

// ImageHistory is one change of a product's primary image.
type ImageHistory struct {
	ID              int64     `json:"id"`
	ItemCode        string    `json:"item_code"`
	ItemName        string    `json:"item_name,omitempty"`
	OldURL          string    `json:"old_url_image"`
	NewURL          string    `json:"new_url_image"`
	ChangedBy       string    `json:"changed_by"`
	ChangeTimestamp time.Time `json:"change_timestamp"`
	ActionType      string    `json:"action_type"`
}

// ImageHistoryFilter narrows the global history listing.
type ImageHistoryFilter struct {
	Search    string
	StartDate string
	EndDate   string
	Limit     int
}

// ImageHistoryPage is the global history listing with its totals.
type ImageHistoryPage struct {
	History            []ImageHistory `json:"history"`
	TotalCount         int            `json:"total_count"`
	UniqueProductCount int            `json:"unique_product_count"`
}

// Media is a stored upload.
type Media struct {
	Key       string    `json:"key"`
	MIME      string    `json:"mime"`
	Size      int       `json:"size"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

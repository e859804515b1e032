package model

// User is an ERP account from erp_user.
type User struct {
	Code     string `json:"code"`
	Name     string `json:"name_1"`
	Password string `json:"-"`
	WhCode   string `json:"ic_wht"`
	Shelf    string `json:"ic_shelf"`
}

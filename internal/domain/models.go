package domain

import "time"

// LineItem is one product entry on a bill. Exactly one of PricePerKg /
// PricePerQuantity carries a numeric rate; the other holds the literal "N/A".
// JSON field names match the persisted blob layout.
type LineItem struct {
	Product          string  `json:"product"`
	PricePerKg       string  `json:"pricePerKg"`
	PricePerQuantity string  `json:"pricePerQuantity"`
	Quantity         float64 `json:"quantity"`
	TotalPrice       float64 `json:"totalPrice"`
}

// Bill is a finalized, persisted record of one completed sale. Immutable once
// appended to the history except for whole-record deletion.
type Bill struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	PhoneNumber string     `json:"phoneNumber"`
	CartItems   []LineItem `json:"cartItems"`
	TotalAmount float64    `json:"totalAmount"`
	Date        string     `json:"date"`
}

// Account is a registered shop account. Gmail is unique across the store.
// Password holds a bcrypt hash; legacy records may still carry plain text
// until they are upgraded on load.
type Account struct {
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Gmail    string `json:"gmail"`
	Password string `json:"password"`
}

// Session mirrors the persisted login flags, independent of the account list.
type Session struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	ShopName   string `json:"shopName"`
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Gmail    string `json:"gmail"`
	Password string `json:"password"`
}

// AccountInfo is the public view of an Account (no credential material).
type AccountInfo struct {
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Gmail    string `json:"gmail"`
}

type LoginRequest struct {
	Gmail    string `json:"gmail"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	ShopName    string `json:"shopName"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor identifies the authenticated account attached to a request context.
type Actor struct {
	Gmail    string
	Name     string
	ShopName string
}

type StartBillRequest struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
}

// ItemRequest carries the raw billing-form fields for one line item. The
// rates arrive as strings because an empty field means "not using this rate".
type ItemRequest struct {
	Product          string  `json:"product"`
	PricePerKg       string  `json:"pricePerKg"`
	PricePerQuantity string  `json:"pricePerQuantity"`
	Quantity         float64 `json:"quantity"`
}

// DraftBill is the in-progress cart plus customer metadata. Drafts live only
// in process memory while a bill is being composed.
type DraftBill struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	PhoneNumber string     `json:"phoneNumber"`
	CartItems   []LineItem `json:"cartItems"`
	TotalAmount float64    `json:"totalAmount"`
	StartedAt   time.Time  `json:"startedAt"`
}

type SavedBillResponse struct {
	Bill            Bill   `json:"bill"`
	ReceiptFileName string `json:"receipt_file_name"`
}

type BillHistoryResponse struct {
	Bills []Bill `json:"bills"`
}

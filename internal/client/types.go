package client

import (
	"encoding/json"
	"strings"
	"time"

	"bizflow/internal/models"
	"bizflow/internal/payload"
)

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Status          models.Status   `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	Total           float64         `json:"total"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Address decodes shipping_address whether it arrives as an object, a JSON
// string holding an object, or free text.
func (o Order) Address() payload.Address {
	return payload.ParseAddress(rawText(o.ShippingAddress))
}

type OrderInput struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress payload.Address `json:"shipping_address"`
	Notes           string          `json:"notes,omitempty"`
}

type OrderUpdate struct {
	Status        models.Status `json:"status,omitempty"`
	PaymentStatus string        `json:"payment_status,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

type ActivityInput struct {
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type Section struct {
	ID       string          `json:"id,omitempty"`
	Page     string          `json:"page"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content,omitempty"`
	Position int             `json:"position"`
	Visible  bool            `json:"is_visible"`
}

type Destination struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Country     string          `json:"country"`
	Description string          `json:"description"`
	Images      json.RawMessage `json:"images"`
	Amenities   json.RawMessage `json:"amenities"`
	Active      bool            `json:"is_active"`
}

func (d Destination) ImageList() []string {
	return payload.ParseStringList(rawText(d.Images))
}

func (d Destination) AmenityList() []string {
	return payload.ParseStringList(rawText(d.Amenities))
}

type Reservation struct {
	ID         string        `json:"id"`
	GuestName  string        `json:"guest_name"`
	GuestEmail string        `json:"guest_email"`
	Room       string        `json:"room"`
	Status     models.Status `json:"status"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Guests     int           `json:"guests"`
}

type ReservationInput struct {
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email,omitempty"`
	Room       string    `json:"room"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

type QualityCheck struct {
	ID          string        `json:"id"`
	WorkOrderID string        `json:"work_order_id"`
	Inspector   string        `json:"inspector"`
	Status      models.Status `json:"status"`
	Notes       string        `json:"notes"`
	CheckedAt   *time.Time    `json:"checked_at,omitempty"`
}

type QualityUpdate struct {
	Status models.Status `json:"status"`
	Notes  string        `json:"notes,omitempty"`
}

type InventoryItem struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Reorder  float64 `json:"reorder_level"`
}

type InventoryAdjustment struct {
	Delta  float64 `json:"adjustment"`
	Reason string  `json:"reason,omitempty"`
}

type Transaction struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	Type       string        `json:"type"`
	Amount     float64       `json:"amount"`
	Status     models.Status `json:"status"`
	Buyer      string        `json:"buyer_name"`
	CreatedAt  time.Time     `json:"created_at"`
}

type TransactionInput struct {
	PropertyID string  `json:"property_id"`
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	Buyer      string  `json:"buyer_name"`
}

type Inquiry struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	Message    string        `json:"message"`
	Status     models.Status `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

type InquiryInput struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message"`
}

type PaymentConfig struct {
	Provider      string `json:"provider"`
	PublicKey     string `json:"public_key"`
	SecretKey     string `json:"secret_key,omitempty"`
	Currency      string `json:"currency"`
	TestMode      bool   `json:"test_mode"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

type PaymentTestResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ThemeConfig is stored by the CMS as an opaque layout document.
type ThemeConfig map[string]interface{}

type StatusUpdate struct {
	Status models.Status `json:"status"`
}

// VocabularyEntry is one row of GET /vocabulary/{kind}.
type VocabularyEntry struct {
	models.Descriptor
	Terminal bool            `json:"terminal"`
	Actions  []models.Action `json:"actions"`
}

type ActionSet struct {
	Descriptor models.Descriptor `json:"descriptor"`
	Actions    []models.Action   `json:"actions"`
}

type TransitionResult struct {
	Record     *models.Record     `json:"record"`
	Transition *models.Transition `json:"transition"`
}

type RecordQuery struct {
	Status models.Status
	Cursor string
	Limit  int
}

// rawText turns a field that may be a JSON string or a JSON value into the
// text the payload parsers expect.
func rawText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return trimmed
}

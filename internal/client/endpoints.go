package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bizflow/internal/models"
)

func (c *Client) ListOrders(ctx context.Context, status models.Status) ([]Order, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	return list[Order](ctx, c, "/orders", q)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return one[Order](ctx, c, "/orders/"+seg(id))
}

func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	var o Order
	if err := c.send(ctx, http.MethodPost, "/orders", in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, upd OrderUpdate) (*Order, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	var o Order
	if err := c.send(ctx, http.MethodPut, "/orders/"+seg(id), upd, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListActivities(ctx context.Context, entityType, entityID string) ([]models.Activity, error) {
	return list[models.Activity](ctx, c, "/activities/"+seg(entityType)+"/"+seg(entityID), nil)
}

func (c *Client) CreateActivity(ctx context.Context, in ActivityInput) (*models.Activity, error) {
	var a models.Activity
	if err := c.send(ctx, http.MethodPost, "/activities", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListMenu(ctx context.Context, mode string) ([]models.MenuItem, error) {
	return list[models.MenuItem](ctx, c, "/cms/menu/"+seg(mode), nil)
}

func (c *Client) CreateMenuItem(ctx context.Context, mode string, item models.MenuItem) (*models.MenuItem, error) {
	var m models.MenuItem
	if err := c.send(ctx, http.MethodPost, "/cms/menu/"+seg(mode), item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, mode, id string, item models.MenuItem) (*models.MenuItem, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	var m models.MenuItem
	if err := c.send(ctx, http.MethodPut, "/cms/menu/"+seg(mode)+"/"+seg(id), item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, mode, id string) error {
	if err := requireID(id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return c.send(ctx, http.MethodDelete, "/cms/menu/"+seg(mode)+"/"+seg(id), nil, nil)
}

func (c *Client) ListSections(ctx context.Context, page string) ([]Section, error) {
	q := url.Values{}
	if page != "" {
		q.Set("page", page)
	}
	return list[Section](ctx, c, "/cms/sections", q)
}

func (c *Client) CreateSection(ctx context.Context, s Section) (*Section, error) {
	var out Section
	if err := c.send(ctx, http.MethodPost, "/cms/sections", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDestinations(ctx context.Context) ([]Destination, error) {
	return list[Destination](ctx, c, "/destinations", nil)
}

func (c *Client) UpdateDestination(ctx context.Context, d Destination) (*Destination, error) {
	if err := requireID(d.ID); err != nil {
		return nil, fmt.Errorf("update destination: %w", err)
	}
	var out Destination
	if err := c.send(ctx, http.MethodPut, "/destinations/"+seg(d.ID), d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReservations(ctx context.Context, status models.Status) ([]Reservation, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	return list[Reservation](ctx, c, "/reservations", q)
}

func (c *Client) CreateReservation(ctx context.Context, in ReservationInput) (*Reservation, error) {
	var r Reservation
	if err := c.send(ctx, http.MethodPost, "/reservations", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CheckIn(ctx context.Context, id string) (*Reservation, error) {
	return c.reservationAction(ctx, id, "check-in")
}

func (c *Client) CheckOut(ctx context.Context, id string) (*Reservation, error) {
	return c.reservationAction(ctx, id, "check-out")
}

func (c *Client) CancelReservation(ctx context.Context, id string) (*Reservation, error) {
	return c.reservationAction(ctx, id, "cancel")
}

func (c *Client) reservationAction(ctx context.Context, id, action string) (*Reservation, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("reservation %s: %w", action, err)
	}
	var r Reservation
	if err := c.send(ctx, http.MethodPost, "/reservations/"+seg(id)+"/"+action, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetQualityCheck(ctx context.Context, id string) (*QualityCheck, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("get quality check: %w", err)
	}
	return one[QualityCheck](ctx, c, "/quality/"+seg(id))
}

func (c *Client) UpdateQualityCheck(ctx context.Context, id string, upd QualityUpdate) (*QualityCheck, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("update quality check: %w", err)
	}
	var q QualityCheck
	if err := c.send(ctx, http.MethodPut, "/quality/"+seg(id), upd, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) ListInventory(ctx context.Context, itemType string) ([]InventoryItem, error) {
	q := url.Values{}
	if itemType != "" {
		q.Set("type", itemType)
	}
	return list[InventoryItem](ctx, c, "/manufacturing/inventory", q)
}

func (c *Client) AdjustInventory(ctx context.Context, itemType, id string, adj InventoryAdjustment) (*InventoryItem, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("adjust inventory: %w", err)
	}
	var item InventoryItem
	path := "/manufacturing/inventory/" + seg(itemType) + "/" + seg(id) + "/adjust"
	if err := c.send(ctx, http.MethodPut, path, adj, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) ListWorkOrders(ctx context.Context) ([]models.WorkOrder, error) {
	return list[models.WorkOrder](ctx, c, "/manufacturing/work-orders", nil)
}

func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return list[Transaction](ctx, c, "/transactions", nil)
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	var t Transaction
	if err := c.send(ctx, http.MethodPost, "/transactions", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTransactionStatus(ctx context.Context, id string, status models.Status) (*Transaction, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	var t Transaction
	if err := c.send(ctx, http.MethodPatch, "/transactions/"+seg(id)+"/status", StatusUpdate{Status: status}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) ListInquiries(ctx context.Context) ([]Inquiry, error) {
	return list[Inquiry](ctx, c, "/property-inquiries", nil)
}

func (c *Client) CreateInquiry(ctx context.Context, in InquiryInput) (*Inquiry, error) {
	var i Inquiry
	if err := c.send(ctx, http.MethodPost, "/property-inquiries", in, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (c *Client) UpdateInquiryStatus(ctx context.Context, id string, status models.Status) (*Inquiry, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("update inquiry status: %w", err)
	}
	var i Inquiry
	if err := c.send(ctx, http.MethodPatch, "/property-inquiries/"+seg(id)+"/status", StatusUpdate{Status: status}, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (c *Client) GetPaymentConfig(ctx context.Context) (*PaymentConfig, error) {
	return one[PaymentConfig](ctx, c, "/config/payment")
}

func (c *Client) UpdatePaymentConfig(ctx context.Context, cfg PaymentConfig) (*PaymentConfig, error) {
	var out PaymentConfig
	if err := c.send(ctx, http.MethodPut, "/config/payment", cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TestPaymentConfig(ctx context.Context) (*PaymentTestResult, error) {
	var out PaymentTestResult
	if err := c.send(ctx, http.MethodPost, "/config/payment/test", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetThemeConfig(ctx context.Context) (ThemeConfig, error) {
	var cfg ThemeConfig
	if err := c.get(ctx, "/cms/layout/theme_config", nil, &cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = ThemeConfig{}
	}
	return cfg, nil
}

func (c *Client) SaveThemeConfig(ctx context.Context, cfg ThemeConfig) error {
	return c.send(ctx, http.MethodPost, "/cms/layout/theme_config", cfg, nil)
}

func limitParam(n int) string {
	return strconv.Itoa(n)
}

// Package carrier integrates the Delhivery logistics API: shipment creation,
// waybill tracking, and mapping carrier status vocabulary onto the order
// lifecycle.
package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend/internal/models"
)

// ErrNotConfigured is returned when the API token is absent.
var ErrNotConfigured = fmt.Errorf("carrier token not configured")

// CarrierError carries the upstream failure from a shipment or tracking call.
type CarrierError struct {
	StatusCode int
	Message    string
}

func (e CarrierError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("carrier error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("carrier error (%d)", e.StatusCode)
}

// Shipment is the result of a successful shipment registration.
type Shipment struct {
	Waybill string `json:"waybill"`
	Status  string `json:"status"`
}

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

type shipmentPayload struct {
	Shipments []shipmentEntry `json:"shipments"`
	Pickup    pickupLocation  `json:"pickup_location"`
}

type shipmentEntry struct {
	Name         string `json:"name"`
	Order        string `json:"order"`
	Phone        string `json:"phone"`
	Address      string `json:"add"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pin          string `json:"pin"`
	Country      string `json:"country"`
	PaymentMode  string `json:"payment_mode"`
	TotalAmount  int64  `json:"total_amount"`
	CodAmount    int64  `json:"cod_amount"`
	ProductsDesc string `json:"products_desc"`
	Quantity     int    `json:"quantity"`
}

type pickupLocation struct {
	Name string `json:"name"`
}

type shipmentResponse struct {
	Packages []struct {
		Waybill string `json:"waybill"`
		Status  string `json:"status"`
		Remarks any    `json:"remarks"`
	} `json:"packages"`
	RMK string `json:"rmk"`
}

// CreateShipment registers one package for the order. The API expects a
// form-encoded body with the JSON payload inside a "data" field. A response
// without a waybill is treated as a rejection.
func (c *Client) CreateShipment(ctx context.Context, order *models.Order, pickup string) (Shipment, error) {
	if !c.Configured() {
		return Shipment{}, ErrNotConfigured
	}

	totalQty := 0
	descs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		totalQty += item.Quantity
		descs = append(descs, item.Name)
	}

	paymentMode := "Prepaid"
	codAmount := int64(0)
	if order.Payment.Method == models.PaymentMethodCOD {
		paymentMode = "COD"
		codAmount = order.Total
	}

	payload := shipmentPayload{
		Shipments: []shipmentEntry{{
			Name:         order.Customer.FullName,
			Order:        order.OrderNumber,
			Phone:        order.Customer.Phone,
			Address:      strings.TrimSpace(order.Customer.AddressLine1 + " " + order.Customer.AddressLine2),
			City:         order.Customer.City,
			State:        order.Customer.State,
			Pin:          order.Customer.PostalCode,
			Country:      order.Customer.Country,
			PaymentMode:  paymentMode,
			TotalAmount:  order.Total,
			CodAmount:    codAmount,
			ProductsDesc: strings.Join(descs, ", "),
			Quantity:     totalQty,
		}},
		Pickup: pickupLocation{Name: pickup},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Shipment{}, fmt.Errorf("marshal shipment payload: %w", err)
	}

	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/cmu/create.json", strings.NewReader(form.Encode()))
	if err != nil {
		return Shipment{}, fmt.Errorf("build shipment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Shipment{}, CarrierError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Shipment{}, CarrierError{StatusCode: resp.StatusCode, Message: "unreadable response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Shipment{}, CarrierError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var parsed shipmentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Shipment{}, CarrierError{StatusCode: resp.StatusCode, Message: "malformed response"}
	}

	if len(parsed.Packages) == 0 || parsed.Packages[0].Waybill == "" {
		msg := parsed.RMK
		if msg == "" {
			msg = "no waybill in carrier response"
		}
		return Shipment{}, CarrierError{StatusCode: resp.StatusCode, Message: msg}
	}

	return Shipment{
		Waybill: parsed.Packages[0].Waybill,
		Status:  parsed.Packages[0].Status,
	}, nil
}

// Track fetches the raw tracking payload for a waybill. Read-only; the caller
// decides what to do with it.
func (c *Client) Track(ctx context.Context, waybill string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/packages/json/?waybill="+url.QueryEscape(waybill), nil)
	if err != nil {
		return nil, fmt.Errorf("build tracking request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, CarrierError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, CarrierError{StatusCode: resp.StatusCode, Message: "unreadable response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, CarrierError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return json.RawMessage(body), nil
}

// MapStatus converts a carrier status string into an order status. The bool
// is false for vocabulary we don't act on; callers store those raw on the
// fulfillment record instead of forcing a transition.
func MapStatus(carrierStatus string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(carrierStatus)) {
	case "delivered":
		return models.OrderStatusDelivered, true
	case "in transit", "shipped", "dispatched":
		return models.OrderStatusShipped, true
	default:
		return "", false
	}
}

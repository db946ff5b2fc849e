package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func sampleOrder() *models.Order {
	return &models.Order{
		OrderNumber: "ORD-1756-0042",
		Items: []models.OrderItem{
			{Name: "Brass Buttons 12mm", Quantity: 10, UnitPrice: 5000},
			{Name: "Zipper 6in Navy", Quantity: 5, UnitPrice: 3000},
		},
		Total: 68440,
		Customer: models.CustomerInfo{
			FullName:     "Asha Traders",
			Phone:        "9876543210",
			AddressLine1: "14 Mill Road",
			City:         "Tiruppur",
			State:        "Tamil Nadu",
			PostalCode:   "641601",
			Country:      "IN",
		},
		Payment: models.Payment{Method: models.PaymentMethodUPI, Status: models.PaymentStatusPaid},
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		carrier string
		want    string
		ok      bool
	}{
		{"Delivered", models.OrderStatusDelivered, true},
		{"delivered", models.OrderStatusDelivered, true},
		{"In Transit", models.OrderStatusShipped, true},
		{"Shipped", models.OrderStatusShipped, true},
		{"Dispatched", models.OrderStatusShipped, true},
		{"RTO Initiated", "", false},
		{"Pending", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := MapStatus(tt.carrier)
		assert.Equal(t, tt.ok, ok, "status %q", tt.carrier)
		assert.Equal(t, tt.want, got, "status %q", tt.carrier)
	}
}

func TestCreateShipmentRequiresToken(t *testing.T) {
	c := NewClient("", "http://unused")
	_, err := c.CreateShipment(context.Background(), sampleOrder(), "Primary")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateShipmentSendsJSONInFormField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token tok123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "json", r.PostFormValue("format"))

		var payload struct {
			Shipments []map[string]any `json:"shipments"`
			Pickup    map[string]any   `json:"pickup_location"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("data")), &payload))
		require.Len(t, payload.Shipments, 1)
		assert.Equal(t, "ORD-1756-0042", payload.Shipments[0]["order"])
		assert.Equal(t, "Prepaid", payload.Shipments[0]["payment_mode"])
		assert.Equal(t, "Primary", payload.Pickup["name"])

		w.Write([]byte(`{"packages":[{"waybill":"WB123456","status":"Success"}]}`))
	}))
	defer srv.Close()

	c := NewClient("tok123", srv.URL)

	shipment, err := c.CreateShipment(context.Background(), sampleOrder(), "Primary")
	require.NoError(t, err)
	assert.Equal(t, "WB123456", shipment.Waybill)
	assert.Equal(t, "Success", shipment.Status)
}

func TestCreateShipmentMissingWaybillIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":[{"waybill":"","status":"Fail"}],"rmk":"pincode not serviceable"}`))
	}))
	defer srv.Close()

	c := NewClient("tok123", srv.URL)

	_, err := c.CreateShipment(context.Background(), sampleOrder(), "Primary")

	var carrierErr CarrierError
	require.ErrorAs(t, err, &carrierErr)
	assert.Contains(t, carrierErr.Message, "pincode")
}

func TestCreateShipmentCODSetsCodAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		var payload struct {
			Shipments []map[string]any `json:"shipments"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("data")), &payload))
		assert.Equal(t, "COD", payload.Shipments[0]["payment_mode"])
		assert.Equal(t, float64(68440), payload.Shipments[0]["cod_amount"])

		w.Write([]byte(`{"packages":[{"waybill":"WB9","status":"Success"}]}`))
	}))
	defer srv.Close()

	order := sampleOrder()
	order.Payment.Method = models.PaymentMethodCOD

	c := NewClient("tok123", srv.URL)
	_, err := c.CreateShipment(context.Background(), order, "Primary")
	require.NoError(t, err)
}

func TestTrackPassesWaybillQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, err := url.ParseQuery(r.URL.RawQuery)
		require.NoError(t, err)
		assert.Equal(t, "WB123456", q.Get("waybill"))
		w.Write([]byte(`{"ShipmentData":[{"Shipment":{"Status":{"Status":"In Transit"}}}]}`))
	}))
	defer srv.Close()

	c := NewClient("tok123", srv.URL)

	raw, err := c.Track(context.Background(), "WB123456")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "In Transit")
}

func TestTrackPropagatesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer srv.Close()

	c := NewClient("tok123", srv.URL)

	_, err := c.Track(context.Background(), "WB123456")

	var carrierErr CarrierError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, http.StatusUnauthorized, carrierErr.StatusCode)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle statuses.
const (
	OrderStatusCreated    = "created"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Payment statuses.
const (
	PaymentStatusPending           = "pending"
	PaymentStatusPaid              = "paid"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

// Payment methods.
const (
	PaymentMethodUPI = "UPI"
	PaymentMethodCOD = "COD"
)

// Fulfillment statuses.
const (
	FulfillmentUnfulfilled = "unfulfilled"
	FulfillmentPartial     = "partial"
	FulfillmentFulfilled   = "fulfilled"
)

// OrderItem is a priced snapshot of a product at checkout time. Items are
// immutable once the order document is inserted.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice int64              `bson:"unitPrice" json:"unitPrice"` // paise
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	SKU       string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	Pack      string             `bson:"pack,omitempty" json:"pack,omitempty"`
}

// CustomerInfo is the shipping/billing address snapshot stored on the order.
type CustomerInfo struct {
	FullName     string `bson:"fullName" json:"fullName"`
	Phone        string `bson:"phone" json:"phone"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
	GSTIN        string `bson:"gstin,omitempty" json:"gstin,omitempty"`
}

// Payment tracks gateway state for an order. Gateway ids are written exactly
// once, by the verified-payment transition.
type Payment struct {
	Method           string `bson:"method" json:"method"`
	Status           string `bson:"status" json:"status"`
	GatewayOrderID   string `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string `bson:"gatewaySignature,omitempty" json:"-"`
	RefundedAmount   int64  `bson:"refundedAmount" json:"refundedAmount"`
}

// FulfillmentItem records a shipped quantity for one order line.
type FulfillmentItem struct {
	ItemIndex   int        `bson:"itemIndex" json:"itemIndex"`
	Quantity    int        `bson:"quantity" json:"quantity"`
	FulfilledAt *time.Time `bson:"fulfilledAt,omitempty" json:"fulfilledAt,omitempty"`
}

// Fulfillment is the shipping sub-record on an order.
type Fulfillment struct {
	Status            string            `bson:"status" json:"status"`
	TrackingNumber    string            `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	Carrier           string            `bson:"carrier,omitempty" json:"carrier,omitempty"`
	TrackingURL       string            `bson:"trackingUrl,omitempty" json:"trackingUrl,omitempty"`
	ShippedAt         *time.Time        `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time        `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	EstimatedDelivery *time.Time        `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	Items             []FulfillmentItem `bson:"items,omitempty" json:"items,omitempty"`
	CarrierWaybill    string            `bson:"carrierWaybill,omitempty" json:"carrierWaybill,omitempty"`
	CarrierStatus     string            `bson:"carrierStatus,omitempty" json:"carrierStatus,omitempty"`
}

// TimelineEntry is one audit-trail event. Entries are appended only, never
// edited or removed.
type TimelineEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note" json:"note"`
	UpdatedBy string    `bson:"updatedBy" json:"updatedBy"`
}

// Order is the persisted order document. All money fields are integer paise;
// Total equals Subtotal+Shipping+Tax at creation and is never recomputed.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`
	Items       []OrderItem        `bson:"items" json:"items"`
	Subtotal    int64              `bson:"subtotal" json:"subtotal"`
	Shipping    int64              `bson:"shipping" json:"shipping"`
	Tax         int64              `bson:"tax" json:"tax"`
	Total       int64              `bson:"total" json:"total"`
	Customer    CustomerInfo       `bson:"customer" json:"customer"`
	Payment     Payment            `bson:"payment" json:"payment"`
	Status      string             `bson:"status" json:"status"`
	Fulfillment *Fulfillment       `bson:"fulfillment,omitempty" json:"fulfillment,omitempty"`
	Timeline    []TimelineEntry    `bson:"timeline" json:"timeline"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TrackingNumber returns the waybill recorded on the order, or "".
func (o *Order) TrackingNumber() string {
	if o.Fulfillment == nil {
		return ""
	}
	if o.Fulfillment.TrackingNumber != "" {
		return o.Fulfillment.TrackingNumber
	}
	return o.Fulfillment.CarrierWaybill
}

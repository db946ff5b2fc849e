// Package orders implements the order lifecycle: checkout submission, payment
// verification with its stock side effects, fulfillment, and the carrier
// webhook transitions. Every transition made here appends a timeline entry.
package orders

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/carrier"
	"backend/internal/models"
	"backend/internal/pricing"
)

// Service orchestrates order state. Stores and the gateway are injected so
// the transition logic can be exercised without a live mongo.
type Service struct {
	Orders   OrderStore
	Products ProductStore
	Txn      TxnRunner
	Gateway  Gateway

	ShippingFee    int64
	TaxRatePercent int64
	PendingTTL     time.Duration

	nowFunc  func() time.Time
	validate *validator.Validate
}

func NewService(orders OrderStore, products ProductStore, txn TxnRunner, gw Gateway, shippingFee, taxRatePercent int64, pendingTTL time.Duration) *Service {
	return &Service{
		Orders:         orders,
		Products:       products,
		Txn:            txn,
		Gateway:        gw,
		ShippingFee:    shippingFee,
		TaxRatePercent: taxRatePercent,
		PendingTTL:     pendingTTL,
		nowFunc:        time.Now,
		validate:       validator.New(),
	}
}

/* =========================
   CHECKOUT
========================= */

// CreateItemInput is one cart line. Price is resolved server-side from the
// product document, never trusted from the client.
type CreateItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	SKU       string `json:"sku"`
}

type CreateCustomerInput struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Country      string `json:"country"`
	GSTIN        string `json:"gstin"`
}

type CreateOrderInput struct {
	Items         []CreateItemInput   `json:"items" validate:"required,min=1,dive"`
	Customer      CreateCustomerInput `json:"customer" validate:"required"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=UPI COD"`
}

// CreateResult is what the storefront needs to hand off to the payment step.
type CreateResult struct {
	OrderID     primitive.ObjectID
	OrderNumber string
	Total       int64
}

// Create validates the cart, snapshots items and customer details, computes
// totals, and inserts the order as created/pending. No stock is reserved or
// checked here; stock moves only after verified payment.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (CreateResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return CreateResult{}, ValidationError{Field: "body", Reason: err.Error()}
	}

	now := s.nowFunc()
	items := make([]models.OrderItem, 0, len(input.Items))
	var subtotal int64

	for _, in := range input.Items {
		productID, err := primitive.ObjectIDFromHex(in.ProductID)
		if err != nil {
			return CreateResult{}, ValidationError{Field: "productId", Reason: "not a valid id"}
		}

		product, err := s.Products.FindByID(ctx, productID)
		if err != nil {
			return CreateResult{}, fmt.Errorf("load product: %w", err)
		}
		if product == nil || product.Status != models.ProductStatusActive {
			return CreateResult{}, ValidationError{Field: "productId", Reason: "product not available"}
		}

		item := models.OrderItem{
			ProductID: productID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  in.Quantity,
			SKU:       strings.TrimSpace(in.SKU),
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		if len(product.Category) > 0 {
			item.Category = product.Category[0]
		}

		if product.StockMode() == models.StockVariant {
			v := product.VariantBySKU(item.SKU)
			if v == nil {
				return CreateResult{}, ValidationError{Field: "sku", Reason: "variant not found"}
			}
			item.UnitPrice = v.Price
			item.Size = v.Size
			item.Color = v.Color
			item.Pack = v.Pack
		}

		subtotal += item.UnitPrice * int64(item.Quantity)
		items = append(items, item)
	}

	totals := pricing.CalculateTotals(subtotal, s.ShippingFee, s.TaxRatePercent)

	seq, err := s.Orders.NextSequence(ctx)
	if err != nil {
		return CreateResult{}, fmt.Errorf("order sequence: %w", err)
	}

	customer := models.CustomerInfo(input.Customer)
	if customer.Country == "" {
		customer.Country = "IN"
	}

	order := models.Order{
		OrderNumber: formatOrderNumber(now, seq),
		Items:       items,
		Subtotal:    totals.Subtotal,
		Shipping:    totals.Shipping,
		Tax:         totals.Tax,
		Total:       totals.Total,
		Customer:    customer,
		Payment: models.Payment{
			Method: input.PaymentMethod,
			Status: models.PaymentStatusPending,
		},
		Status: models.OrderStatusCreated,
		Timeline: []models.TimelineEntry{{
			Status:    models.OrderStatusCreated,
			Timestamp: now,
			Note:      "order placed",
			UpdatedBy: "customer",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.Orders.Insert(ctx, &order)
	if err != nil {
		return CreateResult{}, fmt.Errorf("insert order: %w", err)
	}

	return CreateResult{OrderID: id, OrderNumber: order.OrderNumber, Total: order.Total}, nil
}

// formatOrderNumber builds ORD-<epoch-tail>-<sequence>. Assigned exactly once
// at insert; never regenerated on update.
func formatOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%d-%04d", now.Unix()%1000000, seq)
}

/* =========================
   PAYMENT
========================= */

// Get loads an order, sweeping it to cancelled first if its pending payment
// has gone stale. All read paths go through here.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return s.sweepIfStale(ctx, order)
}

// sweepIfStale lazily cancels an order whose payment never arrived within the
// pending window. There is no background job; reads are the clock.
func (s *Service) sweepIfStale(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.Status != models.OrderStatusCreated || order.Payment.Status != models.PaymentStatusPending {
		return order, nil
	}

	now := s.nowFunc()
	cutoff := now.Add(-s.PendingTTL)
	if !order.CreatedAt.Before(cutoff) {
		return order, nil
	}

	entry := models.TimelineEntry{
		Status:    models.OrderStatusCancelled,
		Timestamp: now,
		Note:      fmt.Sprintf("auto-cancelled: payment not completed within %s", s.PendingTTL),
		UpdatedBy: "system",
	}

	cancelled, err := s.Orders.CancelIfStale(ctx, order.ID, cutoff, entry)
	if err != nil {
		return nil, fmt.Errorf("stale sweep: %w", err)
	}
	if cancelled {
		log.Printf("[orders] order %s auto-cancelled after pending timeout", order.OrderNumber)
		order.Status = models.OrderStatusCancelled
		order.Payment.Status = models.PaymentStatusFailed
		order.Timeline = append(order.Timeline, entry)
	}
	return order, nil
}

// AttachGatewayOrder records the gateway intent id against a pending order.
// The amount handed to the gateway always comes from the stored total.
func (s *Service) AttachGatewayOrder(ctx context.Context, id primitive.ObjectID, gatewayOrderID string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusCreated || order.Payment.Status != models.PaymentStatusPending {
		return nil, ErrNotPayable
	}
	if err := s.Orders.SetGatewayOrderID(ctx, id, gatewayOrderID); err != nil {
		return nil, fmt.Errorf("record gateway order: %w", err)
	}
	order.Payment.GatewayOrderID = gatewayOrderID
	return order, nil
}

// VerifyPayment validates the gateway callback and, on a first valid callback,
// transitions the order to paid/processing and decrements stock for every
// line item. Replays of an already-verified payment are accepted as no-ops:
// the conditional ClaimPaid matches at most once per order, so the stock
// decrement and timeline append happen exactly once.
func (s *Service) VerifyPayment(ctx context.Context, id primitive.ObjectID, gatewayOrderID, gatewayPaymentID, signature string) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	now := s.nowFunc()

	if !s.Gateway.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		entry := models.TimelineEntry{
			Status:    order.Status,
			Timestamp: now,
			Note:      "payment verification failed: signature mismatch",
			UpdatedBy: "system",
		}
		if err := s.Orders.MarkPaymentFailed(ctx, id, entry); err != nil {
			log.Printf("[orders] order %s: recording failed verification: %v", order.OrderNumber, err)
		}
		return ErrSignatureInvalid
	}

	entry := models.TimelineEntry{
		Status:    models.OrderStatusProcessing,
		Timestamp: now,
		Note:      "payment verified",
		UpdatedBy: "system",
	}

	return s.Txn.WithTransaction(ctx, func(txCtx context.Context) error {
		claimed, err := s.Orders.ClaimPaid(txCtx, id, gatewayOrderID, gatewayPaymentID, signature, entry)
		if err != nil {
			return fmt.Errorf("paid transition: %w", err)
		}
		if !claimed {
			// Either a replay of an already-verified payment, or the order
			// left the payable state (cancelled/stale). Replays succeed
			// without side effects; anything else is rejected.
			current, err := s.Orders.FindByID(txCtx, id)
			if err != nil {
				return err
			}
			if current != nil && current.Payment.Status == models.PaymentStatusPaid {
				log.Printf("[orders] order %s: duplicate verification ignored", current.OrderNumber)
				return nil
			}
			return ErrNotPayable
		}

		s.decrementStock(txCtx, order)
		return nil
	})
}

// decrementStock applies the post-payment stock adjustment for every line
// item. A line item whose product or variant no longer resolves is logged and
// skipped: the payment is already captured, so one bad reference must not
// abort the order.
func (s *Service) decrementStock(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		product, err := s.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			log.Printf("[orders] order %s: loading product %s for stock decrement: %v",
				order.OrderNumber, item.ProductID.Hex(), err)
			continue
		}
		if product == nil {
			log.Printf("[orders] order %s: product %s missing, stock not adjusted",
				order.OrderNumber, item.ProductID.Hex())
			continue
		}

		if !applyDecrement(product, item) {
			log.Printf("[orders] order %s: no stock counter for product %s sku %q, skipped",
				order.OrderNumber, item.ProductID.Hex(), item.SKU)
			continue
		}

		if err := s.Products.SaveStock(ctx, product); err != nil {
			log.Printf("[orders] order %s: persisting stock for product %s: %v",
				order.OrderNumber, item.ProductID.Hex(), err)
		}
	}
}

/* =========================
   FULFILLMENT
========================= */

// MarkShipped transitions processing -> shipped with the given tracking
// details. Rejected when a tracking number is already recorded, which also
// guards duplicate carrier shipment creation.
func (s *Service) MarkShipped(ctx context.Context, id primitive.ObjectID, trackingNumber, carrierName, trackingURL, updatedBy string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.TrackingNumber() != "" {
		return nil, ErrAlreadyShipped
	}
	if order.Status != models.OrderStatusProcessing {
		return nil, fmt.Errorf("cannot ship order in status %q", order.Status)
	}

	now := s.nowFunc()
	items := make([]models.FulfillmentItem, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, models.FulfillmentItem{
			ItemIndex:   i,
			Quantity:    item.Quantity,
			FulfilledAt: &now,
		})
	}

	f := models.Fulfillment{
		Status:         models.FulfillmentFulfilled,
		TrackingNumber: trackingNumber,
		Carrier:        carrierName,
		TrackingURL:    trackingURL,
		ShippedAt:      &now,
		Items:          items,
		CarrierWaybill: trackingNumber,
	}
	entry := models.TimelineEntry{
		Status:    models.OrderStatusShipped,
		Timestamp: now,
		Note:      fmt.Sprintf("shipped via %s, tracking %s", carrierName, trackingNumber),
		UpdatedBy: updatedBy,
	}

	if err := s.Orders.SetShipped(ctx, id, f, entry); err != nil {
		return nil, fmt.Errorf("mark shipped: %w", err)
	}

	order.Status = models.OrderStatusShipped
	order.Fulfillment = &f
	order.Timeline = append(order.Timeline, entry)
	return order, nil
}

// ApplyCarrierEvent maps a carrier webhook status onto the order resolved by
// waybill. Unknown waybills are ignored so stale callbacks never error, and
// unmapped statuses are stored raw without forcing a transition.
func (s *Service) ApplyCarrierEvent(ctx context.Context, waybill, carrierStatus string) error {
	order, err := s.Orders.FindByWaybill(ctx, waybill)
	if err != nil {
		return fmt.Errorf("resolve waybill: %w", err)
	}
	if order == nil {
		log.Printf("[orders] carrier webhook for unknown waybill %q ignored", waybill)
		return nil
	}

	now := s.nowFunc()
	mapped, ok := carrier.MapStatus(carrierStatus)
	if !ok {
		return s.Orders.SetCarrierStatus(ctx, order.ID, carrierStatus)
	}

	switch mapped {
	case models.OrderStatusDelivered:
		if order.Status == models.OrderStatusDelivered {
			return nil
		}
		entry := models.TimelineEntry{
			Status:    models.OrderStatusDelivered,
			Timestamp: now,
			Note:      fmt.Sprintf("carrier reported %q", carrierStatus),
			UpdatedBy: "carrier",
		}
		return s.Orders.SetDelivered(ctx, order.ID, now, carrierStatus, entry)
	case models.OrderStatusShipped:
		if order.Status == models.OrderStatusShipped || order.Status == models.OrderStatusDelivered {
			return s.Orders.SetCarrierStatus(ctx, order.ID, carrierStatus)
		}
		entry := models.TimelineEntry{
			Status:    models.OrderStatusShipped,
			Timestamp: now,
			Note:      fmt.Sprintf("carrier reported %q", carrierStatus),
			UpdatedBy: "carrier",
		}
		return s.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusShipped, entry)
	}
	return nil
}

// UpdateStatus is the admin manual transition (including refunds). It always
// appends a timeline entry attributed to the operator.
func (s *Service) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, note, updatedBy string) error {
	switch status {
	case models.OrderStatusCreated, models.OrderStatusProcessing, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusRefunded:
	default:
		return ValidationError{Field: "status", Reason: "unknown status"}
	}

	if note == "" {
		note = "status updated"
	}
	entry := models.TimelineEntry{
		Status:    status,
		Timestamp: s.nowFunc(),
		Note:      note,
		UpdatedBy: updatedBy,
	}
	return s.Orders.UpdateStatus(ctx, id, status, entry)
}

// Track is the public read path: possession of both the order id and the
// customer phone authorizes the lookup.
func (s *Service) Track(ctx context.Context, id primitive.ObjectID, phone string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(phone) == "" || order.Customer.Phone != strings.TrimSpace(phone) {
		return nil, ErrNotFound
	}
	return order, nil
}

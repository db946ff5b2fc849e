package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

/* =========================
   IN-MEMORY FAKES
========================= */

type fakeOrderStore struct {
	orders map[primitive.ObjectID]*models.Order
	seq    int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[primitive.ObjectID]*models.Order{}}
}

func (s *fakeOrderStore) Insert(_ context.Context, order *models.Order) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	order.ID = id
	cp := *order
	s.orders[id] = &cp
	return id, nil
}

func (s *fakeOrderStore) NextSequence(_ context.Context) (int64, error) {
	s.seq++
	return s.seq, nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (s *fakeOrderStore) FindByWaybill(_ context.Context, waybill string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.Fulfillment != nil &&
			(order.Fulfillment.TrackingNumber == waybill || order.Fulfillment.CarrierWaybill == waybill) {
			cp := *order
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeOrderStore) SetGatewayOrderID(_ context.Context, id primitive.ObjectID, gatewayOrderID string) error {
	if order, ok := s.orders[id]; ok && order.Payment.Status == models.PaymentStatusPending {
		order.Payment.GatewayOrderID = gatewayOrderID
	}
	return nil
}

func (s *fakeOrderStore) ClaimPaid(_ context.Context, id primitive.ObjectID, gwOrderID, gwPaymentID, sig string, entry models.TimelineEntry) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.Status != models.OrderStatusCreated || order.Payment.Status == models.PaymentStatusPaid {
		return false, nil
	}
	order.Status = models.OrderStatusProcessing
	order.Payment.Status = models.PaymentStatusPaid
	order.Payment.GatewayOrderID = gwOrderID
	order.Payment.GatewayPaymentID = gwPaymentID
	order.Payment.GatewaySignature = sig
	order.Timeline = append(order.Timeline, entry)
	return true, nil
}

func (s *fakeOrderStore) MarkPaymentFailed(_ context.Context, id primitive.ObjectID, entry models.TimelineEntry) error {
	order, ok := s.orders[id]
	if !ok || order.Payment.Status == models.PaymentStatusPaid {
		return nil
	}
	order.Payment.Status = models.PaymentStatusFailed
	order.Timeline = append(order.Timeline, entry)
	return nil
}

func (s *fakeOrderStore) CancelIfStale(_ context.Context, id primitive.ObjectID, cutoff time.Time, entry models.TimelineEntry) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.Status != models.OrderStatusCreated ||
		order.Payment.Status != models.PaymentStatusPending || !order.CreatedAt.Before(cutoff) {
		return false, nil
	}
	order.Status = models.OrderStatusCancelled
	order.Payment.Status = models.PaymentStatusFailed
	order.Timeline = append(order.Timeline, entry)
	return true, nil
}

func (s *fakeOrderStore) SetShipped(_ context.Context, id primitive.ObjectID, f models.Fulfillment, entry models.TimelineEntry) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = models.OrderStatusShipped
	order.Fulfillment = &f
	order.Timeline = append(order.Timeline, entry)
	return nil
}

func (s *fakeOrderStore) SetDelivered(_ context.Context, id primitive.ObjectID, deliveredAt time.Time, carrierStatus string, entry models.TimelineEntry) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = models.OrderStatusDelivered
	if order.Fulfillment == nil {
		order.Fulfillment = &models.Fulfillment{}
	}
	order.Fulfillment.DeliveredAt = &deliveredAt
	order.Fulfillment.CarrierStatus = carrierStatus
	order.Timeline = append(order.Timeline, entry)
	return nil
}

func (s *fakeOrderStore) SetCarrierStatus(_ context.Context, id primitive.ObjectID, carrierStatus string) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if order.Fulfillment == nil {
		order.Fulfillment = &models.Fulfillment{}
	}
	order.Fulfillment.CarrierStatus = carrierStatus
	return nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, entry models.TimelineEntry) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	order.Timeline = append(order.Timeline, entry)
	return nil
}

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
	saves    int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[primitive.ObjectID]*models.Product{}}
}

func (s *fakeProductStore) add(p *models.Product) primitive.ObjectID {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = p
	return p.ID
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.VariantPricing = append([]models.Variant(nil), p.VariantPricing...)
	return &cp, nil
}

func (s *fakeProductStore) SaveStock(_ context.Context, p *models.Product) error {
	s.saves++
	stored, ok := s.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s not found", p.ID.Hex())
	}
	stored.StockQty = p.StockQty
	stored.InStock = p.InStock
	stored.VariantPricing = append([]models.Variant(nil), p.VariantPricing...)
	return nil
}

type fakeTxn struct{}

func (fakeTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeGateway struct {
	validSig string
}

func (g fakeGateway) VerifySignature(_, _, supplied string) bool {
	return supplied == g.validSig
}

/* =========================
   FIXTURES
========================= */

func newTestService(t *testing.T) (*Service, *fakeOrderStore, *fakeProductStore) {
	t.Helper()
	orderStore := newFakeOrderStore()
	productStore := newFakeProductStore()
	svc := NewService(orderStore, productStore, fakeTxn{}, fakeGateway{validSig: "good-sig"}, 0, 18, 15*time.Minute)
	return svc, orderStore, productStore
}

func testCustomer() CreateCustomerInput {
	return CreateCustomerInput{
		FullName:     "Asha Traders",
		Phone:        "9876543210",
		AddressLine1: "14 Mill Road",
		City:         "Tiruppur",
		State:        "Tamil Nadu",
		PostalCode:   "641601",
	}
}

/* =========================
   CHECKOUT
========================= */

func TestCreateComputesTotalsAndSnapshotsItems(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name:     "Brass Buttons 12mm",
		Price:    50000,
		StockQty: 10,
		InStock:  true,
		Status:   models.ProductStatusActive,
	})

	res, err := svc.Create(context.Background(), CreateOrderInput{
		Items:         []CreateItemInput{{ProductID: productID.Hex(), Quantity: 2}},
		Customer:      testCustomer(),
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)

	order, err := svc.Get(context.Background(), res.OrderID)
	require.NoError(t, err)

	assert.Equal(t, int64(100000), order.Subtotal)
	assert.Equal(t, int64(18000), order.Tax)
	assert.Equal(t, int64(118000), order.Total)
	assert.Equal(t, order.Total, order.Subtotal+order.Shipping+order.Tax)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, "IN", order.Customer.Country)
	assert.Regexp(t, `^ORD-\d+-\d{4}$`, order.OrderNumber)
	require.Len(t, order.Timeline, 1)
	assert.Equal(t, models.OrderStatusCreated, order.Timeline[0].Status)

	// Prices are snapshotted server-side, not taken from the request.
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(50000), order.Items[0].UnitPrice)

	// No stock moves at checkout.
	assert.Equal(t, 10, productStore.products[productID].StockQty)
	assert.Len(t, orderStore.orders, 1)
}

func TestCreateResolvesVariantPrice(t *testing.T) {
	svc, _, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name:   "Zipper 6in",
		Price:  3000,
		Status: models.ProductStatusActive,
		VariantPricing: []models.Variant{
			{SKU: "ZIP-NVY", Color: "Navy", Price: 3500, StockQty: 50, InStock: true},
		},
	})

	res, err := svc.Create(context.Background(), CreateOrderInput{
		Items:         []CreateItemInput{{ProductID: productID.Hex(), Quantity: 4, SKU: "ZIP-NVY"}},
		Customer:      testCustomer(),
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)

	order, err := svc.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), order.Items[0].UnitPrice)
	assert.Equal(t, "Navy", order.Items[0].Color)
	assert.Equal(t, int64(14000), order.Subtotal)
}

func TestCreateRejectsDraftProduct(t *testing.T) {
	svc, _, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name:   "Prototype Trim",
		Price:  1000,
		Status: models.ProductStatusDraft,
	})

	_, err := svc.Create(context.Background(), CreateOrderInput{
		Items:         []CreateItemInput{{ProductID: productID.Hex(), Quantity: 1}},
		Customer:      testCustomer(),
		PaymentMethod: models.PaymentMethodUPI,
	})

	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCreateRejectsMissingCustomerFields(t *testing.T) {
	svc, _, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 1000, Status: models.ProductStatusActive,
	})

	customer := testCustomer()
	customer.Phone = ""

	_, err := svc.Create(context.Background(), CreateOrderInput{
		Items:         []CreateItemInput{{ProductID: productID.Hex(), Quantity: 1}},
		Customer:      customer,
		PaymentMethod: models.PaymentMethodUPI,
	})

	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
}

/* =========================
   PAYMENT VERIFICATION
========================= */

func paidOrderFixture(t *testing.T, svc *Service, productStore *fakeProductStore, qty int, productID primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	res, err := svc.Create(context.Background(), CreateOrderInput{
		Items:         []CreateItemInput{{ProductID: productID.Hex(), Quantity: qty}},
		Customer:      testCustomer(),
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	return res.OrderID
}

func TestVerifyPaymentDecrementsFlatStock(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 3, productID)

	err := svc.VerifyPayment(context.Background(), orderID, "gw_order_1", "gw_pay_1", "good-sig")
	require.NoError(t, err)

	order := orderStore.orders[orderID]
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.Payment.Status)
	assert.Equal(t, "gw_pay_1", order.Payment.GatewayPaymentID)

	p := productStore.products[productID]
	assert.Equal(t, 2, p.StockQty)
	assert.True(t, p.InStock)
}

func TestVerifyPaymentReplayIsNoOp(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 3, productID)

	require.NoError(t, svc.VerifyPayment(context.Background(), orderID, "gw_order_1", "gw_pay_1", "good-sig"))
	timelineLen := len(orderStore.orders[orderID].Timeline)

	// Gateway retry / double click: same identifiers, same signature.
	require.NoError(t, svc.VerifyPayment(context.Background(), orderID, "gw_order_1", "gw_pay_1", "good-sig"))

	p := productStore.products[productID]
	assert.Equal(t, 2, p.StockQty, "replay must not re-decrement stock")
	assert.Equal(t, 1, productStore.saves, "stock persisted exactly once")
	assert.Len(t, orderStore.orders[orderID].Timeline, timelineLen, "replay must not append timeline entries")
}

func TestVerifyPaymentRejectsTamperedSignature(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 3, productID)

	err := svc.VerifyPayment(context.Background(), orderID, "gw_order_1", "gw_pay_1", "bad-sig")
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	order := orderStore.orders[orderID]
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.Equal(t, models.PaymentStatusFailed, order.Payment.Status)
	assert.Equal(t, 5, productStore.products[productID].StockQty, "no stock mutation on rejected signature")
}

func TestVerifyPaymentClampsVariantStockAtZero(t *testing.T) {
	svc, _, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name:   "Zipper 6in",
		Price:  3000,
		Status: models.ProductStatusActive,
		VariantPricing: []models.Variant{
			{SKU: "V1", Price: 3500, StockQty: 2, InStock: true},
			{SKU: "V2", Price: 3500, StockQty: 7, InStock: true},
		},
	})

	res, err := svc.Create(context.Background(), CreateOrderInput{
		Items:         []CreateItemInput{{ProductID: productID.Hex(), Quantity: 5, SKU: "V1"}},
		Customer:      testCustomer(),
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)

	require.NoError(t, svc.VerifyPayment(context.Background(), res.OrderID, "gw_o", "gw_p", "good-sig"))

	p := productStore.products[productID]
	assert.Equal(t, 0, p.VariantPricing[0].StockQty, "clamped at zero, never negative")
	assert.False(t, p.VariantPricing[0].InStock)
	assert.True(t, p.InStock, "other variant still has stock")
}

func TestVerifyPaymentSkipsUnresolvableLineItems(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 2, productID)

	// Product vanishes between checkout and payment.
	delete(productStore.products, productID)

	err := svc.VerifyPayment(context.Background(), orderID, "gw_o", "gw_p", "good-sig")
	require.NoError(t, err, "missing product must not fail the captured payment")
	assert.Equal(t, models.PaymentStatusPaid, orderStore.orders[orderID].Payment.Status)
}

func TestVerifyPaymentOnCancelledOrder(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)

	orderStore.orders[orderID].Status = models.OrderStatusCancelled
	orderStore.orders[orderID].Payment.Status = models.PaymentStatusFailed

	err := svc.VerifyPayment(context.Background(), orderID, "gw_o", "gw_p", "good-sig")
	assert.ErrorIs(t, err, ErrNotPayable)
	assert.Equal(t, 5, productStore.products[productID].StockQty)
}

/* =========================
   STALE SWEEP
========================= */

func TestStaleOrderCancelledOnRead(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)

	// Jump the clock 16 minutes ahead.
	created := orderStore.orders[orderID].CreatedAt
	svc.nowFunc = func() time.Time { return created.Add(16 * time.Minute) }

	order, err := svc.Get(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, models.PaymentStatusFailed, order.Payment.Status)

	last := order.Timeline[len(order.Timeline)-1]
	assert.Equal(t, models.OrderStatusCancelled, last.Status)
	assert.Equal(t, "system", last.UpdatedBy)
}

func TestFreshPendingOrderNotSwept(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)

	created := orderStore.orders[orderID].CreatedAt
	svc.nowFunc = func() time.Time { return created.Add(14 * time.Minute) }

	order, err := svc.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
}

func TestStaleOrderRejectsLateVerification(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)

	created := orderStore.orders[orderID].CreatedAt
	svc.nowFunc = func() time.Time { return created.Add(20 * time.Minute) }

	err := svc.VerifyPayment(context.Background(), orderID, "gw_o", "gw_p", "good-sig")
	assert.ErrorIs(t, err, ErrNotPayable)
	assert.Equal(t, 5, productStore.products[productID].StockQty)
}

/* =========================
   FULFILLMENT & CARRIER
========================= */

func shippedOrderFixture(t *testing.T, svc *Service, productStore *fakeProductStore) primitive.ObjectID {
	t.Helper()
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)
	require.NoError(t, svc.VerifyPayment(context.Background(), orderID, "gw_o", "gw_p", "good-sig"))
	_, err := svc.MarkShipped(context.Background(), orderID, "WB123456", "Delhivery", "", "admin")
	require.NoError(t, err)
	return orderID
}

func TestMarkShippedSetsFulfillment(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	orderID := shippedOrderFixture(t, svc, productStore)

	order := orderStore.orders[orderID]
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	require.NotNil(t, order.Fulfillment)
	assert.Equal(t, models.FulfillmentFulfilled, order.Fulfillment.Status)
	assert.Equal(t, "WB123456", order.Fulfillment.TrackingNumber)
	assert.NotNil(t, order.Fulfillment.ShippedAt)

	last := order.Timeline[len(order.Timeline)-1]
	assert.Equal(t, models.OrderStatusShipped, last.Status)
	assert.Equal(t, "admin", last.UpdatedBy)
}

func TestMarkShippedRejectsDuplicateTracking(t *testing.T) {
	svc, _, productStore := newTestService(t)
	orderID := shippedOrderFixture(t, svc, productStore)

	_, err := svc.MarkShipped(context.Background(), orderID, "WB999", "Delhivery", "", "admin")
	assert.ErrorIs(t, err, ErrAlreadyShipped)
}

func TestCarrierDeliveredEvent(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	orderID := shippedOrderFixture(t, svc, productStore)

	require.NoError(t, svc.ApplyCarrierEvent(context.Background(), "WB123456", "Delivered"))

	order := orderStore.orders[orderID]
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.Fulfillment.DeliveredAt)

	last := order.Timeline[len(order.Timeline)-1]
	assert.Equal(t, models.OrderStatusDelivered, last.Status)
	assert.Equal(t, "carrier", last.UpdatedBy)
}

func TestCarrierUnknownStatusStoredWithoutTransition(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	orderID := shippedOrderFixture(t, svc, productStore)

	require.NoError(t, svc.ApplyCarrierEvent(context.Background(), "WB123456", "RTO Initiated"))

	order := orderStore.orders[orderID]
	assert.Equal(t, models.OrderStatusShipped, order.Status, "unmapped status must not change the order status")
	assert.Equal(t, "RTO Initiated", order.Fulfillment.CarrierStatus)
}

func TestCarrierUnknownWaybillIsSilentSuccess(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.NoError(t, svc.ApplyCarrierEvent(context.Background(), "WB-FOREIGN", "Delivered"))
}

/* =========================
   TRACKING & ADMIN
========================= */

func TestTrackRequiresMatchingPhone(t *testing.T) {
	svc, _, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)

	order, err := svc.Track(context.Background(), orderID, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)

	_, err = svc.Track(context.Background(), orderID, "1111111111")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Track(context.Background(), orderID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusAppendsTimeline(t *testing.T) {
	svc, orderStore, productStore := newTestService(t)
	productID := productStore.add(&models.Product{
		Name: "Buttons", Price: 50000, StockQty: 5, InStock: true,
		Status: models.ProductStatusActive,
	})
	orderID := paidOrderFixture(t, svc, productStore, 1, productID)

	require.NoError(t, svc.UpdateStatus(context.Background(), orderID, models.OrderStatusRefunded, "refunded on request", "admin"))

	order := orderStore.orders[orderID]
	assert.Equal(t, models.OrderStatusRefunded, order.Status)
	last := order.Timeline[len(order.Timeline)-1]
	assert.Equal(t, "refunded on request", last.Note)
	assert.Equal(t, "admin", last.UpdatedBy)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.UpdateStatus(context.Background(), primitive.NewObjectID(), "teleported", "", "admin")
	var vErr ValidationError
	assert.ErrorAs(t, err, &vErr)
}

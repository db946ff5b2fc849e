package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

var (
	// ErrNotFound means the referenced order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrSignatureInvalid means the payment callback HMAC did not match. The
	// computed signature is never included in the error.
	ErrSignatureInvalid = errors.New("payment verification failed")
	// ErrNotPayable means the order is no longer in a state that accepts a
	// payment (cancelled, refunded, stale).
	ErrNotPayable = errors.New("order is not awaiting payment")
	// ErrAlreadyShipped guards against duplicate shipment creation.
	ErrAlreadyShipped = errors.New("order already has a tracking number")
)

// ValidationError rejects a malformed checkout payload before any side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OrderStore is the persistence surface the lifecycle service needs. The
// mongo implementation lives in mongo_store.go; tests use an in-memory fake.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	NextSequence(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByWaybill(ctx context.Context, waybill string) (*models.Order, error)

	// SetGatewayOrderID records the intent id on a still-pending order.
	SetGatewayOrderID(ctx context.Context, id primitive.ObjectID, gatewayOrderID string) error

	// ClaimPaid performs the conditional paid transition: it matches only when
	// the order is still awaiting payment (status=created, payment not paid)
	// and atomically sets paid/processing, the gateway identifiers, and the
	// timeline entry. Returns false without error when nothing matched.
	ClaimPaid(ctx context.Context, id primitive.ObjectID, gatewayOrderID, gatewayPaymentID, signature string, entry models.TimelineEntry) (bool, error)

	// MarkPaymentFailed flags a failed verification attempt and appends the
	// timeline entry. The order stays in status=created.
	MarkPaymentFailed(ctx context.Context, id primitive.ObjectID, entry models.TimelineEntry) error

	// CancelIfStale cancels an order only while it is still created+pending
	// and was created before cutoff. Returns whether it cancelled.
	CancelIfStale(ctx context.Context, id primitive.ObjectID, cutoff time.Time, entry models.TimelineEntry) (bool, error)

	// SetShipped records fulfillment and transitions processing -> shipped.
	SetShipped(ctx context.Context, id primitive.ObjectID, f models.Fulfillment, entry models.TimelineEntry) error

	// SetDelivered closes out fulfillment on a carrier "delivered" event.
	SetDelivered(ctx context.Context, id primitive.ObjectID, deliveredAt time.Time, carrierStatus string, entry models.TimelineEntry) error

	// SetCarrierStatus stores an unmapped carrier status without touching the
	// top-level order status.
	SetCarrierStatus(ctx context.Context, id primitive.ObjectID, carrierStatus string) error

	// UpdateStatus is the admin manual transition; it appends the entry.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, entry models.TimelineEntry) error
}

// ProductStore is the stock side of the ledger.
type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// SaveStock persists stockQty, variantPricing and the derived inStock flag.
	SaveStock(ctx context.Context, p *models.Product) error
}

// TxnRunner wraps the paid transition and its stock decrements in one
// transaction. The in-memory fake just invokes fn.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway is the slice of the payment client the service uses.
type Gateway interface {
	VerifySignature(gatewayOrderID, gatewayPaymentID, supplied string) bool
}

package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// MongoOrderStore persists orders in the "orders" collection.
type MongoOrderStore struct {
	db *mongo.Database
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{db: db}
}

func (s *MongoOrderStore) collection() *mongo.Collection {
	return s.db.Collection("orders")
}

func (s *MongoOrderStore) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	res, err := s.collection().InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	order.ID = id
	return id, nil
}

// NextSequence increments the order counter document, creating it on first
// use. The sequence feeds the human-readable order number.
func (s *MongoOrderStore) NextSequence(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": "orderNumber"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrderStore) FindByWaybill(ctx context.Context, waybill string) (*models.Order, error) {
	var order models.Order
	err := s.collection().FindOne(ctx, bson.M{"$or": []bson.M{
		{"fulfillment.trackingNumber": waybill},
		{"fulfillment.carrierWaybill": waybill},
	}}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrderStore) SetGatewayOrderID(ctx context.Context, id primitive.ObjectID, gatewayOrderID string) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id, "payment.status": models.PaymentStatusPending},
		bson.M{"$set": bson.M{
			"payment.gatewayOrderId": gatewayOrderID,
			"updatedAt":              time.Now(),
		}},
	)
	return err
}

// ClaimPaid is the idempotency core: the filter only matches an order that is
// still awaiting payment, so concurrent or replayed verifications claim the
// transition at most once. The unique partial index on payment.gatewayPaymentId
// backstops this across server instances.
func (s *MongoOrderStore) ClaimPaid(ctx context.Context, id primitive.ObjectID, gatewayOrderID, gatewayPaymentID, signature string, entry models.TimelineEntry) (bool, error) {
	res, err := s.collection().UpdateOne(ctx,
		bson.M{
			"_id":            id,
			"status":         models.OrderStatusCreated,
			"payment.status": bson.M{"$ne": models.PaymentStatusPaid},
		},
		bson.M{
			"$set": bson.M{
				"status":                   models.OrderStatusProcessing,
				"payment.status":           models.PaymentStatusPaid,
				"payment.gatewayOrderId":   gatewayOrderID,
				"payment.gatewayPaymentId": gatewayPaymentID,
				"payment.gatewaySignature": signature,
				"updatedAt":                entry.Timestamp,
			},
			"$push": bson.M{"timeline": entry},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoOrderStore) MarkPaymentFailed(ctx context.Context, id primitive.ObjectID, entry models.TimelineEntry) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id, "payment.status": bson.M{"$ne": models.PaymentStatusPaid}},
		bson.M{
			"$set": bson.M{
				"payment.status": models.PaymentStatusFailed,
				"updatedAt":      entry.Timestamp,
			},
			"$push": bson.M{"timeline": entry},
		},
	)
	return err
}

func (s *MongoOrderStore) CancelIfStale(ctx context.Context, id primitive.ObjectID, cutoff time.Time, entry models.TimelineEntry) (bool, error) {
	res, err := s.collection().UpdateOne(ctx,
		bson.M{
			"_id":            id,
			"status":         models.OrderStatusCreated,
			"payment.status": models.PaymentStatusPending,
			"createdAt":      bson.M{"$lt": cutoff},
		},
		bson.M{
			"$set": bson.M{
				"status":         models.OrderStatusCancelled,
				"payment.status": models.PaymentStatusFailed,
				"updatedAt":      entry.Timestamp,
			},
			"$push": bson.M{"timeline": entry},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoOrderStore) SetShipped(ctx context.Context, id primitive.ObjectID, f models.Fulfillment, entry models.TimelineEntry) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id, "status": models.OrderStatusProcessing},
		bson.M{
			"$set": bson.M{
				"status":      models.OrderStatusShipped,
				"fulfillment": f,
				"updatedAt":   entry.Timestamp,
			},
			"$push": bson.M{"timeline": entry},
		},
	)
	return err
}

func (s *MongoOrderStore) SetDelivered(ctx context.Context, id primitive.ObjectID, deliveredAt time.Time, carrierStatus string, entry models.TimelineEntry) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"status":                    models.OrderStatusDelivered,
				"fulfillment.deliveredAt":   deliveredAt,
				"fulfillment.carrierStatus": carrierStatus,
				"updatedAt":                 entry.Timestamp,
			},
			"$push": bson.M{"timeline": entry},
		},
	)
	return err
}

func (s *MongoOrderStore) SetCarrierStatus(ctx context.Context, id primitive.ObjectID, carrierStatus string) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"fulfillment.carrierStatus": carrierStatus,
			"updatedAt":                 time.Now(),
		}},
	)
	return err
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, entry models.TimelineEntry) error {
	res, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":  bson.M{"status": status, "updatedAt": entry.Timestamp},
			"$push": bson.M{"timeline": entry},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoProductStore persists products in the "products" collection.
type MongoProductStore struct {
	db *mongo.Database
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{db: db}
}

func (s *MongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *MongoProductStore) SaveStock(ctx context.Context, p *models.Product) error {
	update := bson.M{
		"stockQty":  p.StockQty,
		"inStock":   p.InStock,
		"updatedAt": time.Now(),
	}
	if len(p.VariantPricing) > 0 {
		update["variantPricing"] = p.VariantPricing
	}
	_, err := s.db.Collection("products").UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": update},
	)
	return err
}

// MongoTxn runs a function inside a session transaction so the paid
// transition and its stock decrements commit together.
type MongoTxn struct {
	client *mongo.Client
}

func NewMongoTxn(client *mongo.Client) *MongoTxn {
	return &MongoTxn{client: client}
}

func (t *MongoTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

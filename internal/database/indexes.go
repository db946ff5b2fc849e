package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	orderNumberIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orderNumber", Value: 1}},
		Options: options.Index().
			SetName("orderNumber_unique").
			SetUnique(true),
	}

	// Unique on gatewayPaymentId backstops the conditional-update guard in the
	// verification path against concurrent replays. Partial so pending orders
	// (no payment id yet) don't collide.
	paymentIDIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "payment.gatewayPaymentId", Value: 1}},
		Options: options.Index().
			SetName("gatewayPaymentId_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"payment.gatewayPaymentId": bson.M{"$type": "string"},
			}),
	}

	createdAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_index"),
	}

	trackingIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "fulfillment.trackingNumber", Value: 1}},
		Options: options.Index().SetName("trackingNumber_index").SetSparse(true),
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		orderNumberIndex, paymentIDIndex, createdAtIndex, trackingIndex,
	})
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	skuIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().
			SetName("sku_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"sku": bson.M{"$type": "string"},
			}),
	}

	variantSKUIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "variantPricing.sku", Value: 1}},
		Options: options.Index().SetName("variant_sku_index").SetSparse(true),
	}

	log.Println("EnsureProductIndexes: creating product indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{skuIndex, variantSKUIndex})
	if err != nil {
		log.Println("EnsureProductIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureBlogIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("blogs").Indexes()

	slugIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().
			SetName("slug_unique").
			SetUnique(true),
	}

	log.Println("EnsureBlogIndexes: creating slug_unique index")
	_, err := indexes.CreateOne(ctx, slugIndex)
	if err != nil {
		log.Println("EnsureBlogIndexes: slug index error:", err)
		return err
	}
	return nil
}

// Maintenance CLI for the product catalog: seeding sample data, auditing
// stock flags, and normalizing image URLs. Talks to the same collections as
// the server and is never required at runtime.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/models"
)

func main() {
	seed := flag.Bool("seed", false, "insert sample products")
	auditStock := flag.Bool("audit-stock", false, "report products whose inStock flag disagrees with the derivation")
	fixStock := flag.Bool("fix-stock", false, "rewrite inStock flags found wrong by the audit")
	normalizeImages := flag.String("normalize-images", "", "old=new URL prefix rewrite for product images")
	flag.Parse()

	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(config.AppEnv.DBName)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch {
	case *seed:
		if err := seedProducts(ctx, db); err != nil {
			log.Fatal(err)
		}
	case *auditStock || *fixStock:
		if err := runStockAudit(ctx, db, *fixStock); err != nil {
			log.Fatal(err)
		}
	case *normalizeImages != "":
		if err := runImageNormalize(ctx, db, *normalizeImages); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
	}
}

func seedProducts(ctx context.Context, db *mongo.Database) error {
	now := time.Now()
	seedDocs := []models.Product{
		{
			Name:     "Brass Buttons 12mm",
			Price:    5000,
			Category: models.StringList{"buttons"},
			SKU:      "BTN-BR-12",
			StockQty: 500,
			Status:   models.ProductStatusActive,
		},
		{
			Name:     "Nylon Zipper 6in",
			Price:    3000,
			Category: models.StringList{"zippers"},
			Status:   models.ProductStatusActive,
			VariantPricing: []models.Variant{
				{SKU: "ZIP-6-NVY", Color: "Navy", Price: 3500, StockQty: 200},
				{SKU: "ZIP-6-BLK", Color: "Black", Price: 3000, StockQty: 350},
			},
		},
		{
			Name:     "Woven Labels Pack of 100",
			Price:    45000,
			Category: models.StringList{"labels"},
			SKU:      "LBL-WVN-100",
			StockQty: 40,
			Status:   models.ProductStatusActive,
		},
	}

	docs := make([]interface{}, 0, len(seedDocs))
	for i := range seedDocs {
		p := &seedDocs[i]
		for j := range p.VariantPricing {
			v := &p.VariantPricing[j]
			v.InStock = v.StockQty > 0
		}
		p.RecomputeInStock()
		p.CreatedAt = now
		p.UpdatedAt = now
		docs = append(docs, *p)
	}

	res, err := db.Collection("products").InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("seed insert: %w", err)
	}
	log.Printf("seeded %d products", len(res.InsertedIDs))
	return nil
}

// runStockAudit compares each product's stored inStock flag against the
// derivation and optionally rewrites mismatches.
func runStockAudit(ctx context.Context, db *mongo.Database, fix bool) error {
	cursor, err := db.Collection("products").Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	mismatches := 0
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return err
		}

		derived := p.DeriveInStock()
		if derived == p.InStock {
			continue
		}

		mismatches++
		log.Printf("mismatch: product %s (%s) stored inStock=%v derived=%v",
			p.ID.Hex(), p.Name, p.InStock, derived)

		if fix {
			_, err := db.Collection("products").UpdateOne(ctx,
				bson.M{"_id": p.ID},
				bson.M{"$set": bson.M{"inStock": derived, "updatedAt": time.Now()}})
			if err != nil {
				return fmt.Errorf("fixing product %s: %w", p.ID.Hex(), err)
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	log.Printf("audit complete: %d mismatches (fix=%v)", mismatches, fix)
	return nil
}

func runImageNormalize(ctx context.Context, db *mongo.Database, pair string) error {
	parts := strings.SplitN(pair, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return fmt.Errorf("expected old=new prefix pair, got %q", pair)
	}
	oldPrefix, newPrefix := parts[0], parts[1]

	cursor, err := db.Collection("products").Find(ctx, bson.M{
		"images": bson.M{"$regex": "^" + oldPrefix},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	updated := 0
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return err
		}

		changed := false
		for i, img := range p.Images {
			if strings.HasPrefix(img, oldPrefix) {
				p.Images[i] = newPrefix + strings.TrimPrefix(img, oldPrefix)
				changed = true
			}
		}
		if !changed {
			continue
		}

		_, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": p.ID},
			bson.M{"$set": bson.M{"images": p.Images, "updatedAt": time.Now()}})
		if err != nil {
			return fmt.Errorf("updating product %s: %w", p.ID.Hex(), err)
		}
		updated++
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	log.Printf("normalized image URLs on %d products", updated)
	return nil
}

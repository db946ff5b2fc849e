package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type productCreateRequest struct {
	Name           string           `json:"name" binding:"required"`
	Price          int64            `json:"price"`
	Category       []string         `json:"category"`
	Description    string           `json:"description"`
	Images         []string         `json:"images"`
	SKU            string           `json:"sku"`
	StockQty       int              `json:"stockQty"`
	VariantPricing []models.Variant `json:"variantPricing"`
	Status         string           `json:"status"`
}

type productUpdateRequest struct {
	Name           *string           `json:"name"`
	Price          *int64            `json:"price"`
	Category       *[]string         `json:"category"`
	Description    *string           `json:"description"`
	Images         *[]string         `json:"images"`
	SKU            *string           `json:"sku"`
	StockQty       *int              `json:"stockQty"`
	VariantPricing *[]models.Variant `json:"variantPricing"`
	Status         *string           `json:"status"`
}

func validProductStatus(status string) bool {
	return status == models.ProductStatusActive || status == models.ProductStatusDraft
}

/* =========================
   ADMIN PRODUCT CRUD
========================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		// Admin sees drafts too.
		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			if !validProductStatus(status) {
				respondWithError(c, http.StatusBadRequest, route, "invalid status filter")
				return
			}
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		status := req.Status
		if status == "" {
			status = models.ProductStatusActive
		}
		if !validProductStatus(status) {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:           strings.TrimSpace(req.Name),
			Price:          req.Price,
			Category:       models.StringList(req.Category),
			Description:    req.Description,
			Images:         models.StringList(req.Images),
			SKU:            strings.TrimSpace(req.SKU),
			StockQty:       req.StockQty,
			VariantPricing: req.VariantPricing,
			Status:         status,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		for i := range product.VariantPricing {
			v := &product.VariantPricing[i]
			v.InStock = v.StockQty > 0
		}
		product.RecomputeInStock()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}

		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if req.Name != nil {
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		if req.Category != nil {
			existing.Category = models.StringList(*req.Category)
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.Images != nil {
			existing.Images = models.StringList(*req.Images)
		}
		if req.SKU != nil {
			existing.SKU = strings.TrimSpace(*req.SKU)
		}
		if req.StockQty != nil {
			existing.StockQty = *req.StockQty
		}
		if req.VariantPricing != nil {
			existing.VariantPricing = *req.VariantPricing
			for i := range existing.VariantPricing {
				v := &existing.VariantPricing[i]
				v.InStock = v.StockQty > 0
			}
		}
		if req.Status != nil {
			if !validProductStatus(*req.Status) {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			existing.Status = *req.Status
		}

		// inStock is derived, never accepted from the request.
		existing.RecomputeInStock()
		existing.UpdatedAt = time.Now()

		_, err = db.Collection("products").ReplaceOne(ctx, bson.M{"_id": productID}, existing)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, existing)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

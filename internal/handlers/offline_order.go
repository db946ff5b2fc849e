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

type offlineOrderCreateRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Notes        string `json:"notes"`
	Amount       int64  `json:"amount" binding:"required,min=1"`
}

func CreateOfflineOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/offline-orders"
		defer handlePanic(c, route)

		var req offlineOrderCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "customerName, phone and amount are required")
			return
		}

		now := time.Now()
		order := models.OfflineOrder{
			CustomerName: strings.TrimSpace(req.CustomerName),
			Phone:        strings.TrimSpace(req.Phone),
			Notes:        req.Notes,
			Amount:       req.Amount,
			Status:       models.OfflineOrderOpen,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("offlineorders").InsertOne(ctx, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		c.JSON(http.StatusCreated, order)
	}
}

func GetOfflineOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/offline-orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("offlineorders").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		offlineOrders := make([]models.OfflineOrder, 0)
		if err := cursor.All(ctx, &offlineOrders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, offlineOrders)
	}
}

type offlineOrderUpdateRequest struct {
	Notes  *string `json:"notes"`
	Amount *int64  `json:"amount"`
	Status *string `json:"status"`
}

func UpdateOfflineOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/offline-orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req offlineOrderUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Notes != nil {
			set["notes"] = *req.Notes
		}
		if req.Amount != nil {
			if *req.Amount < 1 {
				respondWithError(c, http.StatusBadRequest, route, "amount must be positive")
				return
			}
			set["amount"] = *req.Amount
		}
		if req.Status != nil {
			switch *req.Status {
			case models.OfflineOrderOpen, models.OfflineOrderInvoiced, models.OfflineOrderCompleted:
			default:
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			set["status"] = *req.Status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("offlineorders").UpdateOne(ctx,
			bson.M{"_id": orderID}, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "offline order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "offline order updated"})
	}
}

func DeleteOfflineOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/offline-orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("offlineorders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "offline order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "offline order deleted"})
	}
}

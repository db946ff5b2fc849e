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

type quoteRequestCreate struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message" binding:"required"`
}

func CreateQuoteRequest(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /quote-requests"
		defer handlePanic(c, route)

		var req quoteRequestCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "name, phone and message are required")
			return
		}

		now := time.Now()
		quote := models.QuoteRequest{
			Name:      strings.TrimSpace(req.Name),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     strings.TrimSpace(req.Email),
			Company:   strings.TrimSpace(req.Company),
			Message:   req.Message,
			Status:    models.QuoteStatusNew,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("quoterequests").InsertOne(ctx, quote)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			quote.ID = id
		}

		c.JSON(http.StatusCreated, quote)
	}
}

func GetQuoteRequests(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/quote-requests"
		defer handlePanic(c, route)

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("quoterequests").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		quotes := make([]models.QuoteRequest, 0)
		if err := cursor.All(ctx, &quotes); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, quotes)
	}
}

type quoteStatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func UpdateQuoteRequest(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/quote-requests/:id"
		defer handlePanic(c, route)

		quoteID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req quoteStatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "status is required")
			return
		}

		switch req.Status {
		case models.QuoteStatusNew, models.QuoteStatusContacted, models.QuoteStatusClosed:
		default:
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("quoterequests").UpdateOne(ctx,
			bson.M{"_id": quoteID},
			bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "quote request not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "quote request updated"})
	}
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/orders"
)

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var input orders.CreateOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := svc.Create(ctx, input)
		if err != nil {
			var vErr orders.ValidationError
			if errors.As(err, &vErr) {
				respondWithError(c, http.StatusBadRequest, route, vErr.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "could not create order")
			return
		}

		log.Printf("[%s] order %s created, total %d paise", route, res.OrderNumber, res.Total)

		c.JSON(http.StatusCreated, gin.H{
			"orderId":        res.OrderID.Hex(),
			"orderNumber":    res.OrderNumber,
			"totalInSubunit": res.Total,
		})
	}
}

/* =========================
   TRACK ORDER
========================= */

// TrackOrder is authorized by possession of both the order id and the phone
// number on the order, not by a session.
func TrackOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/track"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Query("orderId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "orderId and phone are required")
			return
		}
		phone := strings.TrimSpace(c.Query("phone"))
		if phone == "" {
			respondWithError(c, http.StatusBadRequest, route, "orderId and phone are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := svc.Track(ctx, orderID, phone)
		if err != nil {
			if errors.Is(err, orders.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/gateway"
	"backend/internal/orders"
)

type createPaymentOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreatePaymentOrder registers a gateway intent for a pending order. The
// charged amount always comes from the stored order total, never the client.
func CreatePaymentOrder(svc *orders.Service, gw *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/order"
		defer handlePanic(c, route)

		var req createPaymentOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "orderId is required")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		order, err := svc.Get(ctx, orderID)
		if err != nil {
			if errors.Is(err, orders.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		receipt := "rcpt_" + uuid.NewString()
		intent, err := gw.CreateOrder(ctx, order.Total, receipt)
		if err != nil {
			var minErr gateway.AmountBelowMinimumError
			switch {
			case errors.Is(err, gateway.ErrNotConfigured):
				respondWithError(c, http.StatusInternalServerError, route, "payment gateway not configured")
			case errors.As(err, &minErr):
				respondWithError(c, http.StatusBadRequest, route, minErr.Error())
			default:
				log.Printf("[%s] gateway failure: %v", route, err)
				respondWithError(c, http.StatusBadGateway, route, "payment gateway error")
			}
			return
		}

		if _, err := svc.AttachGatewayOrder(ctx, orderID, intent.GatewayOrderID); err != nil {
			if errors.Is(err, orders.ErrNotPayable) {
				respondWithError(c, http.StatusConflict, route, "order is not awaiting payment")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"gatewayOrderId": intent.GatewayOrderID,
			"amount":         intent.Amount,
			"currency":       intent.Currency,
		})
	}
}

type verifyPaymentRequest struct {
	OrderID          string `json:"orderId" binding:"required"`
	GatewayOrderID   string `json:"gatewayOrderId" binding:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// VerifyPayment validates the callback signature and transitions the order.
// Failures return a generic message; the expected signature is never echoed.
func VerifyPayment(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/verify"
		defer handlePanic(c, route)

		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		err = svc.VerifyPayment(ctx, orderID, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"status": "paid"})
		case errors.Is(err, orders.ErrSignatureInvalid):
			respondWithError(c, http.StatusBadRequest, route, "payment verification failed")
		case errors.Is(err, orders.ErrNotPayable):
			respondWithError(c, http.StatusConflict, route, "order is not awaiting payment")
		case errors.Is(err, orders.ErrNotFound):
			respondWithError(c, http.StatusNotFound, route, "order not found")
		default:
			log.Printf("[%s] verification error: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "verification error")
		}
	}
}

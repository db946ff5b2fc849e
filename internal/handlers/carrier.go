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

	"backend/internal/carrier"
	"backend/internal/orders"
)

// CreateShipment registers the order with the carrier and marks it shipped.
// The duplicate guard lives in the service: an order that already carries a
// tracking number is rejected before the carrier is contacted.
func CreateShipment(svc *orders.Service, client *carrier.Client, pickupLocation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/shipment"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
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
		if order.TrackingNumber() != "" {
			respondWithError(c, http.StatusConflict, route, "order already has a shipment")
			return
		}

		shipment, err := client.CreateShipment(ctx, order, pickupLocation)
		if err != nil {
			var carrierErr carrier.CarrierError
			switch {
			case errors.Is(err, carrier.ErrNotConfigured):
				respondWithError(c, http.StatusInternalServerError, route, "carrier not configured")
			case errors.As(err, &carrierErr):
				// Admin audience: upstream detail is fine here.
				respondWithError(c, http.StatusBadGateway, route, carrierErr.Error())
			default:
				respondWithError(c, http.StatusInternalServerError, route, "carrier error")
			}
			return
		}

		updated, err := svc.MarkShipped(ctx, orderID, shipment.Waybill, "Delhivery", "", "admin")
		if err != nil {
			if errors.Is(err, orders.ErrAlreadyShipped) {
				respondWithError(c, http.StatusConflict, route, "order already has a shipment")
				return
			}
			log.Printf("[%s] waybill %s created but order update failed: %v", route, shipment.Waybill, err)
			respondWithError(c, http.StatusInternalServerError, route, "shipment created but order update failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"waybill": shipment.Waybill,
			"status":  shipment.Status,
			"order":   updated,
		})
	}
}

type markShippedRequest struct {
	TrackingNumber string `json:"trackingNumber" binding:"required"`
	Carrier        string `json:"carrier"`
	TrackingURL    string `json:"trackingUrl"`
}

// MarkOrderShipped is the manual fulfillment path: an operator keys in a
// tracking number obtained outside the carrier integration.
func MarkOrderShipped(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/fulfillment"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req markShippedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "trackingNumber is required")
			return
		}
		if req.Carrier == "" {
			req.Carrier = "manual"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := svc.MarkShipped(ctx, orderID, req.TrackingNumber, req.Carrier, req.TrackingURL, "admin")
		if err != nil {
			switch {
			case errors.Is(err, orders.ErrNotFound):
				respondWithError(c, http.StatusNotFound, route, "order not found")
			case errors.Is(err, orders.ErrAlreadyShipped):
				respondWithError(c, http.StatusConflict, route, "order already has a tracking number")
			default:
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			}
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// TrackShipment proxies a read-only carrier lookup for the admin UI.
func TrackShipment(client *carrier.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/shipments/track"
		defer handlePanic(c, route)

		waybill := strings.TrimSpace(c.Query("waybill"))
		if waybill == "" {
			respondWithError(c, http.StatusBadRequest, route, "waybill is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		defer cancel()

		payload, err := client.Track(ctx, waybill)
		if err != nil {
			var carrierErr carrier.CarrierError
			switch {
			case errors.Is(err, carrier.ErrNotConfigured):
				respondWithError(c, http.StatusInternalServerError, route, "carrier not configured")
			case errors.As(err, &carrierErr):
				respondWithError(c, http.StatusBadGateway, route, carrierErr.Error())
			default:
				respondWithError(c, http.StatusInternalServerError, route, "carrier error")
			}
			return
		}

		c.Data(http.StatusOK, "application/json", payload)
	}
}

type carrierWebhookRequest struct {
	Waybill string `json:"waybill"`
	Status  string `json:"status"`
}

// CarrierWebhook ingests carrier status callbacks. A waybill that matches no
// order still gets a 200 so the carrier doesn't retry stale callbacks forever.
func CarrierWebhook(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /carrier/webhook"
		defer handlePanic(c, route)

		var req carrierWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Waybill) == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid payload")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := svc.ApplyCarrierEvent(ctx, strings.TrimSpace(req.Waybill), req.Status); err != nil {
			log.Printf("[%s] applying event for waybill %s: %v", route, req.Waybill, err)
			respondWithError(c, http.StatusInternalServerError, route, "webhook processing error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

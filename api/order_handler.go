package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/services"
)

type orderHandler struct {
	responder Responder
	logger    zerolog.Logger
	orders    *services.Orders
}

func newOrderHandler(orders *services.Orders, rc responderConfig) orderHandler {
	logger := log.With().Str("handlerName", "orderHandler").Logger()
	return orderHandler{
		responder: NewResponder(logger, rc),
		logger:    logger,
		orders:    orders,
	}
}

// createOrder places a card order for one of the caller's profiles
// @Summary Create order
// @Description The card design is copied from the profile at this moment and never changes afterwards.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body services.OrderInput true "Order"
// @Success 201 {object} models.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /orders [post]
func (h orderHandler) createOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		var in services.OrderInput
		if err := decodeJSON(w, r, &in, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		order, err := h.orders.Create(r.Context(), userID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusCreated, "Order created successfully", order)
	}
}

// @Summary List my orders
// @Tags Orders
// @Produce json
// @Success 200 {array} models.Order
// @Router /orders/my-orders [get]
func (h orderHandler) myOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		orders, err := h.orders.ListMine(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, orders)
	}
}

// @Summary Get my order
// @Tags Orders
// @Produce json
// @Param orderId path string true "Order ID" format(uuid)
// @Success 200 {object} models.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{orderId} [get]
func (h orderHandler) getOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		id, err := urlUUID(r, "orderId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		order, err := h.orders.GetMine(r.Context(), userID, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, order)
	}
}

// @Summary List all orders
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} services.OrderPage
// @Failure 403 {object} ErrorResponse
// @Router /orders/admin/all [get]
func (h orderHandler) listAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryPage(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out, err := h.orders.ListAll(r.Context(), r.URL.Query().Get("status"), page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Order statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} services.OrderStatistics
// @Router /orders/admin/statistics [get]
func (h orderHandler) statistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.orders.Statistics(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, stats)
	}
}

// @Summary Update order status
// @Tags Admin
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID" format(uuid)
// @Param body body services.StatusUpdate true "New status"
// @Success 200 {object} models.Order
// @Router /orders/admin/{orderId}/status [patch]
func (h orderHandler) updateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "orderId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in services.StatusUpdate
		if err := decodeJSON(w, r, &in, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		order, err := h.orders.UpdateStatus(r.Context(), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Order status updated", order)
	}
}

// @Summary Delete order
// @Tags Admin
// @Produce json
// @Param orderId path string true "Order ID" format(uuid)
// @Success 200 {object} envelope
// @Router /orders/admin/{orderId} [delete]
func (h orderHandler) deleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "orderId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.orders.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Order deleted successfully", nil)
	}
}

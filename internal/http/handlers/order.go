package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/factory"
	"github.com/hongminglow/pizza-be/internal/http/respond"
	"github.com/hongminglow/pizza-be/internal/metrics"
	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/models/dto"
	"github.com/hongminglow/pizza-be/internal/storage"
	"github.com/hongminglow/pizza-be/internal/validation"
)

// OrderHandler serves the menu and order placement.
type OrderHandler struct {
	base
	menu    storage.MenuStore
	orders  storage.OrderStore
	factory factory.Client
	metrics *metrics.Metrics
}

// NewOrderHandler constructs the handler. m may be nil.
func NewOrderHandler(menu storage.MenuStore, orders storage.OrderStore, fc factory.Client, authn *auth.Authenticator, m *metrics.Metrics, log *zap.Logger) *OrderHandler {
	return &OrderHandler{base: base{authn: authn, log: log}, menu: menu, orders: orders, factory: fc, metrics: m}
}

// Register attaches order routes to the mux.
func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/order/menu", h.public(h.handleGetMenu))
	mux.HandleFunc("PUT /api/order/menu", h.secured(h.handleAddMenuItem))
	mux.HandleFunc("GET /api/order", h.secured(h.handleListOrders))
	mux.HandleFunc("POST /api/order", h.secured(h.handleCreateOrder))
}

func (h *OrderHandler) handleGetMenu(w http.ResponseWriter, r *http.Request) error {
	menu, err := h.menu.GetMenu(r.Context())
	if err != nil {
		return err
	}
	if menu == nil {
		menu = []models.MenuItem{}
	}
	respond.JSON(w, http.StatusOK, menu)
	return nil
}

func (h *OrderHandler) handleAddMenuItem(w http.ResponseWriter, r *http.Request) error {
	if !currentUser(r).IsAdmin() {
		return errAuthorization("unable to add menu item")
	}
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := validation.MenuItem(body); err != nil {
		h.logViolations("invalid menu item", err)
		return errValidation("invalid menu item")
	}
	var req dto.UpdateMenuRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errValidation("invalid JSON payload")
	}

	if _, err := h.menu.AddMenuItem(r.Context(), models.MenuItem{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	}); err != nil {
		return err
	}
	return h.handleGetMenu(w, r)
}

func (h *OrderHandler) logViolations(msg string, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		h.log.Debug(msg, zap.Strings("violations", verr.Violations))
		return
	}
	h.log.Debug(msg, zap.Error(err))
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) error {
	diner := currentUser(r)
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	orders, more, err := h.orders.ListOrders(r.Context(), diner.ID, page)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respond.JSON(w, http.StatusOK, dto.ListOrdersResponse{DinerID: diner.ID, Orders: orders, Page: page, More: more})
	return nil
}

const fulfillmentFailed = "Failed to fulfill order at factory"

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) error {
	diner := currentUser(r)
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := validation.Order(body); err != nil {
		h.logViolations("invalid order", err)
		return errValidation("invalid order")
	}
	var req dto.CreateOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errValidation("invalid JSON payload")
	}

	order, err := h.orders.CreateOrder(r.Context(), models.Order{
		DinerID:     diner.ID,
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       req.Items,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFound("franchise or store not found")
		}
		return err
	}

	// The order already exists, so finish recording its outcome even if the
	// client goes away. The factory client enforces its own timeout.
	ctx := context.WithoutCancel(r.Context())
	start := time.Now()
	fulfillment, ferr := h.factory.Fulfill(ctx, factory.Request{
		Diner: factory.Diner{ID: diner.ID, Name: diner.Name, Email: diner.Email},
		Order: order,
	})
	if h.metrics != nil {
		h.metrics.FactoryDuration.Observe(time.Since(start).Seconds())
	}

	if ferr != nil {
		reportURL := factory.ReportURL(ferr)
		h.log.Warn("factory fulfillment failed",
			zap.Int64("order_id", order.ID),
			zap.Int64("diner_id", diner.ID),
			zap.Error(ferr),
		)
		h.complete(ctx, order.ID, models.OrderFailed, "", reportURL)
		respond.JSON(w, http.StatusInternalServerError, dto.OrderFailureResponse{Message: fulfillmentFailed, ReportURL: reportURL})
		return nil
	}

	h.complete(ctx, order.ID, models.OrderFulfilled, fulfillment.JWT, fulfillment.ReportURL)
	order.Status = models.OrderFulfilled
	respond.JSON(w, http.StatusOK, dto.CreateOrderResponse{Order: order, JWT: fulfillment.JWT, ReportURL: fulfillment.ReportURL})
	return nil
}

func (h *OrderHandler) complete(ctx context.Context, orderID int64, status models.OrderStatus, factoryJWT, reportURL string) {
	if h.metrics != nil {
		h.metrics.Orders.WithLabelValues(string(status)).Inc()
	}
	if err := h.orders.CompleteOrder(ctx, orderID, status, factoryJWT, reportURL); err != nil {
		h.log.Error("record order outcome", zap.Int64("order_id", orderID), zap.String("status", string(status)), zap.Error(err))
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type createOrderRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

type createOrderResponse struct {
	Order         *domain.Order `json:"order"`
	PaymentStatus string        `json:"paymentStatus"`
	CartCleared   bool          `json:"cartCleared"`
}

// Create handles POST /api/orders.
//
// @Summary      Finalize the cart into an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Payment reference"
// @Success      201   {object}  createOrderResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.service.Finalize(c.Request().Context(), p.User.ID, req.PaymentIntentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createOrderResponse{
		Order:         res.Order,
		PaymentStatus: string(res.PaymentStatus),
		CartCleared:   res.CartCleared,
	})
}

// List handles GET /api/orders.
//
// @Summary      List the caller's orders, newest first
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Order
// @Router       /api/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orders, err := h.service.List(c.Request().Context(), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

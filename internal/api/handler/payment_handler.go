package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type createIntentRequest struct {
	// Amount is in major units, e.g. 25.00.
	Amount       decimal.Decimal   `json:"amount"       swaggertype:"number"`
	CartItems    []json.RawMessage `json:"cartItems"    validate:"required"`
	PaySessionID string            `json:"paySessionId" validate:"required,max=128"`
}

type createIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent handles POST /api/payments/create-payment-intent.
//
// @Summary      Create a payment intent
// @Description  Repeating a request with the same paySessionId returns the same client secret.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIntentRequest  true  "Checkout attempt"
// @Success      200   {object}  createIntentResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/payments/create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid input data")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	amount, err := domain.MoneyFromDecimal(req.Amount)
	if err != nil {
		return badRequest(c, "amount must have at most two decimal places and not exceed 999999999.99")
	}

	secret, err := h.service.IssueIntent(c.Request().Context(), ports.IssueIntentInput{
		UserID:    p.User.ID,
		Amount:    amount,
		PayToken:  req.PaySessionID,
		ItemCount: len(req.CartItems),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, createIntentResponse{ClientSecret: secret})
}

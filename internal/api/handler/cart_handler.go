package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// CartHandler exposes the caller's cart.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"min=1,max=9999"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=1,max=9999"`
}

type cartItemResponse struct {
	ProductID string          `json:"productId"`
	Product   *domain.Product `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     domain.Money    `json:"price"`
	LineTotal domain.Money    `json:"lineTotal"`
}

type cartResponse struct {
	UserID string             `json:"userId"`
	Items  []cartItemResponse `json:"items"`
	Total  domain.Money       `json:"total"`
}

type cartMutationResponse struct {
	Message string       `json:"message"`
	Cart    cartResponse `json:"cart"`
}

func toCartResponse(v *ports.CartView) cartResponse {
	items := make([]cartItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, cartItemResponse{
			ProductID: it.ProductID,
			Product:   it.Product,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return cartResponse{UserID: v.UserID, Items: items, Total: v.Total}
}

// Get handles GET /api/cart.
//
// @Summary      Get the caller's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	view, err := h.service.Read(c.Request().Context(), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// Add handles POST /api/cart.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addToCartRequest  true  "Product and quantity"
// @Success      200   {object}  cartMutationResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/cart [post]
func (h *CartHandler) Add(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	view, err := h.service.AddLine(c.Request().Context(), p.User.ID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartMutationResponse{Message: "Product added to cart", Cart: toCartResponse(view)})
}

// Update handles PUT /api/cart/:productId.
//
// @Summary      Set the quantity of a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string                 true  "Product id"
// @Param        body       body      updateCartItemRequest  true  "New quantity"
// @Success      200        {object}  cartMutationResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /api/cart/{productId} [put]
func (h *CartHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	view, err := h.service.SetLineQuantity(c.Request().Context(), p.User.ID, c.Param("productId"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartMutationResponse{Message: "Cart updated successfully", Cart: toCartResponse(view)})
}

// Remove handles DELETE /api/cart/:productId.
//
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string  true  "Product id"
// @Success      200        {object}  cartMutationResponse
// @Router       /api/cart/{productId} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	view, err := h.service.RemoveLine(c.Request().Context(), p.User.ID, c.Param("productId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartMutationResponse{Message: "Item removed from cart", Cart: toCartResponse(view)})
}

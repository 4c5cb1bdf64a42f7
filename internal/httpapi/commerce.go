package httpapi

import (
	"net/http"

	"retail-crm/internal/commerce"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListCustomers(c *gin.Context) {
	out, err := h.Commerce.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch customers")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetCustomer(c *gin.Context) {
	out, err := h.Commerce.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch customer")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateCustomer(c *gin.Context) {
	var in commerce.CustomerInput
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.Commerce.CreateCustomer(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) UpdateCustomer(c *gin.Context) {
	var in commerce.CustomerUpdate
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.Commerce.UpdateCustomer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteCustomer(c *gin.Context) {
	if err := h.Commerce.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) ListOrders(c *gin.Context) {
	out, err := h.Commerce.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetOrder(c *gin.Context) {
	out, err := h.Commerce.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CustomerOrders(c *gin.Context) {
	out, err := h.Commerce.OrdersByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateOrder(c *gin.Context) {
	var in commerce.OrderInput
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.Commerce.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) UpdateOrder(c *gin.Context) {
	var in commerce.OrderUpdate
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.Commerce.UpdateOrder(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update order")
		return
	}
	c.JSON(http.StatusOK, out)
}

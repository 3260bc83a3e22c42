package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	storex "github.com/burgerhouse/orderchat/store"
)

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	{
		api.GET("/products", s.listProducts)
		api.GET("/cep/:cep", s.lookupCEP)
		api.GET("/track-order/:id", s.trackOrder)
		api.POST("/customer/login", s.customerLogin)
		api.GET("/customer/:id/orders", s.customerOrders)
	}
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.catalog.Active(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("product listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) lookupCEP(c *gin.Context) {
	addr, err := s.addresses.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cep"})
		case errors.Is(err, contractx.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "cep not found"})
		default:
			log.Warn().Err(err).Msg("cep lookup failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "cep service unavailable"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logradouro": addr.Street,
		"bairro":     addr.District,
		"localidade": addr.City,
		"uf":         addr.Region,
	})
}

func (s *Server) trackOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	status, err := s.orders.Status(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("order status lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": status})
}

type loginRequest struct {
	Phone     string `json:"phone" binding:"required"`
	SessionID string `json:"session_id"`
}

// customerLogin identifies a customer by phone. Cart lines created under the
// anonymous session are merged into the customer cart on success.
func (s *Server) customerLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	customer, err := s.customers.ByPhone(c.Request.Context(), onlyDigits(req.Phone))
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		log.Error().Err(err).Msg("customer lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if req.SessionID != "" {
		if err := s.carts.MergeAnonymous(c.Request.Context(), req.SessionID, customer.ID); err != nil {
			log.Warn().Err(err).Int64("customer_id", customer.ID).Msg("cart merge failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"customer": gin.H{
			"id":    customer.ID,
			"name":  customer.Name,
			"phone": customer.Phone,
			"city":  customer.City,
		},
	})
}

func (s *Server) customerOrders(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	orders, err := s.orders.RecentByCustomer(c.Request.Context(), customerID, 10)
	if err != nil {
		log.Error().Err(err).Int64("customer_id", customerID).Msg("order listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}
	if orders == nil {
		orders = []storex.OrderSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func onlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}

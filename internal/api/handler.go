package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	catalogService *service.CatalogService
	cartService    *service.CartService
	orderService   *service.OrderService
	paymentService *service.PaymentService
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	orderService *service.OrderService,
	paymentService *service.PaymentService,
) *Handler {
	return &Handler{
		catalogService: catalogService,
		cartService:    cartService,
		orderService:   orderService,
		paymentService: paymentService,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.listCategories)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:slug", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.GET("/cart/count", h.getCartCount)
		v1.POST("/cart", h.addCartItem)
		v1.PUT("/cart/:id", h.updateCartItem)
		v1.DELETE("/cart/:id", h.removeCartItem)
		v1.POST("/cart/merge", h.mergeCart)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)

		v1.GET("/payment-methods", h.listPaymentMethods)
		v1.GET("/payments/bank-details", h.getBankDetails)
		v1.POST("/payments/qr-card", h.payQRCard)
		v1.POST("/payments/bank-transfer", h.payBankTransfer)
		v1.POST("/payments/cash-delivery", h.payCashDelivery)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// cartOwner resolves cart ownership: authenticated user id wins, else the
// anonymous session id assigned by the web session layer.
func cartOwner(c *gin.Context) (store.CartOwner, bool) {
	if userHeader := c.GetHeader("X-User-ID"); userHeader != "" {
		userID, err := strconv.ParseInt(userHeader, 10, 64)
		if err == nil && userID > 0 {
			return store.CartOwner{UserID: userID}, true
		}
	}
	if sessionID := c.GetHeader("X-Session-ID"); sessionID != "" {
		return store.CartOwner{SessionID: sessionID}, true
	}
	return store.CartOwner{}, false
}

func requireOwner(c *gin.Context) (store.CartOwner, bool) {
	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing X-User-ID or X-Session-ID header",
		})
	}
	return owner, ok
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) listProducts(c *gin.Context) {
	filter := store.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.Query("q"),
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) getCart(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), owner)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) getCartCount(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	count, err := h.cartService.CartCount(c.Request.Context(), owner)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), owner, itemID, req.Quantity)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), owner, itemID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type mergeCartRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (h *Handler) mergeCart(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Session-ID header"})
		return
	}

	var req mergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.cartService.MergeOnLogin(c.Request.Context(), sessionID, req.UserID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// createOrder handles checkout. Business rejections carry bilingual
// messages so the storefront can render progress toward the minimum.
func (h *Handler) createOrder(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), owner, &req)
	if err != nil {
		var bizErr *service.BusinessError
		if errors.As(err, &bizErr) {
			c.JSON(http.StatusBadRequest, bizErr)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product in order"})
			return
		}
		h.serverError(c, err)
		return
	}

	// Cart clearing is the caller's job after a successful checkout;
	// a failure here must not undo the created order.
	if err := h.cartService.ClearCart(c.Request.Context(), owner); err != nil {
		h.logger.Warn("Failed to clear cart after checkout",
			zap.Int64("order_id", resp.OrderID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	detail, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) listPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.paymentService.PaymentMethods()})
}

func (h *Handler) getBankDetails(c *gin.Context) {
	c.JSON(http.StatusOK, h.paymentService.DestinationBankDetails())
}

type qrCardRequest struct {
	OrderID      int64  `json:"order_id" binding:"required"`
	CardNumber   string `json:"card_number"`
	QRCardNumber string `json:"qr_card_number"`
	SenderName   string `json:"sender_name"`
}

func (h *Handler) payQRCard(c *gin.Context) {
	var req qrCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cardNumber := req.CardNumber
	if cardNumber == "" {
		cardNumber = req.QRCardNumber
	}

	outcome, err := h.paymentService.ProcessQRCard(c.Request.Context(), req.OrderID, cardNumber, req.SenderName)
	if err != nil {
		h.paymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": outcome.Payment})
}

type bankTransferRequest struct {
	OrderID     int64                       `json:"order_id" binding:"required"`
	BankDetails service.BankTransferDetails `json:"bank_details" binding:"required"`
}

func (h *Handler) payBankTransfer(c *gin.Context) {
	var req bankTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	outcome, err := h.paymentService.ProcessBankTransfer(c.Request.Context(), req.OrderID, req.BankDetails)
	if err != nil {
		h.paymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"payment":      outcome.Payment,
		"bank_details": outcome.BankDetails,
	})
}

type cashDeliveryRequest struct {
	OrderID int64 `json:"order_id" binding:"required"`
}

func (h *Handler) payCashDelivery(c *gin.Context) {
	var req cashDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	outcome, err := h.paymentService.ProcessCashDelivery(c.Request.Context(), req.OrderID)
	if err != nil {
		h.paymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": outcome.Payment})
}

// paymentError maps payment failures: validation and business rejections
// are 4xx with bilingual messages, a missing order is 404, anything else
// is a server error.
func (h *Handler) paymentError(c *gin.Context, err error) {
	var bizErr *service.BusinessError
	if errors.As(err, &bizErr) {
		status := http.StatusBadRequest
		if bizErr == service.ErrPaymentAlreadyProcessed || bizErr == service.ErrPaymentInProgress {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"success":    false,
			"error":      bizErr.Code,
			"message_uz": bizErr.MessageUz,
			"message_ru": bizErr.MessageRu,
		})
		return
	}
	if strings.Contains(err.Error(), "not found") {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		return
	}
	h.serverError(c, err)
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

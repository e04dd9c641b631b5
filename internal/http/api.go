package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paygate/internal/auth"
	"paygate/internal/billing"
	"paygate/internal/service"
)

const contextEmailKey = "auth.email"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	billing billing.Service
	tokens  *auth.Service
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, billingSvc billing.Service, tokens *auth.Service, logger *logrus.Logger) *Handler {
	return &Handler{
		users:   users,
		billing: billingSvc,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	if h.logger != nil {
		router.Use(requestLog(h.logger))
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "hi")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": "ok"})
	})

	router.POST("/submit_creds", h.submitCreds)
	router.POST("/login", h.login)

	protected := router.Group("", h.authRequired())
	{
		protected.POST("/create-checkout-session", h.createCheckoutSession)
		protected.POST("/get-all-customer-charges", h.getAllCustomerCharges)
		protected.POST("/charge-user-on-usage", h.chargeUserOnUsage)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}
		if email := c.GetString(contextEmailKey); email != "" {
			fields["user"] = email
		}
		logger.WithFields(fields).Info("request handled")
	}
}

// authRequired guards protected routes. It is the only place token
// failures are translated into HTTP statuses.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Token is missing!"})
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed Authorization header"})
			return
		}

		email, err := h.tokens.Verify(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has expired!"})
			case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": fmt.Sprintf("Invalid token: %s", err)})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Unexpected error: %s", err)})
			}
			return
		}

		c.Set(contextEmailKey, email)
		c.Next()
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) submitCreds(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "User already exists!"})
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":        fmt.Sprintf("Hello %s, creds successfully received!", user.Name),
		"name":       user.Name,
		"email":      user.Email,
		"customerId": user.CustomerID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "User doesn't exist!"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	token, err := h.tokens.Issue(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Logged in!",
		"token":      token,
		"email":      user.Email,
		"user":       user.Name,
		"customerId": user.CustomerID,
	})
}

type checkoutRequest struct {
	PriceID        string `json:"price_id"`
	IsSubscription bool   `json:"is_subscription"`
	CustomerID     string `json:"customer_id"`
}

func (h *Handler) createCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionURL, err := h.billing.CreateCheckoutSession(c.Request.Context(), req.PriceID, req.CustomerID, req.IsSubscription)
	if err != nil {
		h.billingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_url": sessionURL})
}

type chargesRequest struct {
	CustomerID string `json:"customer_id"`
}

type transactionResponse struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
	Created  int64   `json:"created"`
}

func (h *Handler) getAllCustomerCharges(c *gin.Context) {
	var req chargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transactions, err := h.billing.ListAllCharges(c.Request.Context(), req.CustomerID)
	if err != nil {
		h.billingError(c, err)
		return
	}

	resp := make([]transactionResponse, len(transactions))
	for i, tx := range transactions {
		resp[i] = transactionResponse{
			ID:       tx.ID,
			Amount:   tx.Amount,
			Currency: tx.Currency,
			Status:   tx.Status,
			Created:  tx.Created,
		}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": resp})
}

type usageRequest struct {
	CustomerID string `json:"customer_id"`
	Units      int64  `json:"units"`
	PriceID    string `json:"price_id"`
}

func (h *Handler) chargeUserOnUsage(c *gin.Context) {
	var req usageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionURL, err := h.billing.ChargeForUsage(c.Request.Context(), req.CustomerID, req.Units, req.PriceID)
	if err != nil {
		h.billingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_url": sessionURL})
}

func (h *Handler) billingError(c *gin.Context, err error) {
	var gatewayErr *billing.GatewayError
	switch {
	case errors.Is(err, billing.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": gatewayErr.Msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

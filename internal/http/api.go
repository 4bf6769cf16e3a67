package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"campus-market/internal/auth"
	"campus-market/internal/domain"
	"campus-market/internal/kvstore"
	"campus-market/internal/metrics"
	"campus-market/internal/service"
)

const sessionContextKey = "session"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	products    service.ProductService
	prefs       kvstore.Store
	tokens      *auth.TokenManager
	latestLimit int
	logger      *logrus.Logger
}

func NewHandler(users service.UserService, products service.ProductService, prefs kvstore.Store, tokens *auth.TokenManager, latestLimit int, logger *logrus.Logger) *Handler {
	if latestLimit <= 0 {
		latestLimit = 6
	}
	return &Handler{
		users:       users,
		products:    products,
		prefs:       prefs,
		tokens:      tokens,
		latestLimit: latestLimit,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), metricsMiddleware())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/categories", h.listCategories)
		api.GET("/products", h.listProducts)
		api.GET("/products/latest", h.latestProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/users/:id", h.getUser)
		api.GET("/users/:id/products", h.sellerProducts)

		authed := api.Group("", h.requireAuth())
		{
			authed.POST("/auth/logout", h.logout)
			authed.GET("/auth/me", h.me)
			authed.PUT("/users/me", h.updateMe)
			authed.GET("/products/mine", h.myProducts)
			authed.POST("/products", h.createProduct)
			authed.PUT("/products/:id", h.updateProduct)
			authed.DELETE("/products/:id", h.deleteProduct)
			authed.GET("/preferences/:name", h.getPreference)
			authed.PUT("/preferences/:name", h.setPreference)
		}
	}
}

// ----- middleware -----

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

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.abortError(c, domain.ErrUnauthorized)
			return
		}
		claims, err := h.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			h.abortError(c, domain.ErrUnauthorized)
			return
		}
		sess, err := h.users.CurrentSession(c.Request.Context(), claims.ID)
		if err != nil || sess.UserID != claims.UserID {
			// session was logged out or never existed; the token is dead
			h.abortError(c, domain.ErrUnauthorized)
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *domain.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*domain.Session); ok {
			return sess
		}
	}
	return nil
}

// ----- envelope -----

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	c.JSON(h.errorStatus(c, err), envelope{Success: false, Message: errorMessage(err)})
}

func (h *Handler) abortError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(h.errorStatus(c, err), envelope{Success: false, Message: errorMessage(err)})
}

func (h *Handler) errorStatus(c *gin.Context, err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict
	default:
		h.logger.WithError(err).Errorf("%s %s failed", c.Request.Method, c.Request.URL.Path)
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	for _, known := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrNotFound,
		domain.ErrDuplicateEmail,
	} {
		if errors.Is(err, known) {
			return capitalize(known.Error())
		}
	}
	return "Something went wrong"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ----- auth handlers -----

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "Invalid request body"))
		return
	}

	sess, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.sessionToResponse(sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful!", resp)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "Invalid request body"))
		return
	}

	sess, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.respondError(c, err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	resp, err := h.sessionToResponse(sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful!", resp)
}

func (h *Handler) logout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.users.Logout(c.Request.Context(), sess.ID); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logged out successfully!", nil)
}

func (h *Handler) me(c *gin.Context) {
	sess := currentSession(c)
	respond(c, http.StatusOK, "", userPayload{
		ID:        sess.UserID,
		Name:      sess.Name,
		Email:     sess.Email,
		CreatedAt: sess.UserCreatedAt.Format(time.RFC3339),
	})
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "Invalid request body"))
		return
	}

	sess := currentSession(c)
	user, err := h.users.UpdateUser(c.Request.Context(), sess.UserID, domain.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated successfully", userToPayload(user))
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", userToPayload(user))
}

func (h *Handler) sessionToResponse(sess *domain.Session) (sessionResponse, error) {
	token, err := h.tokens.Generate(sess.ID, sess.UserID, time.Now().UTC())
	if err != nil {
		return sessionResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return sessionResponse{
		Token: token,
		User: userPayload{
			ID:        sess.UserID,
			Name:      sess.Name,
			Email:     sess.Email,
			CreatedAt: sess.UserCreatedAt.Format(time.RFC3339),
		},
	}, nil
}

func userToPayload(user *domain.User) userPayload {
	return userPayload{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// ----- product handlers -----

type productRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

type productPatchRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
}

type ProductResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	SellerID    string  `json:"seller_id"`
	SellerName  string  `json:"seller_name"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
	DeletedAt   *string `json:"deleted_at,omitempty"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "Invalid request body"))
		return
	}

	product, err := h.products.Add(c.Request.Context(), currentSession(c), service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    domain.Category(req.Category),
		Image:       req.Image,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	metrics.ProductsCreated.Inc()
	respond(c, http.StatusCreated, "Product posted successfully!", productToResponse(*product))
}

func (h *Handler) listProducts(c *gin.Context) {
	ctx := c.Request.Context()
	query := strings.TrimSpace(c.Query("q"))
	categoryParam := strings.TrimSpace(c.Query("category"))

	var category *domain.Category
	if categoryParam != "" {
		cat := domain.Category(categoryParam)
		category = &cat
	}

	var (
		products []domain.Product
		err      error
	)
	switch {
	case query != "":
		products, err = h.products.Search(ctx, query, category)
	case category != nil:
		products, err = h.products.GetByCategory(ctx, *category)
	default:
		products, err = h.products.GetAll(ctx)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", productsToResponse(products))
}

func (h *Handler) latestProducts(c *gin.Context) {
	limit := h.latestLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(c, domain.NewValidationError("limit", "Invalid limit"))
			return
		}
		limit = n
	}

	products, err := h.products.Latest(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", productsToResponse(products))
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", productToResponse(*product))
}

func (h *Handler) myProducts(c *gin.Context) {
	products, err := h.products.GetBySeller(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", productsToResponse(products))
}

func (h *Handler) sellerProducts(c *gin.Context) {
	products, err := h.products.GetBySeller(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	// public view hides delisted products
	active := products[:0:0]
	for _, p := range products {
		if p.Status == domain.ProductStatusActive {
			active = append(active, p)
		}
	}
	respond(c, http.StatusOK, "", productsToResponse(active))
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req productPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "Invalid request body"))
		return
	}

	patch := domain.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	}
	if req.Category != nil {
		cat := domain.Category(*req.Category)
		patch.Category = &cat
	}

	product, err := h.products.Update(c.Request.Context(), currentSession(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully!", productToResponse(*product))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully!", nil)
}

type categoryResponse struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
}

func (h *Handler) listCategories(c *gin.Context) {
	resp := make([]categoryResponse, len(domain.Categories))
	for i, cat := range domain.Categories {
		resp[i] = categoryResponse{Value: string(cat), DisplayName: cat.DisplayName()}
	}
	respond(c, http.StatusOK, "", resp)
}

// ----- preferences -----

type preferenceRequest struct {
	Value string `json:"value"`
}

func prefKey(userID, name string) string {
	return fmt.Sprintf("pref:%s:%s", userID, name)
}

func (h *Handler) getPreference(c *gin.Context) {
	sess := currentSession(c)
	var value string
	if err := h.prefs.Get(c.Request.Context(), prefKey(sess.UserID, c.Param("name")), &value); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"name": c.Param("name"), "value": value})
}

func (h *Handler) setPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "Invalid request body"))
		return
	}

	sess := currentSession(c)
	if err := h.prefs.Set(c.Request.Context(), prefKey(sess.UserID, c.Param("name")), req.Value); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Preference saved", nil)
}

// ----- response mapping -----

func productToResponse(product domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Category:    string(product.Category),
		Image:       product.Image,
		SellerID:    product.SellerID,
		SellerName:  product.SellerName,
		Status:      string(product.Status),
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
	}
	if product.UpdatedAt != nil {
		v := product.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &v
	}
	if product.DeletedAt != nil {
		v := product.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &v
	}
	return resp
}

func productsToResponse(products []domain.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(products[i])
	}
	return resp
}

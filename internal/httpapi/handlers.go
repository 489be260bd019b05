package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus-commerce/internal/cart"
	"campus-commerce/internal/catalog"
	"campus-commerce/internal/identity"
	"campus-commerce/internal/images"
	"campus-commerce/internal/rbac"
	"campus-commerce/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Catalog *catalog.Service
	Cart    *cart.Service
	Images  *images.Client
}

const maxImageUploadBytes = 10 << 20

// --- Products ---

func (h Handlers) ListPublicProducts(c *gin.Context) {
	req, ok := parseListRequest(c)
	if !ok {
		return
	}
	page, err := h.Catalog.ListPublic(c.Request.Context(), req)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListProducts(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	req, ok := parseListRequest(c)
	if !ok {
		return
	}
	page, err := h.Catalog.List(c.Request.Context(), uid, req)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) GetProduct(c *gin.Context) {
	p, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) CreateProduct(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var in catalog.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := h.Catalog.Create(c.Request.Context(), uid, in)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// CreateProductForm accepts multipart form data with an optional image file.
// A provided file is proxied to the image service and its public URL wins
// over any image_url field.
func (h Handlers) CreateProductForm(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price invalid"})
		return
	}
	stock := 0
	if v := c.PostForm("stock"); v != "" {
		if stock, err = strconv.Atoi(v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "stock invalid"})
			return
		}
	}

	in := catalog.CreateInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Category:    c.PostForm("category"),
		Career:      c.PostForm("career"),
		Stock:       stock,
		Image:       c.PostForm("image_url"),
	}

	if url, ok := h.uploadFormImage(c); ok {
		in.Image = url
	} else if c.IsAborted() {
		return
	}

	p, err := h.Catalog.Create(c.Request.Context(), uid, in)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) UpdateProduct(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var in catalog.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := h.Catalog.Update(c.Request.Context(), uid, c.Param("id"), in)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) UpdateProductForm(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in catalog.UpdateInput
	setStr := func(field string, dst **string) {
		if v, ok := c.GetPostForm(field); ok {
			*dst = &v
		}
	}
	setStr("name", &in.Name)
	setStr("description", &in.Description)
	setStr("category", &in.Category)
	setStr("career", &in.Career)
	setStr("image_url", &in.Image)

	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price invalid"})
			return
		}
		in.Price = &price
	}
	if v, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "stock invalid"})
			return
		}
		in.Stock = &stock
	}

	if url, ok := h.uploadFormImage(c); ok {
		in.Image = &url
	} else if c.IsAborted() {
		return
	}

	p, err := h.Catalog.Update(c.Request.Context(), uid, c.Param("id"), in)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) DeleteProduct(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		abortServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadFormImage proxies the optional image_file form part to the image
// service. Returns ("", false) when no file was sent; aborts the request on
// upload failure.
func (h Handlers) uploadFormImage(c *gin.Context) (string, bool) {
	fh, err := c.FormFile("image_file")
	if err != nil {
		return "", false
	}
	if h.Images == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "image upload not configured"})
		return "", false
	}
	if fh.Size > maxImageUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return "", false
	}

	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "image file unreadable"})
		return "", false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageUploadBytes+1))
	if err != nil || len(data) > maxImageUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return "", false
	}

	convertWebP := true
	if v, ok := c.GetPostForm("convert_webp"); ok {
		convertWebP = strings.EqualFold(v, "true")
	}

	url, err := h.Images.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), data, convertWebP)
	if err != nil {
		logger.FromGin(c).Error("image upload failed", "err", err.Error())
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return "", false
	}
	return url, true
}

// --- Cart ---

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h Handlers) GetCart(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	out, err := h.Cart.Get(c.Request.Context(), uid)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetCartFull(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	out, err := h.Cart.GetFull(c.Request.Context(), uid)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) AddCartItem(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Cart.AddItem(c.Request.Context(), uid, req.ProductID, req.Quantity)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) SetCartItem(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Cart.SetItemQuantity(c.Request.Context(), uid, req.ProductID, req.Quantity)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) RemoveCartItem(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	out, err := h.Cart.RemoveItem(c.Request.Context(), uid, c.Param("product_id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ClearCart(c *gin.Context) {
	uid, err := identity.UID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	out, err := h.Cart.Clear(c.Request.Context(), uid)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Me ---

// Me echoes the authenticated identity, profile included when provisioned.
func (h Handlers) Me(c *gin.Context) {
	ac, err := identity.FromContext(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uid":         ac.UID,
		"email":       ac.Email,
		"displayName": ac.DisplayName,
		"photoURL":    ac.PhotoURL,
		"profile":     ac.Profile,
	})
}

// --- helpers ---

func parseListRequest(c *gin.Context) (catalog.ListRequest, bool) {
	req := catalog.ListRequest{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Career:   c.Query("career"),
		Limit:    50,
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return catalog.ListRequest{}, false
		}
		req.Limit = n
	}
	if v := c.Query("cursor"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			t, err = time.Parse(time.RFC3339, v)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "cursor must be an RFC3339 timestamp"})
			return catalog.ListRequest{}, false
		}
		req.Cursor = t
	}
	return req, true
}

// abortServiceError maps service failures onto the error taxonomy: auth
// failures and availability map to their own statuses, everything else is a
// 500 with details kept in the logs.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rbac.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, identity.ErrUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "try again later"})
	case errors.Is(err, catalog.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, catalog.ErrInvalidArgument), errors.Is(err, cart.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid argument"})
	default:
		logger.FromGin(c).Error("request failed", "err", err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

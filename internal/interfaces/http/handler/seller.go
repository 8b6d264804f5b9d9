package handler

import (
	appcatalog "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// SellerHandler lets sellers manage their own products
type SellerHandler struct {
	BaseHandler
	catalog *appcatalog.Service
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(catalog *appcatalog.Service) *SellerHandler {
	return &SellerHandler{catalog: catalog}
}

// ListProducts handles GET /seller/products
func (h *SellerHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListSellerProducts(c.Request.Context(), currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// CreateProduct handles POST /seller/products
func (h *SellerHandler) CreateProduct(c *gin.Context) {
	var req appcatalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// UpdateProduct handles PUT /seller/products/:id
func (h *SellerHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// SetActive handles PATCH /seller/products/:id/active
func (h *SellerHandler) SetActive(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.catalog.SetProductActive(c.Request.Context(), currentUser(c), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DeleteProduct handles DELETE /seller/products/:id
func (h *SellerHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), currentUser(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RequestImageUpload handles POST /seller/products/:id/image
func (h *SellerHandler) RequestImageUpload(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	upload, err := h.catalog.RequestImageUpload(c.Request.Context(), currentUser(c), id, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// ConfirmImage handles PUT /seller/products/:id/image
func (h *SellerHandler) ConfirmImage(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.ImageConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.catalog.ConfirmImage(c.Request.Context(), currentUser(c), id, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// inventoryHandler serves products and their stock movements.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

// RegisterInventoryRoutes registers routes related to products and stock.
func RegisterInventoryRoutes(rg *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade) {
	h := &inventoryHandler{inventoryService: inventoryService}

	products := rg.Group("/products")
	{
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:productID", h.getProduct)
		products.GET("/:productID/movements", h.listMovements)
		products.PUT("/:productID/valuation-method", h.setValuationMethod)
		products.POST("/:productID/receipts", h.receiveStock)
		products.POST("/:productID/issues", h.issueStock)
	}
}

// createProduct godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Duplicate SKU"
// @Failure 500 {object} dto.ErrorResponse "Failed to create product"
// @Security BearerAuth
// @Router /products [post]
func (h *inventoryHandler) createProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	product, err := h.inventoryService.CreateProduct(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Product created", slog.String("product_id", product.ProductID), slog.String("sku", product.SKU))
	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

// listProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {object} dto.ListProductsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list products"
// @Security BearerAuth
// @Router /products [get]
func (h *inventoryHandler) listProducts(c *gin.Context) {
	products, err := h.inventoryService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	resp := dto.ListProductsResponse{Products: make([]dto.ProductResponse, len(products))}
	for i := range products {
		resp.Products[i] = dto.ToProductResponse(&products[i])
	}
	c.JSON(http.StatusOK, resp)
}

// getProduct godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param productID path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve product"
// @Security BearerAuth
// @Router /products/{productID} [get]
func (h *inventoryHandler) getProduct(c *gin.Context) {
	product, err := h.inventoryService.GetProduct(c.Request.Context(), c.Param("productID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// listMovements godoc
// @Summary List stock movements
// @Description Lists a product's receipts and issues in the order they were recorded
// @Tags products
// @Produce json
// @Param productID path string true "Product ID"
// @Success 200 {array} domain.StockMovement
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list movements"
// @Security BearerAuth
// @Router /products/{productID}/movements [get]
func (h *inventoryHandler) listMovements(c *gin.Context) {
	movements, err := h.inventoryService.ListMovements(c.Request.Context(), c.Param("productID"))
	if err != nil {
		respondError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, movements)
}

// setValuationMethod godoc
// @Summary Change a product's valuation method
// @Description Refused once the product has stock history
// @Tags products
// @Accept json
// @Produce json
// @Param productID path string true "Product ID"
// @Param method body dto.SetValuationMethodRequest true "Valuation method"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid method or standard cost"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 409 {object} dto.ErrorResponse "Valuation method locked"
// @Failure 500 {object} dto.ErrorResponse "Failed to change valuation method"
// @Security BearerAuth
// @Router /products/{productID}/valuation-method [put]
func (h *inventoryHandler) setValuationMethod(c *gin.Context) {
	var req dto.SetValuationMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	product, err := h.inventoryService.SetValuationMethod(c.Request.Context(), c.Param("productID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to change valuation method")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// receiveStock godoc
// @Summary Receive stock
// @Description Books incoming stock at cost and posts the inventory entry
// @Tags products
// @Accept json
// @Produce json
// @Param productID path string true "Product ID"
// @Param receipt body dto.StockReceiptRequest true "Receipt details"
// @Success 201 {object} dto.StockMovementResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid quantity or cost"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to receive stock"
// @Security BearerAuth
// @Router /products/{productID}/receipts [post]
func (h *inventoryHandler) receiveStock(c *gin.Context) {
	var req dto.StockReceiptRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	movement, product, err := h.inventoryService.ReceiveStock(c.Request.Context(), c.Param("productID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to receive stock")
		return
	}
	c.JSON(http.StatusCreated, dto.ToStockMovementResponse(movement, product))
}

// issueStock godoc
// @Summary Issue stock
// @Description Books outgoing stock at valuation cost and posts cost of goods sold
// @Tags products
// @Accept json
// @Produce json
// @Param productID path string true "Product ID"
// @Param issue body dto.StockIssueRequest true "Issue details"
// @Success 201 {object} dto.StockMovementResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid quantity"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 409 {object} dto.ErrorResponse "Insufficient stock"
// @Failure 500 {object} dto.ErrorResponse "Failed to issue stock"
// @Security BearerAuth
// @Router /products/{productID}/issues [post]
func (h *inventoryHandler) issueStock(c *gin.Context) {
	var req dto.StockIssueRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	movement, product, err := h.inventoryService.IssueStock(c.Request.Context(), c.Param("productID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to issue stock")
		return
	}
	c.JSON(http.StatusCreated, dto.ToStockMovementResponse(movement, product))
}

package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest defines a new inventory item. Accounts default to the
// configured inventory and cost-of-goods accounts.
type CreateProductRequest struct {
	SKU                string       `json:"sku" binding:"required,max=50"`
	Name               string       `json:"name" binding:"required,max=255"`
	Category           string       `json:"category" binding:"max=100"`
	ValuationMethod    string       `json:"valuationMethod" binding:"required,oneof=average_cost fifo standard_cost"`
	StandardCost       domain.Money `json:"standardCost"`
	SalePrice          domain.Money `json:"salePrice"`
	InventoryAccountID string       `json:"inventoryAccountID"`
	COGSAccountID      string       `json:"cogsAccountID"`
}

// SetValuationMethodRequest changes the method of a product without stock history.
type SetValuationMethodRequest struct {
	ValuationMethod string       `json:"valuationMethod" binding:"required,oneof=average_cost fifo standard_cost"`
	StandardCost    domain.Money `json:"standardCost"`
}

// StockReceiptRequest books incoming stock. OffsetAccountID is credited (defaults to
// accounts payable).
type StockReceiptRequest struct {
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        domain.Money    `json:"unitCost"`
	MovementDate    string          `json:"movementDate" binding:"required"`
	OffsetAccountID string          `json:"offsetAccountID"`
	Reference       string          `json:"reference" binding:"max=100"`
}

// StockIssueRequest books outgoing stock at valuation cost.
type StockIssueRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	MovementDate string          `json:"movementDate" binding:"required"`
	Reference    string          `json:"reference" binding:"max=100"`
}

// ProductResponse defines the data returned for a product.
type ProductResponse struct {
	ProductID          string                 `json:"productID"`
	SKU                string                 `json:"sku"`
	Name               string                 `json:"name"`
	Category           string                 `json:"category"`
	ValuationMethod    domain.ValuationMethod `json:"valuationMethod"`
	StandardCost       domain.Money           `json:"standardCost"`
	SalePrice          domain.Money           `json:"salePrice"`
	InventoryAccountID string                 `json:"inventoryAccountID"`
	COGSAccountID      string                 `json:"cogsAccountID"`
	QuantityOnHand     decimal.Decimal        `json:"quantityOnHand"`
	AverageCost        domain.Money           `json:"averageCost"`
	InventoryValue     domain.Money           `json:"inventoryValue"`
}

// ToProductResponse converts a domain.Product.
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ProductID:          p.ProductID,
		SKU:                p.SKU,
		Name:               p.Name,
		Category:           p.Category,
		ValuationMethod:    p.ValuationMethod,
		StandardCost:       p.StandardCost,
		SalePrice:          p.SalePrice,
		InventoryAccountID: p.InventoryAccountID,
		COGSAccountID:      p.COGSAccountID,
		QuantityOnHand:     p.Position.Quantity,
		AverageCost:        p.AverageCost(),
		InventoryValue:     p.Position.Value,
	}
}

// ListProductsResponse wraps the list of products.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// StockMovementResponse returns a movement with the product's new position.
type StockMovementResponse struct {
	MovementID   string              `json:"movementID"`
	Kind         domain.MovementKind `json:"kind"`
	Quantity     decimal.Decimal     `json:"quantity"`
	UnitCost     domain.Money        `json:"unitCost"`
	TotalCost    domain.Money        `json:"totalCost"`
	Variance     domain.Money        `json:"variance"`
	MovementDate string              `json:"movementDate"`
	EntryID      string              `json:"entryID"`
	Product      ProductResponse     `json:"product"`
}

// ToStockMovementResponse converts a movement and the product after it.
func ToStockMovementResponse(m *domain.StockMovement, p *domain.Product) StockMovementResponse {
	return StockMovementResponse{
		MovementID:   m.MovementID,
		Kind:         m.Kind,
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		TotalCost:    m.TotalCost,
		Variance:     m.Variance,
		MovementDate: FormatDate(m.MovementDate),
		EntryID:      m.EntryID,
		Product:      ToProductResponse(p),
	}
}

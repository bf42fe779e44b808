package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationMethod selects how issued stock is costed.
type ValuationMethod string

const (
	AverageCost  ValuationMethod = "average_cost"
	FIFO         ValuationMethod = "fifo"
	StandardCost ValuationMethod = "standard_cost"
)

// Valid reports whether m is a supported method.
func (m ValuationMethod) Valid() bool {
	switch m {
	case AverageCost, FIFO, StandardCost:
		return true
	}
	return false
}

// CostLayer is one receipt still (partly) on hand, consumed oldest first under FIFO.
type CostLayer struct {
	Quantity decimal.Decimal `json:"quantity"`
	Value    Money           `json:"value"`
}

// StockPosition is the quantity and carrying value of a product.
type StockPosition struct {
	Quantity decimal.Decimal `json:"quantity"`
	Value    Money           `json:"value"`
	Layers   []CostLayer     `json:"layers,omitempty"`
}

// Product is an inventory item valued by one of the valuation methods.
type Product struct {
	ProductID          string          `json:"productID"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Category           string          `json:"category"`
	ValuationMethod    ValuationMethod `json:"valuationMethod"`
	StandardCost       Money           `json:"standardCost"`
	SalePrice          Money           `json:"salePrice"`
	InventoryAccountID string          `json:"inventoryAccountID"`
	COGSAccountID      string          `json:"cogsAccountID"`
	Position           StockPosition   `json:"position"`
	MovementCount      int             `json:"movementCount"`
	AuditFields
}

// AverageCost is the current carrying value per unit, rounded to minor units.
func (p Product) AverageCost() Money {
	if p.Position.Quantity.IsZero() {
		return 0
	}
	return Money(decimal.NewFromInt(int64(p.Position.Value)).Div(p.Position.Quantity).Round(0).IntPart())
}

// Valuer returns the costing strategy configured for the product.
func (p Product) Valuer() (Valuer, error) {
	return NewValuer(p.ValuationMethod, p.StandardCost)
}

// MovementKind is the direction of a stock movement.
type MovementKind string

const (
	MovementReceipt MovementKind = "receipt"
	MovementIssue   MovementKind = "issue"
)

// StockMovement records one receipt or issue together with the entry it posted.
type StockMovement struct {
	MovementID   string          `json:"movementID"`
	ProductID    string          `json:"productID"`
	Sequence     int64           `json:"sequence"`
	Kind         MovementKind    `json:"kind"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     Money           `json:"unitCost"`
	TotalCost    Money           `json:"totalCost"`
	Variance     Money           `json:"variance"`
	MovementDate time.Time       `json:"movementDate"`
	EntryID      string          `json:"entryID"`
	Reference    string          `json:"reference,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `json:"createdBy"`
}

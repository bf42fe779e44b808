package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ReceiptValuation is the outcome of valuing a receipt.
type ReceiptValuation struct {
	// Cost is what the receipt costs the business (quantity x purchase price).
	Cost Money
	// InventoryValue is the amount added to the inventory account.
	InventoryValue Money
	// Variance is Cost minus InventoryValue; nonzero only under standard cost.
	Variance Money
}

// Valuer computes the new stock position for a movement. Implementations are pure:
// the input position is never modified.
type Valuer interface {
	Method() ValuationMethod
	Receive(pos StockPosition, qty decimal.Decimal, unitCost Money) (StockPosition, ReceiptValuation, error)
	Issue(pos StockPosition, qty decimal.Decimal) (StockPosition, Money, error)
}

// NewValuer builds the strategy for method. standardCost is only used by StandardCost.
func NewValuer(method ValuationMethod, standardCost Money) (Valuer, error) {
	switch method {
	case AverageCost:
		return averageCostValuer{}, nil
	case FIFO:
		return fifoValuer{}, nil
	case StandardCost:
		if standardCost <= 0 {
			return nil, apperrors.NewFieldError(apperrors.ErrValidation, "standardCost", "gt=0")
		}
		return standardCostValuer{standard: standardCost}, nil
	}
	return nil, apperrors.NewFieldError(apperrors.ErrValidation, "valuationMethod", fmt.Sprintf("unsupported %q", method))
}

func checkReceipt(qty decimal.Decimal, unitCost Money) error {
	if !qty.IsPositive() {
		return apperrors.NewFieldError(apperrors.ErrValidation, "quantity", "gt=0")
	}
	if unitCost < 0 {
		return apperrors.NewFieldError(apperrors.ErrValidation, "unitCost", "gte=0")
	}
	return nil
}

func checkIssue(pos StockPosition, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return apperrors.NewFieldError(apperrors.ErrValidation, "quantity", "gt=0")
	}
	if qty.GreaterThan(pos.Quantity) {
		return fmt.Errorf("%w: requested %s, on hand %s", apperrors.ErrInsufficientStock, qty, pos.Quantity)
	}
	return nil
}

// proportionalIssue removes qty at the position's carrying value. Issuing the last
// unit takes whatever value remains so rounding never strands a balance.
func proportionalIssue(pos StockPosition, qty decimal.Decimal) (StockPosition, Money) {
	var cost Money
	if qty.Equal(pos.Quantity) {
		cost = pos.Value
	} else {
		cost = ProrateMoney(pos.Value, qty, pos.Quantity)
	}
	return StockPosition{Quantity: pos.Quantity.Sub(qty), Value: pos.Value - cost}, cost
}

type averageCostValuer struct{}

func (averageCostValuer) Method() ValuationMethod { return AverageCost }

func (averageCostValuer) Receive(pos StockPosition, qty decimal.Decimal, unitCost Money) (StockPosition, ReceiptValuation, error) {
	if err := checkReceipt(qty, unitCost); err != nil {
		return pos, ReceiptValuation{}, err
	}
	cost := MultiplyMoney(unitCost, qty)
	next := StockPosition{Quantity: pos.Quantity.Add(qty), Value: pos.Value + cost}
	return next, ReceiptValuation{Cost: cost, InventoryValue: cost}, nil
}

func (averageCostValuer) Issue(pos StockPosition, qty decimal.Decimal) (StockPosition, Money, error) {
	if err := checkIssue(pos, qty); err != nil {
		return pos, 0, err
	}
	next, cost := proportionalIssue(pos, qty)
	return next, cost, nil
}

type fifoValuer struct{}

func (fifoValuer) Method() ValuationMethod { return FIFO }

func (fifoValuer) Receive(pos StockPosition, qty decimal.Decimal, unitCost Money) (StockPosition, ReceiptValuation, error) {
	if err := checkReceipt(qty, unitCost); err != nil {
		return pos, ReceiptValuation{}, err
	}
	cost := MultiplyMoney(unitCost, qty)
	layers := make([]CostLayer, len(pos.Layers), len(pos.Layers)+1)
	copy(layers, pos.Layers)
	layers = append(layers, CostLayer{Quantity: qty, Value: cost})
	next := StockPosition{Quantity: pos.Quantity.Add(qty), Value: pos.Value + cost, Layers: layers}
	return next, ReceiptValuation{Cost: cost, InventoryValue: cost}, nil
}

func (fifoValuer) Issue(pos StockPosition, qty decimal.Decimal) (StockPosition, Money, error) {
	if err := checkIssue(pos, qty); err != nil {
		return pos, 0, err
	}
	remaining := qty
	var cost Money
	layers := make([]CostLayer, 0, len(pos.Layers))
	for _, layer := range pos.Layers {
		if !remaining.IsPositive() {
			layers = append(layers, layer)
			continue
		}
		if remaining.GreaterThanOrEqual(layer.Quantity) {
			cost += layer.Value
			remaining = remaining.Sub(layer.Quantity)
			continue
		}
		taken := ProrateMoney(layer.Value, remaining, layer.Quantity)
		cost += taken
		layers = append(layers, CostLayer{Quantity: layer.Quantity.Sub(remaining), Value: layer.Value - taken})
		remaining = decimal.Zero
	}
	next := StockPosition{Quantity: pos.Quantity.Sub(qty), Value: pos.Value - cost, Layers: layers}
	return next, cost, nil
}

type standardCostValuer struct {
	standard Money
}

func (standardCostValuer) Method() ValuationMethod { return StandardCost }

func (v standardCostValuer) Receive(pos StockPosition, qty decimal.Decimal, unitCost Money) (StockPosition, ReceiptValuation, error) {
	if err := checkReceipt(qty, unitCost); err != nil {
		return pos, ReceiptValuation{}, err
	}
	cost := MultiplyMoney(unitCost, qty)
	value := MultiplyMoney(v.standard, qty)
	next := StockPosition{Quantity: pos.Quantity.Add(qty), Value: pos.Value + value}
	return next, ReceiptValuation{Cost: cost, InventoryValue: value, Variance: cost - value}, nil
}

func (v standardCostValuer) Issue(pos StockPosition, qty decimal.Decimal) (StockPosition, Money, error) {
	if err := checkIssue(pos, qty); err != nil {
		return pos, 0, err
	}
	if qty.Equal(pos.Quantity) {
		return StockPosition{Quantity: decimal.Zero}, pos.Value, nil
	}
	cost := MultiplyMoney(v.standard, qty)
	return StockPosition{Quantity: pos.Quantity.Sub(qty), Value: pos.Value - cost}, cost, nil
}

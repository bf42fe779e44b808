package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/shopspring/decimal"
)

type inventoryService struct {
	BaseService
	store  portsrepo.TransactionManager
	engine *PostingEngine
	policy config.LedgerPolicy
}

// NewInventoryService creates the inventory valuation sub-ledger.
func NewInventoryService(store portsrepo.TransactionManager, engine *PostingEngine, policy config.LedgerPolicy, options ...ServiceOption) portssvc.InventorySvcFacade {
	return &inventoryService{BaseService: newBaseService(options...), store: store, engine: engine, policy: policy}
}

// resolveAccount returns the active account with accountID, or the configured
// account with code when accountID is empty.
func resolveAccount(ctx context.Context, tx portsrepo.LedgerTx, field, accountID, code string) (*domain.Account, error) {
	if accountID != "" {
		return activeAccount(ctx, tx, field, accountID)
	}
	return accountByCode(ctx, tx, code)
}

func (s *inventoryService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*domain.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "sku", "required")
	}
	method := domain.ValuationMethod(strings.ToLower(req.ValuationMethod))
	if _, err := domain.NewValuer(method, req.StandardCost); err != nil {
		return nil, err
	}
	if req.SalePrice < 0 {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "salePrice", "gte=0")
	}

	var product domain.Product
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		inventory, err := resolveAccount(ctx, tx, "inventoryAccountID", req.InventoryAccountID, s.policy.InventoryAccountCode)
		if err != nil {
			return err
		}
		cogs, err := resolveAccount(ctx, tx, "cogsAccountID", req.COGSAccountID, s.policy.COGSAccountCode)
		if err != nil {
			return err
		}
		product = domain.Product{
			ProductID:          newID(),
			SKU:                sku,
			Name:               strings.TrimSpace(req.Name),
			Category:           req.Category,
			ValuationMethod:    method,
			StandardCost:       req.StandardCost,
			SalePrice:          req.SalePrice,
			InventoryAccountID: inventory.AccountID,
			COGSAccountID:      cogs.AccountID,
			Position:           domain.StockPosition{Quantity: decimal.Zero},
			AuditFields:        domain.NewAuditFields(userID, s.Now()),
		}
		return tx.SaveProduct(ctx, product)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to save product", slog.String("sku", sku))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Product created",
		slog.String("product_id", product.ProductID),
		slog.String("sku", product.SKU),
		slog.String("valuation_method", string(product.ValuationMethod)))
	return &product, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product *domain.Product
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		product, err = tx.FindProductByID(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		products, err = tx.ListProducts(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		if _, err := tx.FindProductByID(ctx, productID); err != nil {
			return err
		}
		var err error
		movements, err = tx.ListMovements(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (s *inventoryService) SetValuationMethod(ctx context.Context, productID string, req dto.SetValuationMethodRequest, userID string) (*domain.Product, error) {
	method := domain.ValuationMethod(strings.ToLower(req.ValuationMethod))
	if _, err := domain.NewValuer(method, req.StandardCost); err != nil {
		return nil, err
	}
	var product *domain.Product
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		product, err = tx.FindProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if product.MovementCount > 0 {
			return fmt.Errorf("%w: product %s has %d movements", apperrors.ErrValuationMethodLocked, product.SKU, product.MovementCount)
		}
		product.ValuationMethod = method
		product.StandardCost = req.StandardCost
		product.Touch(userID, s.Now())
		return tx.UpdateProduct(ctx, *product)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Valuation method changed",
		slog.String("product_id", productID),
		slog.String("valuation_method", string(method)))
	return product, nil
}

// record persists the movement and the product's new position.
func (s *inventoryService) record(ctx context.Context, tx portsrepo.LedgerTx, product *domain.Product, movement *domain.StockMovement, next domain.StockPosition, userID string) error {
	now := s.Now()
	product.Position = next
	product.MovementCount++
	product.Touch(userID, now)
	if movement.MovementID == "" {
		movement.MovementID = newID()
	}
	movement.ProductID = product.ProductID
	movement.Sequence = int64(product.MovementCount)
	movement.CreatedAt = now
	movement.CreatedBy = userID
	if err := tx.UpdateProduct(ctx, *product); err != nil {
		return err
	}
	return tx.SaveMovement(ctx, *movement)
}

// post appends the movement's entry, skipping it when every amount is zero.
func (s *inventoryService) post(ctx context.Context, tx portsrepo.LedgerTx, product *domain.Product, movement *domain.StockMovement, lines []domain.JournalLine, userID string) error {
	kept := lines[:0]
	for _, l := range lines {
		if l.Debit != 0 || l.Credit != 0 {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	movement.MovementID = newID()
	posted, err := s.engine.Post(ctx, tx, domain.JournalEntry{
		EntryID:     newID(),
		JournalCode: s.policy.InventoryJournal,
		EntryDate:   movement.MovementDate,
		Description: fmt.Sprintf("Stock %s %s %s", movement.Kind, movement.Quantity, product.SKU),
		Reference:   movement.Reference,
		Status:      domain.EntryDraft,
		Lines:       kept,
		SourceType:  domain.SourceStockMovement,
		SourceID:    movement.MovementID,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}, userID)
	if err != nil {
		return err
	}
	movement.EntryID = posted.EntryID
	return nil
}

func (s *inventoryService) ReceiveStock(ctx context.Context, productID string, req dto.StockReceiptRequest, userID string) (*domain.StockMovement, *domain.Product, error) {
	date, err := dto.ParseDate("movementDate", req.MovementDate)
	if err != nil {
		return nil, nil, err
	}
	var (
		product  *domain.Product
		movement domain.StockMovement
	)
	err = s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		product, err = tx.FindProductByID(ctx, productID)
		if err != nil {
			return err
		}
		valuer, err := product.Valuer()
		if err != nil {
			return err
		}
		next, valuation, err := valuer.Receive(product.Position, req.Quantity, req.UnitCost)
		if err != nil {
			return err
		}
		offset, err := resolveAccount(ctx, tx, "offsetAccountID", req.OffsetAccountID, s.policy.PayableAccountCode)
		if err != nil {
			return err
		}

		movement = domain.StockMovement{
			Kind:         domain.MovementReceipt,
			Quantity:     req.Quantity,
			UnitCost:     req.UnitCost,
			TotalCost:    valuation.Cost,
			Variance:     valuation.Variance,
			MovementDate: date,
			Reference:    req.Reference,
		}
		lines := []domain.JournalLine{
			{AccountID: product.InventoryAccountID, Description: product.Name, Debit: valuation.InventoryValue},
			{AccountID: offset.AccountID, Description: product.Name, Credit: valuation.Cost},
		}
		if valuation.Variance != 0 {
			ppv, err := accountByCode(ctx, tx, s.policy.PriceVarianceAccountCode)
			if err != nil {
				return err
			}
			variance := domain.JournalLine{AccountID: ppv.AccountID, Description: "Purchase price variance " + product.SKU}
			if valuation.Variance > 0 {
				variance.Debit = valuation.Variance
			} else {
				variance.Credit = -valuation.Variance
			}
			lines = append(lines, variance)
		}
		if err := s.post(ctx, tx, product, &movement, lines, userID); err != nil {
			return err
		}
		return s.record(ctx, tx, product, &movement, next, userID)
	})
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "Stock received",
		slog.String("product_id", productID),
		slog.String("quantity", movement.Quantity.String()),
		slog.String("total_cost", movement.TotalCost.String()))
	return &movement, product, nil
}

func (s *inventoryService) IssueStock(ctx context.Context, productID string, req dto.StockIssueRequest, userID string) (*domain.StockMovement, *domain.Product, error) {
	date, err := dto.ParseDate("movementDate", req.MovementDate)
	if err != nil {
		return nil, nil, err
	}
	var (
		product  *domain.Product
		movement domain.StockMovement
	)
	err = s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		product, err = tx.FindProductByID(ctx, productID)
		if err != nil {
			return err
		}
		valuer, err := product.Valuer()
		if err != nil {
			return err
		}
		next, cost, err := valuer.Issue(product.Position, req.Quantity)
		if err != nil {
			return err
		}

		movement = domain.StockMovement{
			Kind:         domain.MovementIssue,
			Quantity:     req.Quantity,
			UnitCost:     domain.ProrateMoney(cost, decimal.NewFromInt(1), req.Quantity),
			TotalCost:    cost,
			MovementDate: date,
			Reference:    req.Reference,
		}
		lines := []domain.JournalLine{
			{AccountID: product.COGSAccountID, Description: product.Name, Debit: cost},
			{AccountID: product.InventoryAccountID, Description: product.Name, Credit: cost},
		}
		if err := s.post(ctx, tx, product, &movement, lines, userID); err != nil {
			return err
		}
		return s.record(ctx, tx, product, &movement, next, userID)
	})
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "Stock issued",
		slog.String("product_id", productID),
		slog.String("quantity", movement.Quantity.String()),
		slog.String("cost", movement.TotalCost.String()))
	return &movement, product, nil
}

func (s *inventoryService) InventoryValuation(ctx context.Context) (*domain.InventoryValuationReport, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	report := &domain.InventoryValuationReport{Rows: make([]domain.InventoryValuationRow, 0, len(products))}
	for _, p := range products {
		report.Rows = append(report.Rows, domain.InventoryValuationRow{
			ProductID:       p.ProductID,
			SKU:             p.SKU,
			Name:            p.Name,
			Category:        p.Category,
			ValuationMethod: p.ValuationMethod,
			Quantity:        p.Position.Quantity,
			AverageCost:     p.AverageCost(),
			Value:           p.Position.Value,
		})
		report.TotalValue += p.Position.Value
	}
	return report, nil
}

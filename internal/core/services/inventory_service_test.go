package services_test

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

func (s *LedgerTestSuite) product(sku string, method domain.ValuationMethod, standardCost domain.Money) *domain.Product {
	p, err := s.svc.Inventory.CreateProduct(s.ctx, dto.CreateProductRequest{
		SKU:             sku,
		Name:            "Widget " + sku,
		ValuationMethod: string(method),
		StandardCost:    standardCost,
	}, testUser)
	s.Require().NoError(err)
	return p
}

func (s *LedgerTestSuite) receive(productID string, qty int64, unitCost domain.Money, date string) (*domain.StockMovement, *domain.Product) {
	m, p, err := s.svc.Inventory.ReceiveStock(s.ctx, productID, dto.StockReceiptRequest{
		Quantity:     decimal.NewFromInt(qty),
		UnitCost:     unitCost,
		MovementDate: date,
	}, testUser)
	s.Require().NoError(err)
	return m, p
}

func (s *LedgerTestSuite) issue(productID string, qty int64, date string) (*domain.StockMovement, *domain.Product) {
	m, p, err := s.svc.Inventory.IssueStock(s.ctx, productID, dto.StockIssueRequest{
		Quantity:     decimal.NewFromInt(qty),
		MovementDate: date,
	}, testUser)
	s.Require().NoError(err)
	return m, p
}

func (s *LedgerTestSuite) TestFIFOValuation() {
	p := s.product("FIFO-1", domain.FIFO, 0)
	s.Equal(s.id("1200"), p.InventoryAccountID)
	s.Equal(s.id("5000"), p.COGSAccountID)

	s.receive(p.ProductID, 10, 100, "2024-06-01")
	s.receive(p.ProductID, 10, 120, "2024-06-02")
	m, after := s.issue(p.ProductID, 15, "2024-06-03")

	s.Equal(domain.Money(1600), m.TotalCost)
	s.Equal(domain.Money(107), m.UnitCost)
	s.Equal(int64(3), m.Sequence)
	s.True(after.Position.Quantity.Equal(decimal.NewFromInt(5)))
	s.Equal(domain.Money(600), after.Position.Value)
	s.Require().Len(after.Position.Layers, 1)
	s.Equal(domain.Money(600), after.Position.Layers[0].Value)

	s.Equal(domain.Money(600), s.balance("1200"))
	s.Equal(domain.Money(1600), s.balance("5000"))
	s.Equal(domain.Money(2200), s.balance("2000"))

	entry, err := s.svc.Journal.GetEntry(s.ctx, m.EntryID)
	s.Require().NoError(err)
	s.Equal(s.policy.InventoryJournal, entry.JournalCode)
}

func (s *LedgerTestSuite) TestAverageCostValuation() {
	p := s.product("AVG-1", domain.AverageCost, 0)

	s.receive(p.ProductID, 10, 100, "2024-06-01")
	_, received := s.receive(p.ProductID, 10, 120, "2024-06-02")
	s.Equal(domain.Money(110), received.AverageCost())

	m, _ := s.issue(p.ProductID, 15, "2024-06-03")
	s.Equal(domain.Money(1650), m.TotalCost)
	m, after := s.issue(p.ProductID, 5, "2024-06-04")
	s.Equal(domain.Money(550), m.TotalCost)
	s.True(after.Position.Quantity.IsZero())
	s.Equal(domain.Money(0), after.Position.Value)
	s.Equal(domain.Money(0), s.balance("1200"))

	odd := s.product("AVG-2", domain.AverageCost, 0)
	s.receive(odd.ProductID, 3, 100, "2024-06-05")
	s.receive(odd.ProductID, 1, 101, "2024-06-05")
	m, _ = s.issue(odd.ProductID, 3, "2024-06-06")
	s.Equal(domain.Money(301), m.TotalCost)
	m, after = s.issue(odd.ProductID, 1, "2024-06-06")
	s.Equal(domain.Money(100), m.TotalCost)
	s.Equal(domain.Money(0), after.Position.Value)
	s.Equal(domain.Money(0), s.balance("1200"))
}

func (s *LedgerTestSuite) TestStandardCostBooksPriceVariance() {
	p := s.product("STD-1", domain.StandardCost, 110)

	m, _ := s.receive(p.ProductID, 10, 100, "2024-06-01")
	s.Equal(domain.Money(1000), m.TotalCost)
	s.Equal(domain.Money(-100), m.Variance)
	s.Equal(domain.Money(-100), s.balance("5900"))

	m, _ = s.receive(p.ProductID, 10, 125, "2024-06-02")
	s.Equal(domain.Money(150), m.Variance)
	s.Equal(domain.Money(50), s.balance("5900"))
	s.Equal(domain.Money(2200), s.balance("1200"))
	s.Equal(domain.Money(2250), s.balance("2000"))

	m, after := s.issue(p.ProductID, 5, "2024-06-03")
	s.Equal(domain.Money(550), m.TotalCost)
	s.Equal(domain.Money(1650), after.Position.Value)
	s.Equal(domain.Money(1650), s.balance("1200"))
}

func (s *LedgerTestSuite) TestInventoryRules() {
	p := s.product("RULE-1", domain.AverageCost, 0)

	changed, err := s.svc.Inventory.SetValuationMethod(s.ctx, p.ProductID, dto.SetValuationMethodRequest{ValuationMethod: "standard_cost", StandardCost: 90}, testUser)
	s.Require().NoError(err)
	s.Equal(domain.StandardCost, changed.ValuationMethod)

	s.receive(p.ProductID, 2, 90, "2024-06-01")
	_, err = s.svc.Inventory.SetValuationMethod(s.ctx, p.ProductID, dto.SetValuationMethodRequest{ValuationMethod: "fifo"}, testUser)
	s.ErrorIs(err, apperrors.ErrValuationMethodLocked)

	_, _, err = s.svc.Inventory.IssueStock(s.ctx, p.ProductID, dto.StockIssueRequest{Quantity: decimal.NewFromInt(3), MovementDate: "2024-06-02"}, testUser)
	s.ErrorIs(err, apperrors.ErrInsufficientStock)
	stored, err := s.svc.Inventory.GetProduct(s.ctx, p.ProductID)
	s.Require().NoError(err)
	s.Equal(1, stored.MovementCount)

	_, err = s.svc.Inventory.CreateProduct(s.ctx, dto.CreateProductRequest{SKU: "RULE-1", Name: "Twin", ValuationMethod: "fifo"}, testUser)
	s.ErrorIs(err, apperrors.ErrDuplicateCode)
	_, err = s.svc.Inventory.CreateProduct(s.ctx, dto.CreateProductRequest{SKU: "STD-0", Name: "No cost", ValuationMethod: "standard_cost"}, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.svc.Inventory.CreateProduct(s.ctx, dto.CreateProductRequest{SKU: "LIFO-1", Name: "Lifo", ValuationMethod: "lifo"}, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)

	free := s.product("FREE-1", domain.AverageCost, 0)
	m, _ := s.receive(free.ProductID, 5, 0, "2024-06-01")
	s.Empty(m.EntryID)

	movements, err := s.svc.Inventory.ListMovements(s.ctx, p.ProductID)
	s.Require().NoError(err)
	s.Len(movements, 1)
}

func (s *LedgerTestSuite) TestInventoryValuationAndControlAccount() {
	fifo := s.product("A-1", domain.FIFO, 0)
	avg := s.product("B-1", domain.AverageCost, 0)
	accrued := s.id("2100")

	for _, r := range []struct {
		productID string
		qty       int64
		cost      domain.Money
		date      string
	}{
		{fifo.ProductID, 10, 100, "2024-06-01"},
		{avg.ProductID, 4, 250, "2024-06-01"},
		{fifo.ProductID, 5, 130, "2024-06-12"},
	} {
		_, _, err := s.svc.Inventory.ReceiveStock(s.ctx, r.productID, dto.StockReceiptRequest{
			Quantity:        decimal.NewFromInt(r.qty),
			UnitCost:        r.cost,
			MovementDate:    r.date,
			OffsetAccountID: accrued,
		}, testUser)
		s.Require().NoError(err)
	}
	s.issue(avg.ProductID, 1, "2024-06-05")

	report, err := s.svc.Inventory.InventoryValuation(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(report.Rows, 2)
	s.Equal("A-1", report.Rows[0].SKU)
	s.Equal(domain.Money(1650), report.Rows[0].Value)
	s.Equal(domain.Money(750), report.Rows[1].Value)
	s.Equal(domain.Money(2400), report.TotalValue)

	checks, err := s.svc.Reporting.ReconcileControlAccounts(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(checks.Checks, 3)
	inventory := checks.Checks[2]
	s.Equal("inventory", inventory.Name)
	s.Equal("1200", inventory.AccountCode)
	s.Equal(domain.Money(2400), inventory.LedgerBalance)
	s.Equal(domain.Money(0), inventory.Difference)

	earlier, err := s.svc.Reporting.ReconcileControlAccounts(s.ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(domain.Money(1750), earlier.Checks[2].SubledgerBalance)
	s.Equal(domain.Money(0), earlier.Checks[2].Difference)
}

package handlers_test

import (
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func sentInvoice() *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:     "inv-1",
		InvoiceNumber: "INV-2024-0001",
		Type:          domain.SaleInvoice,
		ContactID:     "c-1",
		InvoiceDate:   date("2024-06-01"),
		DueDate:       date("2024-07-01"),
		Lines: []domain.InvoiceLine{
			{LineNo: 1, Description: "Consulting", AccountID: "acc-rev", Quantity: decimal.NewFromInt(2), UnitPrice: 10000, TaxCode: "GST10", LineAmount: 20000, TaxAmount: 2000},
			{LineNo: 2, Description: "Travel", AccountID: "acc-rev", Quantity: decimal.NewFromInt(1), UnitPrice: 2500, LineAmount: 2500},
		},
		Subtotal:    22500,
		TaxTotal:    2000,
		TotalAmount: 24500,
		AmountDue:   24500,
		Status:      domain.InvoiceSent,
		EntryID:     "e-issue",
	}
}

func (suite *HandlerTestSuite) TestCreateInvoice_RejectsEmptyLines() {
	w := suite.do(http.MethodPost, "/api/v1/invoices", `{
		"type": "sale", "contactID": "c-1", "invoiceDate": "2024-06-01", "dueDate": "2024-07-01", "lines": []
	}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.invoices.AssertNotCalled(suite.T(), "CreateInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateInvoice_IssuedInOneCall() {
	suite.invoices.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(r dto.CreateInvoiceRequest) bool {
		return r.Issue && len(r.Lines) == 2 && r.Lines[0].Quantity.Equal(decimal.NewFromInt(2))
	}), testUserID).Return(sentInvoice(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices", `{
		"type": "sale", "contactID": "c-1", "invoiceDate": "2024-06-01", "dueDate": "2024-07-01", "issue": true,
		"lines": [
			{"description": "Consulting", "accountID": "acc-rev", "quantity": "2", "unitPrice": 10000, "taxCode": "GST10"},
			{"description": "Travel", "accountID": "acc-rev", "unitPrice": 2500}
		]
	}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InvoiceResponse
	suite.decode(w, &resp)
	suite.Equal("INV-2024-0001", resp.InvoiceNumber)
	suite.Equal(domain.Money(24500), resp.TotalAmount)
	suite.Equal(domain.Money(24500), resp.AmountDue)
}

func (suite *HandlerTestSuite) TestRecordPayment_Overpayment() {
	err := apperrors.NewFieldError(apperrors.ErrOverpayment, "amount", "max=245.00")
	suite.invoices.On("RecordPayment", mock.Anything, "inv-1", mock.MatchedBy(func(r dto.RecordPaymentRequest) bool {
		return r.Amount == 30000
	}), testUserID).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", `{"amount":30000,"paymentDate":"2024-06-10"}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("amount", suite.errorBody(w).Field)
}

func (suite *HandlerTestSuite) TestRecordPayment_PaidInFull() {
	paid := sentInvoice()
	paid.Payments = []domain.Payment{{PaymentID: "p-1", Amount: 24500, PaymentDate: date("2024-06-10"), CashAccountID: "acc-cash", EntryID: "e-pay"}}
	paid.AmountDue = 0
	paid.Status = domain.InvoicePaid
	suite.invoices.On("RecordPayment", mock.Anything, "inv-1", mock.Anything, testUserID).Return(paid, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", `{"amount":24500,"paymentDate":"2024-06-10"}`)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.InvoiceResponse
	suite.decode(w, &resp)
	suite.Equal(domain.InvoicePaid, resp.Status)
	suite.Equal(domain.Money(24500), resp.AmountPaid)
	suite.Equal("2024-06-10", resp.Payments[0].PaymentDate)
}

func (suite *HandlerTestSuite) TestVoidInvoice_Paid() {
	suite.invoices.On("VoidInvoice", mock.Anything, "inv-1", "error", testUserID).Return(nil, apperrors.ErrState).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/void", `{"reason":"error"}`)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestListInvoices_Tabs() {
	suite.Run("sale tab", func() {
		suite.invoices.On("ListInvoices", mock.Anything, mock.MatchedBy(func(f domain.InvoiceFilter) bool {
			return f.Receivable != nil && *f.Receivable && f.Status == ""
		})).Return([]domain.Invoice{*sentInvoice()}, nil).Once()

		w := suite.do(http.MethodGet, "/api/v1/invoices?tab=sale", "")

		suite.Equal(http.StatusOK, w.Code)
		var resp dto.ListInvoicesResponse
		suite.decode(w, &resp)
		suite.Len(resp.Invoices, 1)
	})

	suite.Run("overdue tab derives status at asOf", func() {
		suite.invoices.On("ListInvoices", mock.Anything, mock.MatchedBy(func(f domain.InvoiceFilter) bool {
			return f.Status == domain.InvoiceOverdue && f.AsOf.Equal(date("2024-07-15"))
		})).Return([]domain.Invoice{*sentInvoice()}, nil).Once()

		w := suite.do(http.MethodGet, "/api/v1/invoices?tab=overdue&asOf=2024-07-15", "")

		suite.Equal(http.StatusOK, w.Code)
		var resp dto.ListInvoicesResponse
		suite.decode(w, &resp)
		suite.Require().Len(resp.Invoices, 1)
		suite.Equal(domain.InvoiceOverdue, resp.Invoices[0].Status)
	})

	suite.Run("unknown tab", func() {
		w := suite.do(http.MethodGet, "/api/v1/invoices?tab=archived", "")
		suite.Equal(http.StatusBadRequest, w.Code)
	})
}

func (suite *HandlerTestSuite) TestCreateContact_RejectsUnknownType() {
	w := suite.do(http.MethodPost, "/api/v1/contacts", `{"name":"Acme","type":"supplier"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.contacts.AssertNotCalled(suite.T(), "CreateContact", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListContacts_ByType() {
	suite.contacts.On("ListContacts", mock.Anything, domain.Vendor).
		Return([]domain.Contact{{ContactID: "c-2", Name: "Paper Co", Type: domain.Vendor}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/contacts?type=vendor", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListContactsResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Contacts, 1)
	suite.Equal("Paper Co", resp.Contacts[0].Name)
}

func (suite *HandlerTestSuite) TestIssueStock_Insufficient() {
	suite.inventory.On("IssueStock", mock.Anything, "p-1", mock.MatchedBy(func(r dto.StockIssueRequest) bool {
		return r.Quantity.Equal(decimal.NewFromInt(50))
	}), testUserID).Return(nil, nil, apperrors.ErrInsufficientStock).Once()

	w := suite.do(http.MethodPost, "/api/v1/products/p-1/issues", `{"quantity":"50","movementDate":"2024-06-05"}`)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestReceiveStock() {
	movement := &domain.StockMovement{
		MovementID:   "m-1",
		ProductID:    "p-1",
		Kind:         domain.MovementReceipt,
		Quantity:     decimal.NewFromInt(10),
		UnitCost:     100,
		TotalCost:    1000,
		MovementDate: date("2024-06-05"),
		EntryID:      "e-m1",
	}
	product := &domain.Product{
		ProductID:       "p-1",
		SKU:             "WID-1",
		ValuationMethod: domain.FIFO,
		Position:        domain.StockPosition{Quantity: decimal.NewFromInt(10), Value: 1000},
	}
	suite.inventory.On("ReceiveStock", mock.Anything, "p-1", mock.Anything, testUserID).Return(movement, product, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/products/p-1/receipts", `{"quantity":"10","unitCost":100,"movementDate":"2024-06-05"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.StockMovementResponse
	suite.decode(w, &resp)
	suite.Equal(domain.Money(1000), resp.TotalCost)
	suite.Equal(domain.Money(1000), resp.Product.InventoryValue)
	suite.True(resp.Product.QuantityOnHand.Equal(decimal.NewFromInt(10)))
}

func (suite *HandlerTestSuite) TestSetValuationMethod_Locked() {
	suite.inventory.On("SetValuationMethod", mock.Anything, "p-1", mock.Anything, testUserID).
		Return(nil, apperrors.ErrValuationMethodLocked).Once()

	w := suite.do(http.MethodPut, "/api/v1/products/p-1/valuation-method", `{"valuationMethod":"fifo"}`)

	suite.Equal(http.StatusConflict, w.Code)
}

package services

import (
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, store portsrepo.TransactionManager, options ...ServiceOption) *portssvc.ServiceContainer {
	// Every posting path shares one engine so a halt stops all of them
	engine := NewPostingEngine(options...)

	return &portssvc.ServiceContainer{
		Account:   NewAccountService(store, options...),
		Journal:   NewJournalService(store, engine, options...),
		Reporting: NewReportingService(store, engine, cfg.Ledger, options...),
		Contact:   NewContactService(store, options...),
		Invoice:   NewInvoiceService(store, engine, cfg.Ledger, options...),
		Inventory: NewInventoryService(store, engine, cfg.Ledger, options...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade   = (*accountService)(nil)
	_ portssvc.JournalSvcFacade   = (*journalService)(nil)
	_ portssvc.ReportingService   = (*reportingService)(nil)
	_ portssvc.ContactSvcFacade   = (*contactService)(nil)
	_ portssvc.InvoiceSvcFacade   = (*invoiceService)(nil)
	_ portssvc.InventorySvcFacade = (*inventoryService)(nil)
)

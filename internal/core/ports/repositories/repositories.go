package repositories

// LedgerTx is the set of repositories reachable inside one store transaction.
// Every adapter (memory, bbolt, postgres) implements it.
type LedgerTx interface {
	AccountRepositoryFacade
	JournalRepositoryFacade
	ContactRepository
	InvoiceRepository
	ProductRepository
}

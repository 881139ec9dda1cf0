package repositories

import "github.com/uptrace/bun"

// Set bundles every repository over one bun.IDB. The engine builds a Set per
// transaction so all writes of an operation share the same tx.
type Set struct {
	Accounts     AccountRepository
	States       StateRepository
	Market       MarketRepository
	Loans        LoanRepository
	Positions    PositionRepository
	Offices      OfficeRepository
	Transactions TransactionRepository
	Snapshots    SnapshotRepository
}

func New(db bun.IDB) *Set {
	return &Set{
		Accounts:     NewAccountRepository(db),
		States:       NewStateRepository(db),
		Market:       NewMarketRepository(db),
		Loans:        NewLoanRepository(db),
		Positions:    NewPositionRepository(db),
		Offices:      NewOfficeRepository(db),
		Transactions: NewTransactionRepository(db),
		Snapshots:    NewSnapshotRepository(db),
	}
}

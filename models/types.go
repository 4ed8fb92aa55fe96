package models

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountWallet     AccountType = "wallet"
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// SettlementStatus is the settlement state of a transaction.
// scheduled -> settled | overdue | cancelled. The scheduled -> overdue
// transition is applied at read time when the due date has passed; it is
// never persisted proactively.
type SettlementStatus string

const (
	StatusScheduled SettlementStatus = "scheduled"
	StatusSettled   SettlementStatus = "settled"
	StatusOverdue   SettlementStatus = "overdue"
	StatusCancelled SettlementStatus = "cancelled"
)

// DelegationStatus tracks a shared-access grant: pending -> active | revoked.
type DelegationStatus string

const (
	DelegationPending DelegationStatus = "pending"
	DelegationActive  DelegationStatus = "active"
	DelegationRevoked DelegationStatus = "revoked"
)

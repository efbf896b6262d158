package ledger

import "time"

const (
	AccountTypeCurrent = "current"
	AccountTypeSavings = "savings"

	CurrencyUSD = "USD"
)

// Transaction types
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxTransfer   = "transfer"
	TxCardTopUp  = "card_top_up"
)

const (
	CardActive   = "active"
	maxCardsUser = 3
)

type Account struct {
	ID            string `json:"id"`
	UserID        string `json:"-"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Currency      string `json:"currency"`
	Balance       Cents  `json:"balance"`
	IsActive      bool   `json:"is_active"`
	KYCSubmitted  bool   `json:"kyc_submitted"`
	KYCVerified   bool   `json:"kyc_verified"`
}

type Card struct {
	ID                string `json:"id"`
	UserID            string `json:"-"`
	BankAccountNumber string `json:"bank_account_number"`
	CardNumber        string `json:"card_number"`
	ExpiryDate        string `json:"expiry_date"`
	CVV               string `json:"cvv"`
	Balance           Cents  `json:"balance"`
	Status            string `json:"status"`
}

type Transaction struct {
	ID              string    `json:"id"`
	Amount          Cents     `json:"amount"`
	Description     string    `json:"description"`
	TransactionType string    `json:"transaction_type"`
	Status          string    `json:"status"`
	SenderAccount   string    `json:"sender_account,omitempty"`
	ReceiverAccount string    `json:"receiver_account,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionFilter bounds a listing. Dates are inclusive and compared by calendar day.
type TransactionFilter struct {
	StartDate     string
	EndDate       string
	AccountNumber string
}

// TransferStage is how far a pending transfer has progressed.
type TransferStage int

const (
	StageSecurityQuestion TransferStage = iota
	StageOTP
)

type PendingTransfer struct {
	UserID      string
	From        string
	To          string
	Amount      Cents
	Description string
	Stage       TransferStage
}

// Package ledger is the sandbox's in-memory bank: accounts, virtual cards,
// transactions, pending transfers, and profile documents.
package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const firstAccountNumber = 1000000001

type Ledger struct {
	lock sync.RWMutex

	nextAccount  int64
	accounts     map[string]*Account // account number -> account
	cards        map[string]*Card    // card id -> card
	transactions []*Transaction
	transfers    map[string]*PendingTransfer // user id -> transfer
	profiles     map[string][]byte           // user id -> profile document
	kin          map[string][][]byte         // user id -> next of kin documents
}

func New() *Ledger {
	return &Ledger{
		nextAccount: firstAccountNumber,
		accounts:    make(map[string]*Account),
		cards:       make(map[string]*Card),
		transfers:   make(map[string]*PendingTransfer),
		profiles:    make(map[string][]byte),
		kin:         make(map[string][][]byte),
	}
}

// OpenAccount creates an active, empty account for userID.
func (l *Ledger) OpenAccount(userID, accountType string) Account {
	l.lock.Lock()
	defer l.lock.Unlock()

	a := &Account{
		ID:            uuid.New().String(),
		UserID:        userID,
		AccountNumber: strconv.FormatInt(l.nextAccount, 10),
		AccountType:   accountType,
		Currency:      CurrencyUSD,
		IsActive:      true,
	}
	l.nextAccount++
	l.accounts[a.AccountNumber] = a
	return *a
}

// Accounts returns userID's accounts, oldest first.
func (l *Ledger) Accounts(userID string) []Account {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.accountsLocked(userID)
}

func (l *Ledger) accountsLocked(userID string) []Account {
	out := []Account{}
	for _, a := range l.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out
}

func (l *Ledger) primaryLocked(userID string) (*Account, error) {
	accounts := l.accountsLocked(userID)
	if len(accounts) == 0 {
		return nil, apperrors.ErrAccountNotFound
	}
	return l.accounts[accounts[0].AccountNumber], nil
}

func (l *Ledger) Account(accountNumber string) (Account, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	a, ok := l.accounts[accountNumber]
	if !ok {
		return Account{}, apperrors.ErrAccountNotFound
	}
	return *a, nil
}

func (l *Ledger) record(tx Transaction) Transaction {
	tx.ID = uuid.New().String()
	tx.Status = "completed"
	tx.CreatedAt = NowTimeFunc()
	l.transactions = append(l.transactions, &tx)
	return tx
}

// Deposit credits accountNumber.
func (l *Ledger) Deposit(accountNumber string, amount Cents, description string) (Transaction, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	a, ok := l.accounts[accountNumber]
	if !ok {
		return Transaction{}, apperrors.ErrAccountNotFound
	}
	a.Balance += amount
	return l.record(Transaction{
		Amount:          amount,
		Description:     description,
		TransactionType: TxDeposit,
		ReceiverAccount: accountNumber,
	}), nil
}

// Withdraw debits userID's primary account.
func (l *Ledger) Withdraw(userID string, amount Cents) (Transaction, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	a, err := l.primaryLocked(userID)
	if err != nil {
		return Transaction{}, err
	}
	if a.Balance < amount {
		return Transaction{}, apperrors.ErrInsufficientFunds
	}
	a.Balance -= amount
	return l.record(Transaction{
		Amount:          amount,
		Description:     "Withdrawal",
		TransactionType: TxWithdrawal,
		SenderAccount:   a.AccountNumber,
	}), nil
}

// StartTransfer checks a transfer from userID's primary account and parks it until the
// security question and OTP steps complete. A new start replaces any parked transfer.
func (l *Ledger) StartTransfer(userID, recipient string, amount Cents, description string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	from, err := l.primaryLocked(userID)
	if err != nil {
		return err
	}
	to, ok := l.accounts[recipient]
	if !ok {
		return fmt.Errorf("%w: recipient %s", apperrors.ErrAccountNotFound, recipient)
	}
	if to.AccountNumber == from.AccountNumber {
		return fmt.Errorf("%w: cannot transfer to the same account", apperrors.ErrInvalidRequest)
	}
	if from.Balance < amount {
		return apperrors.ErrInsufficientFunds
	}
	l.transfers[userID] = &PendingTransfer{
		UserID:      userID,
		From:        from.AccountNumber,
		To:          to.AccountNumber,
		Amount:      amount,
		Description: description,
		Stage:       StageSecurityQuestion,
	}
	return nil
}

// AdvanceTransfer moves userID's transfer from stage to the next one.
func (l *Ledger) AdvanceTransfer(userID string, stage TransferStage) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	t, ok := l.transfers[userID]
	if !ok || t.Stage != stage {
		return apperrors.ErrTransferState
	}
	t.Stage++
	return nil
}

// CompleteTransfer moves the money of a transfer that has passed every check.
func (l *Ledger) CompleteTransfer(userID string) (Transaction, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	t, ok := l.transfers[userID]
	if !ok || t.Stage != StageOTP {
		return Transaction{}, apperrors.ErrTransferState
	}
	delete(l.transfers, userID)

	from, fromOK := l.accounts[t.From]
	to, toOK := l.accounts[t.To]
	if !fromOK || !toOK {
		return Transaction{}, apperrors.ErrAccountNotFound
	}
	if from.Balance < t.Amount {
		return Transaction{}, apperrors.ErrInsufficientFunds
	}
	from.Balance -= t.Amount
	to.Balance += t.Amount
	return l.record(Transaction{
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionType: TxTransfer,
		SenderAccount:   t.From,
		ReceiverAccount: t.To,
	}), nil
}

// Transactions lists userID's transactions, newest first.
func (l *Ledger) Transactions(userID string, filter TransactionFilter) []Transaction {
	l.lock.RLock()
	defer l.lock.RUnlock()

	owned := map[string]bool{}
	for _, a := range l.accountsLocked(userID) {
		owned[a.AccountNumber] = true
	}

	out := []Transaction{}
	for i := len(l.transactions) - 1; i >= 0; i-- {
		tx := l.transactions[i]
		if !owned[tx.SenderAccount] && !owned[tx.ReceiverAccount] {
			continue
		}
		if filter.AccountNumber != "" && tx.SenderAccount != filter.AccountNumber && tx.ReceiverAccount != filter.AccountNumber {
			continue
		}
		day := tx.CreatedAt.Format(time.DateOnly)
		if filter.StartDate != "" && day < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && day > filter.EndDate {
			continue
		}
		out = append(out, *tx)
	}
	return out
}

// SubmitKYC marks userID's accounts as awaiting review.
func (l *Ledger) SubmitKYC(userID string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, a := range l.accounts {
		if a.UserID == userID && !a.KYCVerified {
			a.KYCSubmitted = true
		}
	}
}

// PendingVerification lists accounts with submitted, unreviewed KYC.
func (l *Ledger) PendingVerification() []Account {
	l.lock.RLock()
	defer l.lock.RUnlock()

	out := []Account{}
	for _, a := range l.accounts {
		if a.KYCSubmitted && !a.KYCVerified {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out
}

// Verify records a KYC review for the account with accountID. A rejected account goes
// back to needing a submission.
func (l *Ledger) Verify(accountID string, submitted, verified bool) (Account, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for _, a := range l.accounts {
		if a.ID == accountID {
			a.KYCVerified = verified
			a.KYCSubmitted = submitted && verified
			return *a, nil
		}
	}
	return Account{}, apperrors.ErrAccountNotFound
}

// CreateCard issues a virtual card funded from one of userID's accounts.
func (l *Ledger) CreateCard(userID, accountNumber string) (Card, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	a, ok := l.accounts[accountNumber]
	if !ok || a.UserID != userID {
		return Card{}, apperrors.ErrAccountNotFound
	}
	count := 0
	for _, c := range l.cards {
		if c.UserID == userID {
			count++
		}
	}
	if count >= maxCardsUser {
		return Card{}, fmt.Errorf("%w: you can only have %d virtual cards", apperrors.ErrInvalidRequest, maxCardsUser)
	}

	number, err := randomDigits(15)
	if err != nil {
		return Card{}, err
	}
	cvv, err := randomDigits(3)
	if err != nil {
		return Card{}, err
	}
	c := &Card{
		ID:                uuid.New().String(),
		UserID:            userID,
		BankAccountNumber: accountNumber,
		CardNumber:        "4" + number,
		ExpiryDate:        NowTimeFunc().AddDate(3, 0, 0).Format("01/06"),
		CVV:               cvv,
		Status:            CardActive,
	}
	l.cards[c.ID] = c
	return *c, nil
}

func (l *Ledger) Cards(userID string) []Card {
	l.lock.RLock()
	defer l.lock.RUnlock()

	out := []Card{}
	for _, c := range l.cards {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardNumber < out[j].CardNumber })
	return out
}

// TopUpCard moves amount from the card's funding account onto the card.
func (l *Ledger) TopUpCard(userID, cardID string, amount Cents) (Card, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	c, ok := l.cards[cardID]
	if !ok || c.UserID != userID {
		return Card{}, apperrors.ErrNotFound
	}
	a, ok := l.accounts[c.BankAccountNumber]
	if !ok {
		return Card{}, apperrors.ErrAccountNotFound
	}
	if a.Balance < amount {
		return Card{}, apperrors.ErrInsufficientFunds
	}
	a.Balance -= amount
	c.Balance += amount
	l.record(Transaction{
		Amount:          amount,
		Description:     "Virtual card top up",
		TransactionType: TxCardTopUp,
		SenderAccount:   a.AccountNumber,
	})
	return *c, nil
}

func (l *Ledger) DeleteCard(userID, cardID string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	c, ok := l.cards[cardID]
	if !ok || c.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(l.cards, cardID)
	return nil
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("random digits: %w", err)
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}

package bank

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is a resource identifier. The backend sends either strings (UUIDs) or integers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// Amount is a decimal money value kept as text to avoid float rounding. The backend
// sends either strings ("100.00") or numbers.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*a = Amount(s)
	return nil
}

func scalarString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Roles
const (
	RoleCustomer         = "customer"
	RoleAccountExecutive = "account_executive"
	RoleTeller           = "teller"
)

type User struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	IDNo      string `json:"id_no,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (u *User) IsAccountExecutive() bool {
	return u != nil && u.Role == RoleAccountExecutive
}

func (u *User) IsTeller() bool {
	return u != nil && u.Role == RoleTeller
}

func (u *User) IsStaff() bool {
	return u.IsAccountExecutive() || u.IsTeller()
}

type Account struct {
	ID            ID     `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Currency      string `json:"currency"`
	Balance       Amount `json:"balance"`
	IsActive      bool   `json:"is_active"`
	KYCSubmitted  bool   `json:"kyc_submitted"`
	KYCVerified   bool   `json:"kyc_verified"`
}

type Profile struct {
	ID             ID        `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	AccountNumber  string    `json:"account_number"`
	Photo          string    `json:"photo"`
	IDPhoto        string    `json:"id_photo"`
	SignaturePhoto string    `json:"signature_photo"`
	Accounts       []Account `json:"accounts"`

	// Raw is the full profile object as sent by the backend.
	Raw json.RawMessage `json:"-"`
}

type NextOfKin struct {
	ID           ID     `json:"id,omitempty"`
	Title        string `json:"title"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	OtherNames   string `json:"other_names,omitempty"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	Relationship string `json:"relationship"`
	PhoneNumber  string `json:"phone_number"`
	EmailAddress string `json:"email_address"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	IsPrimary    bool   `json:"is_primary,omitempty"`
}

type VirtualCard struct {
	ID                ID     `json:"id"`
	CardNumber        string `json:"card_number"`
	ExpiryDate        string `json:"expiry_date"`
	CVV               string `json:"cvv"`
	Balance           Amount `json:"balance"`
	Status            string `json:"status"`
	BankAccountNumber string `json:"bank_account_number,omitempty"`
}

type Transaction struct {
	ID              ID     `json:"id"`
	Amount          Amount `json:"amount"`
	Description     string `json:"description"`
	TransactionType string `json:"transaction_type"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	SenderAccount   string `json:"sender_account,omitempty"`
	ReceiverAccount string `json:"receiver_account,omitempty"`
}

// PendingAccount is an account awaiting KYC review by staff.
type PendingAccount struct {
	ID            ID     `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	User          string `json:"user"`
	UserFullName  string `json:"user_full_name"`
	KYCSubmitted  bool   `json:"kyc_submitted"`
}

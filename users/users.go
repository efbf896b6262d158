package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is a user's role at the bank.
type RoleType string

const (
	RoleCustomer         RoleType = "customer"
	RoleAccountExecutive RoleType = "account_executive" // Reviews KYC submissions
	RoleTeller           RoleType = "teller"            // Takes deposits
)

type User struct {
	ID                 string    `json:"id,omitempty"`
	Email              string    `json:"email,omitempty"`
	Username           string    `json:"username,omitempty"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"first_name,omitempty"`
	LastName           string    `json:"last_name,omitempty"`
	IDNo               string    `json:"id_no,omitempty"`
	Role               RoleType  `json:"role,omitempty"`
	SecurityQuestion   string    `json:"security_question,omitempty"`
	SecurityAnswerHash string    `json:"-"`
	DateJoined         time.Time `json:"date_joined,omitempty"`
	LastLogin          time.Time `json:"last_login,omitempty"`

	Active          bool   `json:"is_active"`
	ActivationToken string `json:"-"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// HashCost is the bcrypt work factor for passwords and security answers.
var HashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// normaliseAnswer makes security answers case and whitespace insensitive.
func normaliseAnswer(answer string) string {
	return strings.ToLower(strings.Join(strings.Fields(answer), " "))
}

func (u *User) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) SetSecurityAnswer(answer string) error {
	hash, err := HashPassword(normaliseAnswer(answer))
	if err != nil {
		return fmt.Errorf("hash security answer: %w", err)
	}
	u.SecurityAnswerHash = hash
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) CheckSecurityAnswer(answer string) bool {
	return u.SecurityAnswerHash != "" && CheckPasswordHash(normaliseAnswer(answer), u.SecurityAnswerHash)
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasRole(roles ...RoleType) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsStaff() bool {
	return u.HasRole(RoleAccountExecutive, RoleTeller)
}

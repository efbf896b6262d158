package sandbox

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-bank-client/ledger"
	"github.com/jrsteele09/go-bank-client/users"
	"github.com/rs/zerolog/log"
)

// Seeded sandbox accounts.
const (
	SeedTellerEmail    = "teller@sandbox.bank"
	SeedExecutiveEmail = "executive@sandbox.bank"
	SeedCustomerEmail  = "customer@sandbox.bank"

	SeedSecurityQuestion = "What is your favourite colour?"
	SeedSecurityAnswer   = "blue"
	seedOpeningBalance   = "1000.00"
)

type seedUser struct {
	email     string
	firstName string
	lastName  string
	role      users.RoleType
}

var seedUsers = []seedUser{
	{email: SeedTellerEmail, firstName: "Tess", lastName: "Teller", role: users.RoleTeller},
	{email: SeedExecutiveEmail, firstName: "Eddie", lastName: "Executive", role: users.RoleAccountExecutive},
	{email: SeedCustomerEmail, firstName: "Casey", lastName: "Customer", role: users.RoleCustomer},
}

// InitialiseSystem creates one active user per role, all sharing the configured seed
// password. The customer gets a funded current account. Existing users are left alone.
func (s *Server) InitialiseSystem() error {
	password := s.config.GetSeedPassword()
	created := false
	for _, seed := range seedUsers {
		ok, err := s.seedUser(seed, password)
		if err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to seed %s: %w", seed.email, err)
		}
		created = created || ok
	}
	if !created {
		return nil
	}

	log.Info().Msg("Sandbox users:")
	for _, seed := range seedUsers {
		log.Info().Msgf("   %-20s %-24s password: %s", seed.role, seed.email, password)
	}
	log.Info().Msgf("   Security answer for %s: %q", SeedCustomerEmail, SeedSecurityAnswer)
	return nil
}

func (s *Server) seedUser(seed seedUser, password string) (bool, error) {
	if _, err := s.repos.Users.GetByEmail(seed.email); err == nil {
		return false, nil
	}
	user := &users.User{
		Email:            seed.email,
		Username:         seed.firstName,
		FirstName:        seed.firstName,
		LastName:         seed.lastName,
		Role:             seed.role,
		SecurityQuestion: SeedSecurityQuestion,
		DateJoined:       time.Now(),
	}
	if err := user.SetPassword(password); err != nil {
		return false, err
	}
	if err := user.SetSecurityAnswer(SeedSecurityAnswer); err != nil {
		return false, err
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return false, err
	}
	if err := s.activate(user); err != nil {
		return false, err
	}
	if seed.role != users.RoleCustomer {
		return true, nil
	}

	opening, err := ledger.ParsePositive(seedOpeningBalance)
	if err != nil {
		return false, err
	}
	account := s.ledger.Accounts(user.ID)[0]
	if _, err := s.ledger.Deposit(account.AccountNumber, opening, "Opening balance"); err != nil {
		return false, err
	}
	return true, nil
}

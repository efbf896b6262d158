package sandbox

import (
	"fmt"
	"net/http"
	"regexp"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/jrsteele09/go-bank-client/ledger"
	"github.com/jrsteele09/go-bank-client/sessions"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// amountField reads a positive amount sent as either a string or a number.
func amountField(body gjson.Result, errs fieldErrors) ledger.Cents {
	raw := body.Get("amount")
	if !raw.Exists() || raw.String() == "" {
		errs.add("amount", "This field is required.")
		return 0
	}
	amount, err := ledger.ParsePositive(raw.String())
	if err != nil {
		errs.add("amount", "Enter a valid amount greater than zero.")
	}
	return amount
}

// DepositHandler credits any account. Tellers only.
func (s *Server) DepositHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		errs := fieldErrors{}
		amount := amountField(body, errs)
		accountNumber := body.Get("account_number").String()
		if accountNumber == "" {
			// Without a target the deposit goes to the caller's own primary account.
			if own := s.ledger.Accounts(currentUser(r).ID); len(own) > 0 {
				accountNumber = own[0].AccountNumber
			} else {
				errs.add("account_number", "This field is required.")
			}
		}
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		tx, err := s.ledger.Deposit(accountNumber, amount, fmt.Sprintf("Deposit by %s", currentUser(r).FullName()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, fmt.Sprintf("Deposit of %s to %s successful", amount, accountNumber), map[string]any{"transaction": tx})
	}
}

func (s *Server) WithdrawHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		errs := fieldErrors{}
		amount := amountField(body, errs)
		if !pinPattern.MatchString(body.Get("pin").String()) {
			errs.add("pin", "PIN must be 4 digits.")
		}
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		tx, err := s.ledger.Withdraw(currentUser(r).ID, amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, fmt.Sprintf("Withdrawal of %s successful", amount), map[string]any{"transaction": tx})
	}
}

func (s *Server) TransferInitiateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		errs := fieldErrors{}
		amount := amountField(body, errs)
		errs.require(body, "recipient_account_number")
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		user := currentUser(r)
		if err := s.ledger.StartTransfer(user.ID, body.Get("recipient_account_number").String(), amount, body.Get("description").String()); err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "Transfer initiated. Answer your security question to continue.", map[string]any{
			"security_question": user.SecurityQuestion,
		})
	}
}

func (s *Server) TransferSecurityQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		user := currentUser(r)
		if !user.CheckSecurityAnswer(body.Get("security_answer").String()) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Incorrect security answer"})
			return
		}
		if err := s.ledger.AdvanceTransfer(user.ID, ledger.StageSecurityQuestion); err != nil {
			writeError(w, r, err)
			return
		}
		session, err := s.otp.Issue(user.ID, sessions.PurposeTransfer)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.mailer.Send(user.Email, "Confirm your transfer", fmt.Sprintf("Your transfer OTP is %s", session.OTP))
		writeMessage(w, http.StatusOK, "OTP sent to your email", nil)
	}
}

func (s *Server) TransferOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		user := currentUser(r)
		session, err := s.otp.Redeem(body.Get("otp").String(), sessions.PurposeTransfer)
		if err != nil || session.UserID != user.ID {
			writeError(w, r, apperrors.ErrInvalidOTP)
			return
		}
		tx, err := s.ledger.CompleteTransfer(user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "Transfer successful", map[string]any{"transaction": tx})
	}
}

func filterFrom(r *http.Request) ledger.TransactionFilter {
	q := r.URL.Query()
	return ledger.TransactionFilter{
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
		AccountNumber: q.Get("account_number"),
	}
}

func (s *Server) TransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs := s.ledger.Transactions(currentUser(r).ID, filterFrom(r))
		writeJSON(w, http.StatusOK, map[string]any{"count": len(txs), "results": txs})
	}
}

// StatementHandler pretends to email a PDF statement for the requested range.
func (s *Server) StatementHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		user := currentUser(r)
		filter := ledger.TransactionFilter{
			StartDate:     body.Get("start_date").String(),
			EndDate:       body.Get("end_date").String(),
			AccountNumber: body.Get("account_number").String(),
		}
		txs := s.ledger.Transactions(user.ID, filter)
		log.Info().Str("user_id", user.ID).Int("transactions", len(txs)).Msg("Statement requested")
		s.mailer.Send(user.Email, "Your account statement", fmt.Sprintf("Statement with %d transactions attached", len(txs)))
		writeMessage(w, http.StatusOK, fmt.Sprintf("Your statement is being generated and will be sent to %s", user.Email), nil)
	}
}

// PendingVerificationHandler lists accounts awaiting KYC review. Account executives only.
func (s *Server) PendingVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := []map[string]any{}
		for _, a := range s.ledger.PendingVerification() {
			entry := map[string]any{
				"id":             a.ID,
				"account_number": a.AccountNumber,
				"account_type":   a.AccountType,
				"kyc_submitted":  a.KYCSubmitted,
			}
			if owner, err := s.repos.Users.GetByID(a.UserID); err == nil {
				entry["user"] = owner.Email
				entry["user_full_name"] = owner.FullName()
			}
			results = append(results, entry)
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
	}
}

func (s *Server) VerifyAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		verified := body.Get("kyc_verified").Bool()
		account, err := s.ledger.Verify(r.PathValue("id"), body.Get("kyc_submitted").Bool(), verified)
		if err != nil {
			writeError(w, r, err)
			return
		}
		msg := "Account verified successfully"
		if !verified {
			msg = "Account verification rejected"
		}
		log.Info().Str("account", account.AccountNumber).Bool("verified", verified).Str("by", currentUser(r).Email).Msg("KYC reviewed")
		writeMessage(w, http.StatusOK, msg, nil)
	}
}

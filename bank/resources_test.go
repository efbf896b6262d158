package bank_test

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-bank-client/bank"
	"github.com/stretchr/testify/require"
)

func TestProfile_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"nested data", `{"profile":{"data":{"first_name":"Ada","account_number":"0001","accounts":[{"id":1,"account_number":"0001","balance":"10.50","currency":"USD","is_active":true}]}}}`},
		{"profile", `{"profile":{"first_name":"Ada","account_number":"0001","accounts":[{"id":1,"account_number":"0001","balance":10.50,"currency":"USD","is_active":true}]}}`},
		{"root", `{"first_name":"Ada","account_number":"0001","accounts":[{"id":"1","account_number":"0001","balance":"10.50","currency":"USD","is_active":true}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := newStub(t).on(http.MethodGet, bank.PathProfile, http.StatusOK, tc.body)
			p, err := bank.New(stub).Profile(context.Background())
			require.NoError(t, err)
			require.Equal(t, "Ada", p.FirstName)
			require.Equal(t, "0001", p.AccountNumber)
			require.Len(t, p.Accounts, 1)
			require.Equal(t, bank.ID("1"), p.Accounts[0].ID)
			require.Contains(t, []bank.Amount{"10.50", "10.5"}, p.Accounts[0].Balance)
			require.Contains(t, string(p.Raw), `"first_name"`)
		})
	}
}

func TestProfile_NotFound(t *testing.T) {
	_, err := bank.New(newStub(t)).Profile(context.Background())
	require.ErrorIs(t, err, bank.ErrProfileNotFound)
}

func TestUpdateProfile_EmptyDatesAreNull(t *testing.T) {
	stub := newStub(t).on(http.MethodPatch, bank.PathProfile, http.StatusOK, `{"profile":{"first_name":"Ada"}}`)
	fields := map[string]any{"first_name": "Ada", "date_of_birth": "", "id_issue_date": "2020-01-01"}

	p, err := bank.New(stub).UpdateProfile(context.Background(), fields)
	require.NoError(t, err)
	require.Equal(t, "Ada", p.FirstName)

	body := stub.lastJSON()
	require.Contains(t, body, "date_of_birth")
	require.Nil(t, body["date_of_birth"])
	require.Equal(t, "2020-01-01", body["id_issue_date"])
	require.Equal(t, "", fields["date_of_birth"], "caller's map is not modified")
}

func TestUploadDocuments(t *testing.T) {
	stub := newStub(t).on(http.MethodPatch, bank.PathProfile, http.StatusOK, `{"message":"Uploaded"}`)
	client := bank.New(stub)

	_, err := client.UploadDocuments(context.Background(), bank.Documents{})
	require.ErrorIs(t, err, bank.ErrNoDocuments)

	msg, err := client.UploadDocuments(context.Background(), bank.Documents{
		Photo:          &bank.Document{Name: "/tmp/me.png", Content: []byte("png")},
		SignaturePhoto: &bank.Document{Name: "sig.jpg", Content: []byte("jpg")},
	})
	require.NoError(t, err)
	require.Equal(t, "Uploaded", msg)

	last := stub.last()
	mediaType, params, err := mime.ParseMediaType(last.req.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	form, err := multipart.NewReader(strings.NewReader(string(last.body)), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	require.Len(t, form.File["photo"], 1)
	require.Equal(t, "me.png", form.File["photo"][0].Filename)
	require.Len(t, form.File["signature_photo"], 1)
	require.Empty(t, form.File["id_photo"])
}

func TestNextOfKin(t *testing.T) {
	stub := newStub(t).
		on(http.MethodGet, bank.PathNextOfKin, http.StatusOK, `{"next_of_kin":{"count":1,"results":[{"id":"k1","first_name":"Grace","relationship":"Sibling"}]}}`).
		on(http.MethodPost, bank.PathNextOfKin, http.StatusCreated, `{"next_of_kin":{"id":"k2","first_name":"Alan"}}`).
		on(http.MethodPut, bank.PathNextOfKin+"k1/", http.StatusOK, `{"id":"k1","first_name":"Gracie"}`).
		on(http.MethodDelete, bank.PathNextOfKin+"k1/", http.StatusNoContent, ``)
	client := bank.New(stub)
	ctx := context.Background()

	kin, err := client.ListNextOfKin(ctx)
	require.NoError(t, err)
	require.Len(t, kin, 1)
	require.Equal(t, "Sibling", kin[0].Relationship)

	created, err := client.CreateNextOfKin(ctx, bank.NextOfKin{ID: "ignored", FirstName: "Alan"})
	require.NoError(t, err)
	require.Equal(t, bank.ID("k2"), created.ID)
	require.NotContains(t, stub.lastJSON(), "id")

	updated, err := client.UpdateNextOfKin(ctx, "k1", bank.NextOfKin{FirstName: "Gracie"})
	require.NoError(t, err)
	require.Equal(t, "Gracie", updated.FirstName)

	require.NoError(t, client.DeleteNextOfKin(ctx, "k1"))
}

func TestNextOfKin_BareArray(t *testing.T) {
	stub := newStub(t).on(http.MethodGet, bank.PathNextOfKin, http.StatusOK, `[{"id":1},{"id":2}]`)
	kin, err := bank.New(stub).ListNextOfKin(context.Background())
	require.NoError(t, err)
	require.Len(t, kin, 2)
}

func TestDepositAndWithdraw(t *testing.T) {
	stub := newStub(t).
		on(http.MethodPost, bank.PathDeposit, http.StatusOK, `{"message":"Deposit successful"}`).
		on(http.MethodPost, bank.PathWithdraw, http.StatusOK, `{"message":"Withdrawal initiated"}`)
	client := bank.New(stub)

	msg, err := client.Deposit(context.Background(), "50.00", "")
	require.NoError(t, err)
	require.Equal(t, "Deposit successful", msg)
	require.Equal(t, map[string]any{"amount": "50.00"}, stub.lastJSON())

	_, err = client.Deposit(context.Background(), "50.00", "0002")
	require.NoError(t, err)
	require.Equal(t, "0002", stub.lastJSON()["account_number"])

	msg, err = client.InitiateWithdrawal(context.Background(), "20", "1234")
	require.NoError(t, err)
	require.Equal(t, "Withdrawal initiated", msg)
	require.Equal(t, map[string]any{"amount": "20", "pin": "1234"}, stub.lastJSON())
}

func TestCards(t *testing.T) {
	envelopes := []string{
		`{"visa_card":{"count":1,"results":[{"id":1,"card_number":"4000","balance":"5.00","status":"active"}]}}`,
		`{"visa_card":[{"id":1,"card_number":"4000","balance":"5.00","status":"active"}]}`,
		`[{"id":1,"card_number":"4000","balance":"5.00","status":"active"}]`,
		`{"results":[{"id":1,"card_number":"4000","balance":5,"status":"active"}]}`,
	}
	for _, body := range envelopes {
		stub := newStub(t).on(http.MethodGet, bank.PathVirtualCards, http.StatusOK, body)
		cards, err := bank.New(stub).ListCards(context.Background())
		require.NoError(t, err, body)
		require.Len(t, cards, 1, body)
		require.Equal(t, "4000", cards[0].CardNumber)
	}

	cards, err := bank.New(newStub(t)).ListCards(context.Background())
	require.NoError(t, err)
	require.Empty(t, cards)
}

func TestCardOperations(t *testing.T) {
	stub := newStub(t).
		on(http.MethodPost, bank.PathVirtualCards, http.StatusCreated, `{"visa_card":{"id":9,"card_number":"4111"}}`).
		on(http.MethodPut, bank.PathVirtualCards+"9/top-up/", http.StatusOK, `{"message":"Card topped up"}`).
		on(http.MethodDelete, bank.PathVirtualCards+"9/", http.StatusNoContent, ``)
	client := bank.New(stub)
	ctx := context.Background()

	card, err := client.CreateCard(ctx, "0001")
	require.NoError(t, err)
	require.Equal(t, bank.ID("9"), card.ID)
	require.Equal(t, map[string]any{"bank_account_number": "0001"}, stub.lastJSON())

	msg, err := client.TopUpCard(ctx, card.ID, "25.00")
	require.NoError(t, err)
	require.Equal(t, "Card topped up", msg)

	require.NoError(t, client.DeleteCard(ctx, card.ID))
}

func TestTransactions(t *testing.T) {
	stub := newStub(t).
		on(http.MethodGet, bank.PathTransactions, http.StatusOK, `{"count":2,"results":[{"id":1,"amount":"10.00","transaction_type":"deposit"},{"id":2,"amount":-3,"transaction_type":"withdrawal"}]}`).
		on(http.MethodPost, bank.PathStatement, http.StatusOK, `{"message":"Statement emailed"}`)
	client := bank.New(stub)
	filter := bank.TransactionFilter{StartDate: "2024-01-01", AccountNumber: "0001"}

	txs, err := client.Transactions(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, bank.Amount("-3"), txs[1].Amount)

	q := stub.last().req.Query
	require.Equal(t, "2024-01-01", q.Get("start_date"))
	require.Equal(t, "0001", q.Get("account_number"))
	require.False(t, q.Has("end_date"))

	msg, err := client.RequestStatement(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, "Statement emailed", msg)
	require.Equal(t, map[string]any{"start_date": "2024-01-01", "account_number": "0001"}, stub.lastJSON())
}

func TestStaff(t *testing.T) {
	stub := newStub(t).
		on(http.MethodGet, bank.PathPendingVerification, http.StatusOK, `[{"id":4,"account_number":"0004","user_full_name":"Ada L","kyc_submitted":true}]`).
		on(http.MethodPatch, bank.PathVerifyAccount+"4/", http.StatusOK, `{"message":"Account verified"}`)
	client := bank.New(stub)

	pending, err := client.PendingVerification(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "Ada L", pending[0].UserFullName)

	msg, err := client.VerifyAccount(context.Background(), pending[0].ID, false)
	require.NoError(t, err)
	require.Equal(t, "Account verified", msg)
	require.Equal(t, map[string]any{"kyc_submitted": true, "kyc_verified": false}, stub.lastJSON())
}

func TestTransferWizard(t *testing.T) {
	stub := newStub(t).
		on(http.MethodPost, bank.PathTransferInitiate, http.StatusOK, `{"message":"Answer your security question"}`).
		on(http.MethodPost, bank.PathTransferSecurityQuestion, http.StatusOK, `{"message":"OTP sent"}`).
		on(http.MethodPost, bank.PathTransferOTP, http.StatusOK, `{"message":"Transfer successful"}`)
	tr := bank.New(stub).NewTransfer()
	ctx := context.Background()

	_, err := tr.ConfirmOTP(ctx, "123456")
	require.ErrorIs(t, err, bank.ErrTransferStep)
	require.Empty(t, stub.sent)

	_, err = tr.Initiate(ctx, "0002", "15.00", "rent")
	require.NoError(t, err)
	require.Equal(t, bank.TransferSecurityQuestion, tr.Step())
	require.Equal(t, "0002", stub.lastJSON()["recipient_account_number"])

	_, err = tr.Initiate(ctx, "0002", "15.00", "rent")
	require.ErrorIs(t, err, bank.ErrTransferStep)

	_, err = tr.AnswerSecurityQuestion(ctx, "blue")
	require.NoError(t, err)

	msg, err := tr.ConfirmOTP(ctx, "123456")
	require.NoError(t, err)
	require.Equal(t, "Transfer successful", msg)
	require.Equal(t, bank.TransferDone, tr.Step())
}

func TestTransferWizard_FailedStepCanBeRetried(t *testing.T) {
	stub := newStub(t).on(http.MethodPost, bank.PathTransferInitiate, http.StatusBadRequest, `{"error":"Insufficient funds"}`)
	tr := bank.New(stub).NewTransfer()

	_, err := tr.Initiate(context.Background(), "0002", "1000000", "")
	require.Error(t, err)
	require.Equal(t, "Insufficient funds", bank.ErrorMessage(err, "Transfer failed."))
	require.Equal(t, bank.TransferStart, tr.Step())
}

func TestDashboard(t *testing.T) {
	stub := newStub(t).
		on(http.MethodGet, bank.PathVirtualCards, http.StatusOK, `[]`).
		on(http.MethodGet, bank.PathTransactions, http.StatusOK, `[{"id":1}]`)

	d, err := bank.New(stub).Dashboard(context.Background())
	require.NoError(t, err)
	require.Nil(t, d.Profile)
	require.Empty(t, d.Cards)
	require.Len(t, d.Transactions, 1)

	stub.err = errors.New("boom")
	_, err = bank.New(stub).Dashboard(context.Background())
	require.Error(t, err)
}

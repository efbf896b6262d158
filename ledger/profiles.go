package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// readOnlyProfileFields are owned by the bank and ignored in updates.
var readOnlyProfileFields = map[string]bool{
	"id":             true,
	"email":          true,
	"account_number": true,
	"accounts":       true,
}

// ProfileFields are the parts of a profile the sandbox fills in itself.
type ProfileFields struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// CreateProfile starts userID's profile document. An existing profile is left alone.
func (l *Ledger) CreateProfile(userID string, f ProfileFields) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.profiles[userID]; ok {
		return nil
	}
	doc, err := json.Marshal(map[string]any{
		"id":         f.ID,
		"email":      f.Email,
		"first_name": f.FirstName,
		"last_name":  f.LastName,
	})
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	l.profiles[userID] = doc
	return nil
}

// Profile returns userID's profile document with the current accounts filled in.
func (l *Ledger) Profile(userID string) ([]byte, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.profileLocked(userID)
}

func (l *Ledger) profileLocked(userID string) ([]byte, error) {
	doc, ok := l.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	accounts := l.accountsLocked(userID)
	accountsJSON, err := json.Marshal(accounts)
	if err != nil {
		return nil, fmt.Errorf("encode accounts: %w", err)
	}
	out, err := sjson.SetRawBytes(doc, "accounts", accountsJSON)
	if err != nil {
		return nil, fmt.Errorf("set accounts: %w", err)
	}
	if len(accounts) > 0 {
		if out, err = sjson.SetBytes(out, "account_number", accounts[0].AccountNumber); err != nil {
			return nil, fmt.Errorf("set account number: %w", err)
		}
	}
	return out, nil
}

// UpdateProfile merges the top-level members of patch into userID's profile.
func (l *Ledger) UpdateProfile(userID string, patch []byte) ([]byte, error) {
	if !gjson.ValidBytes(patch) || !gjson.ParseBytes(patch).IsObject() {
		return nil, fmt.Errorf("%w: profile update must be a JSON object", apperrors.ErrInvalidRequest)
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	doc, ok := l.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	var setErr error
	gjson.ParseBytes(patch).ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if readOnlyProfileFields[k] {
			return true
		}
		doc, setErr = sjson.SetRawBytes(doc, escapeKey(k), []byte(value.Raw))
		return setErr == nil
	})
	if setErr != nil {
		return nil, fmt.Errorf("update profile: %w", setErr)
	}
	l.profiles[userID] = doc
	return l.profileLocked(userID)
}

// SetProfileField sets a single string member, such as an uploaded photo URL.
func (l *Ledger) SetProfileField(userID, field, value string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	doc, ok := l.profiles[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	doc, err := sjson.SetBytes(doc, escapeKey(field), value)
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	l.profiles[userID] = doc
	return nil
}

func (l *Ledger) NextOfKin(userID string) [][]byte {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return append([][]byte{}, l.kin[userID]...)
}

// AddNextOfKin stores doc with a newly assigned id and returns it.
func (l *Ledger) AddNextOfKin(userID string, doc []byte) ([]byte, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, fmt.Errorf("%w: next of kin must be a JSON object", apperrors.ErrInvalidRequest)
	}
	doc, err := sjson.SetBytes(doc, "id", uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("assign id: %w", err)
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	l.kin[userID] = append(l.kin[userID], doc)
	return doc, nil
}

// ReplaceNextOfKin overwrites the entry with id, keeping its id.
func (l *Ledger) ReplaceNextOfKin(userID, id string, doc []byte) ([]byte, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, fmt.Errorf("%w: next of kin must be a JSON object", apperrors.ErrInvalidRequest)
	}
	doc, err := sjson.SetBytes(doc, "id", id)
	if err != nil {
		return nil, fmt.Errorf("keep id: %w", err)
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	for i, existing := range l.kin[userID] {
		if gjson.GetBytes(existing, "id").String() == id {
			l.kin[userID][i] = doc
			return doc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (l *Ledger) DeleteNextOfKin(userID, id string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	entries := l.kin[userID]
	for i, existing := range entries {
		if gjson.GetBytes(existing, "id").String() == id {
			l.kin[userID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// escapeKey stops sjson reading dots and wildcards in a member name as a path.
func escapeKey(k string) string {
	out := make([]byte, 0, len(k))
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			out = append(out, '\\')
		}
		out = append(out, k[i])
	}
	return string(out)
}

package sandbox

import (
	"net/http"
)

func (s *Server) ListCardsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards := s.ledger.Cards(currentUser(r).ID)
		writeJSON(w, http.StatusOK, map[string]any{
			"visa_card": map[string]any{"count": len(cards), "results": cards},
		})
	}
}

func (s *Server) CreateCardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		errs := fieldErrors{}
		errs.require(body, "bank_account_number")
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		card, err := s.ledger.CreateCard(currentUser(r).ID, body.Get("bank_account_number").String())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusCreated, "Virtual card created successfully", map[string]any{"visa_card": card})
	}
}

func (s *Server) TopUpCardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, body, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		errs := fieldErrors{}
		amount := amountField(body, errs)
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		card, err := s.ledger.TopUpCard(currentUser(r).ID, r.PathValue("id"), amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "Card topped up successfully", map[string]any{"visa_card": card})
	}
}

func (s *Server) DeleteCardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.ledger.DeleteCard(currentUser(r).ID, r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

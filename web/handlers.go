package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stocksim/quotes"
	"stocksim/service"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.URL.Path != "/" {
		s.apology(w, http.StatusNotFound, "page not found")
		return
	}
	portfolio, err := s.portfolios.Portfolio(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.render(w, http.StatusOK, "index", pageData{SignedIn: true, Portfolio: portfolio})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodPost {
		s.render(w, http.StatusOK, "quote", pageData{SignedIn: true})
		return
	}

	symbol := strings.TrimSpace(r.PostFormValue("symbol"))
	if symbol == "" {
		s.apology(w, http.StatusBadRequest, "must provide symbol")
		return
	}
	quote, err := s.quotes.Lookup(r.Context(), symbol)
	if errors.Is(err, quotes.ErrNotFound) {
		s.apology(w, http.StatusBadRequest, "invalid symbol")
		return
	}
	if err != nil {
		s.apology(w, http.StatusBadGateway, "quotes are temporarily unavailable")
		return
	}
	s.render(w, http.StatusOK, "quoted", pageData{SignedIn: true, Quote: quote})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodPost {
		s.render(w, http.StatusOK, "buy", pageData{SignedIn: true})
		return
	}

	symbol, shares, ok := s.tradeForm(w, r)
	if !ok {
		return
	}
	receipt, err := s.trading.Buy(r.Context(), userID, symbol, shares)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.render(w, http.StatusOK, "bought", pageData{SignedIn: true, Receipt: receipt})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodPost {
		portfolio, err := s.portfolios.Portfolio(r.Context(), userID)
		if err != nil {
			s.serviceError(w, err)
			return
		}
		symbols := make([]string, 0, len(portfolio.Holdings))
		for _, holding := range portfolio.Holdings {
			symbols = append(symbols, holding.Symbol)
		}
		s.render(w, http.StatusOK, "sell", pageData{SignedIn: true, Symbols: symbols})
		return
	}

	symbol, shares, ok := s.tradeForm(w, r)
	if !ok {
		return
	}
	receipt, err := s.trading.Sell(r.Context(), userID, symbol, shares)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.render(w, http.StatusOK, "sold", pageData{SignedIn: true, Receipt: receipt})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	history, err := s.portfolios.History(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.render(w, http.StatusOK, "history", pageData{SignedIn: true, History: history})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, http.StatusOK, "login", pageData{})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		s.apology(w, http.StatusBadRequest, "must provide username and password")
		return
	}

	user, err := s.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if err := s.sessions.signIn(w, r, user.ID); err != nil {
		s.log.WithError(err).Error("Failed to save session")
		s.apology(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.signOut(w, r); err != nil {
		s.log.WithError(err).Error("Failed to clear session")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, http.StatusOK, "register", pageData{})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("confirmation")
	if password != confirmation {
		s.apology(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, err := s.auth.Register(r.Context(), username, password)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if err := s.sessions.signIn(w, r, user.ID); err != nil {
		s.log.WithError(err).Error("Failed to save session")
		s.apology(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// tradeForm parses and validates the symbol and share count shared by the
// buy and sell forms. Renders an apology and returns ok=false on bad input.
func (s *Server) tradeForm(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	symbol := strings.TrimSpace(r.PostFormValue("symbol"))
	if symbol == "" {
		s.apology(w, http.StatusBadRequest, "must provide symbol")
		return "", 0, false
	}
	shares, err := strconv.ParseInt(r.PostFormValue("shares"), 10, 64)
	if err != nil || shares <= 0 {
		s.apology(w, http.StatusBadRequest, "shares must be a positive whole number")
		return "", 0, false
	}
	return symbol, shares, true
}

// serviceError maps service-layer sentinel errors to user-facing apology
// pages with appropriate status codes. Unknown errors become a 500 and are
// logged; their detail never reaches the browser.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		s.apology(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, service.ErrInvalidCredentials):
		s.apology(w, http.StatusForbidden, "invalid username and/or password")
	case errors.Is(err, service.ErrUsernameTaken):
		s.apology(w, http.StatusBadRequest, "username is already taken")
	case errors.Is(err, service.ErrSymbolNotFound):
		s.apology(w, http.StatusBadRequest, "invalid symbol")
	case errors.Is(err, service.ErrInsufficientFunds):
		s.apology(w, http.StatusBadRequest, "can't afford")
	case errors.Is(err, service.ErrInsufficientShares):
		s.apology(w, http.StatusBadRequest, "too many shares")
	case errors.Is(err, service.ErrQuoteUnavailable):
		s.apology(w, http.StatusBadGateway, "quotes are temporarily unavailable")
	case errors.Is(err, service.ErrConcurrencyConflict):
		s.apology(w, http.StatusConflict, "your account was busy, please retry")
	case errors.Is(err, service.ErrUserNotFound):
		s.apology(w, http.StatusForbidden, "unknown account")
	default:
		s.log.WithError(err).Error("Unhandled service error")
		s.apology(w, http.StatusInternalServerError, "something went wrong")
	}
}

func (s *Server) apology(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "apology", pageData{Message: message})
}

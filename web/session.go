package web

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName   = "stocksim_session"
	sessionUserID = "user_id"
)

type sessionManager struct {
	store *sessions.CookieStore
}

func newSessionManager(secret string) *sessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &sessionManager{store: store}
}

// userID returns the signed-in user's id, or 0 when the request carries no
// valid session.
func (m *sessionManager) userID(r *http.Request) int64 {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return 0
	}
	id, ok := session.Values[sessionUserID].(int64)
	if !ok {
		return 0
	}
	return id
}

func (m *sessionManager) signIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[sessionUserID] = userID
	return session.Save(r, w)
}

func (m *sessionManager) signOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, sessionUserID)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

package sessions

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookieName = "blog-session"

	userIDSessionKey = "userID"
)

// SessionStore carries the authenticated actor between requests.
type SessionStore interface {
	GetUserID(r *http.Request) string
	SetUserID(w http.ResponseWriter, r *http.Request, userID string) error
	ClearUserID(w http.ResponseWriter, r *http.Request) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
	log   *logrus.Logger
}

func NewCookieSessionStore(log *logrus.Logger, secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store, log: log}
}

// getSession never fails: a cookie that no longer decodes yields a fresh session.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		c.log.WithError(err).Debug("discarding undecodable session cookie")
	}
	return session
}

func (c *CookieSessionStore) GetUserID(r *http.Request) string {
	session := c.getSession(r)
	userID, ok := session.Values[userIDSessionKey].(string)
	if !ok {
		return ""
	}
	return userID
}

func (c *CookieSessionStore) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = userID
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearUserID(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	delete(session.Values, userIDSessionKey)
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

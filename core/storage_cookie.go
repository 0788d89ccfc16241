package core

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

// CookieStorage exposes a gorilla session as a Storage region scoped to one
// browser. Every mutation re-saves the session cookie on w.
type CookieStorage struct {
	session *sessions.Session
	r       *http.Request
	w       http.ResponseWriter
}

func NewCookieStorage(session *sessions.Session, r *http.Request, w http.ResponseWriter) *CookieStorage {
	return &CookieStorage{session: session, r: r, w: w}
}

func (s *CookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.session.Values[key].(string)
	return v, ok, nil
}

func (s *CookieStorage) Set(_ context.Context, key, value string) error {
	s.session.Values[key] = value
	return s.session.Save(s.r, s.w)
}

func (s *CookieStorage) Remove(_ context.Context, key string) error {
	if _, ok := s.session.Values[key]; !ok {
		return nil
	}
	delete(s.session.Values, key)
	return s.session.Save(s.r, s.w)
}

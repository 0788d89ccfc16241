package core

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	// sessionName carries the session region; it has no MaxAge so the
	// browser drops it when closed.
	sessionName = "stergy_session"
	// prefsName carries the durable per-browser region (remember me).
	prefsName = "stergy_prefs"

	ctxSession = "session"
	ctxPrefs   = "prefs"
)

// SessionMiddleware loads both cookie regions and applies consistent cookie options.
// A cookie that no longer decodes (e.g. after a key rotation) is replaced by a fresh one.
func SessionMiddleware(cfg Config, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := store.Get(c.Request, sessionName)
		prefs, _ := store.Get(c.Request, prefsName)
		if session == nil || prefs == nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "session error")
			c.Abort()
			return
		}

		applySessionOptions(cfg, session, 0)
		applySessionOptions(cfg, prefs, cfg.RememberMaxAgeDays*24*60*60)

		c.Set(ctxSession, session)
		c.Set(ctxPrefs, prefs)
		c.Next()
	}
}

// OriginRefererMiddleware validates Origin/Referer against allowed list and sets CORS headers.
func OriginRefererMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	isAllowed := func(origin string, host string) bool {
		if origin == "" {
			// Same-origin navigation (no Origin header) is allowed.
			return true
		}
		origin = strings.ToLower(origin)
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, host) {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		referer := c.GetHeader("Referer")
		if origin == "" && referer != "" {
			if u, err := url.Parse(referer); err == nil {
				origin = u.Scheme + "://" + u.Host
			}
		}

		if !isAllowed(origin, c.Request.Host) {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "origin not allowed")
			c.Abort()
			return
		}
		if origin != "" {
			setCORSHeaders(c, origin)
		}
		if c.Request.Method == http.MethodOptions && origin != "" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, origin string) {
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func applySessionOptions(cfg Config, session *sessions.Session, maxAge int) {
	if session.Options == nil {
		session.Options = &sessions.Options{}
	}
	session.Options.Path = "/"
	session.Options.MaxAge = maxAge
	session.Options.HttpOnly = true
	session.Options.Secure = cfg.CookieSecure
	session.Options.SameSite = sameSiteFromString(cfg.CookieSameSite)
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// sessionManager binds a SessionManager to the caller's browser session.
func sessionManager(c *gin.Context) *SessionManager {
	return NewSessionManager(cookieRegion(c, ctxSession))
}

func rememberedEmail(c *gin.Context) *RememberedEmail {
	return NewRememberedEmail(cookieRegion(c, ctxPrefs))
}

func cookieRegion(c *gin.Context, key string) *CookieStorage {
	v, _ := c.Get(key)
	sess, _ := v.(*sessions.Session)
	return NewCookieStorage(sess, c.Request, c.Writer)
}

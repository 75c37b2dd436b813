package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledger/shared/utils"
)

const (
	// SessionCookieName is the cookie carrying the client's session id.
	SessionCookieName = "sessionId"

	// SessionMaxAge is how long clients keep the session cookie, in seconds.
	SessionMaxAge = 7 * 24 * 60 * 60

	sessionContextKey = "sessionId"
)

// IssueSession resolves the session from the request cookie, or starts a new
// one and tells the client to persist it for SessionMaxAge across the whole
// API. It never rejects a request.
func IssueSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionFromCookie(c)
		if !ok {
			sessionID = utils.GenerateID()
			c.SetCookie(SessionCookieName, sessionID, SessionMaxAge, "/", "", false, false)
		}

		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// RequireSession rejects requests that carry no session cookie before any
// handler runs.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionFromCookie(c)
		if !ok {
			RespondWithError(c, http.StatusBadRequest, "Session cookie required")
			c.Abort()
			return
		}

		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session resolved by IssueSession or RequireSession.
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetString(sessionContextKey)
	return sessionID, sessionID != ""
}

// sessionFromCookie treats a cookie that is not a UUID as absent.
func sessionFromCookie(c *gin.Context) (string, bool) {
	value, err := c.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return utils.NormalizeUUID(value)
}

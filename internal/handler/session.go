package handler

import (
	"net/http"

	"decision-console/internal/session"
	"decision-console/internal/store"

	"github.com/gin-gonic/gin"
)

const sessionKey = "dashboard.session"

// SessionMiddleware 按 cookie 找到会话，没有就新建并写回 cookie
func SessionMiddleware(mgr *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)
		entry, created := mgr.GetOrCreate(id)
		if created {
			c.SetCookie(cookieName, entry.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, entry)
		c.Next()
	}
}

func entryFrom(c *gin.Context) *session.Entry {
	return c.MustGet(sessionKey).(*session.Entry)
}

func storeFrom(c *gin.Context) *store.Store {
	return entryFrom(c).Store
}

type SessionHandler struct {
	sessions   *session.Manager
	cookieName string
}

func NewSessionHandler(mgr *session.Manager, cookieName string) *SessionHandler {
	return &SessionHandler{sessions: mgr, cookieName: cookieName}
}

// GetSession 当前会话信息
func (h *SessionHandler) GetSession(c *gin.Context) {
	e := entryFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"session_id": e.ID,
		"created_at": e.CreatedAt,
		"last_seen":  e.LastSeen(),
	})
}

// EndSession 结束会话，快照随之丢弃
func (h *SessionHandler) EndSession(c *gin.Context) {
	e := entryFrom(c)
	h.sessions.Close(e.ID)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

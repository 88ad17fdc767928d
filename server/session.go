package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-session/session/v3"
)

const sessionUserKey = "user_id"

// sessionUserID reads the logged-in user id from the browser session,
// if one was established by the login page.
func (s *Server) sessionUserID(c *gin.Context) (string, bool) {
	st, err := session.Start(c.Request.Context(), c.Writer, c.Request)
	if err != nil {
		return "", false
	}
	v, ok := st.Get(sessionUserKey)
	if !ok {
		return "", false
	}
	uid, ok := v.(string)
	return uid, ok && uid != ""
}

// establishSession records the authenticated user in the browser
// session so a subsequent /oauth2/authorize call from the same browser
// finds the resource owner without re-presenting credentials.
func (s *Server) establishSession(c *gin.Context, userID string) {
	st, err := session.Start(c.Request.Context(), c.Writer, c.Request)
	if err != nil {
		return
	}
	st.Set(sessionUserKey, userID)
	_ = st.Save()
}

// destroySession drops the browser session on logout.
func (s *Server) destroySession(c *gin.Context) {
	_ = session.Destroy(c.Request.Context(), c.Writer, c.Request)
}

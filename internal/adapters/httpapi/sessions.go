package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/bnema/orca/internal/adapters/fleetauth"
	"github.com/bnema/orca/internal/adapters/forwarder"
	"github.com/bnema/orca/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateSessionResponse is the body of POST /sessions.
type CreateSessionResponse struct {
	SessionID domain.SessionID `json:"session_id"`
	MachineID string           `json:"machine_id"`
}

// SessionView is one session as the API reports it.
type SessionView struct {
	SessionID    domain.SessionID    `json:"session_id"`
	State        domain.SessionState `json:"state"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActivity time.Time           `json:"last_activity"`
}

func sessionViewFrom(session domain.Session) SessionView {
	return SessionView{
		SessionID:    session.ID,
		State:        session.State,
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivity,
	}
}

func (v SessionView) Session() domain.Session {
	return domain.Session{
		ID:           v.SessionID,
		State:        v.State,
		CreatedAt:    v.CreatedAt,
		LastActivity: v.LastActivity,
	}
}

// ListSessionsResponse is the body of GET /sessions.
type ListSessionsResponse struct {
	MachineID string        `json:"machine_id"`
	Sessions  []SessionView `json:"sessions"`
}

func (s *Server) createSession(c *gin.Context) {
	session, err := s.sessions.CreateSession(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID: session.ID,
		MachineID: session.OwningMachine.MachineID,
	})
}

func (s *Server) listSessions(c *gin.Context) {
	sessions := s.sessions.ListSessions()
	resp := ListSessionsResponse{
		MachineID: s.sessions.Self().MachineID,
		Sessions:  make([]SessionView, 0, len(sessions)),
	}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, sessionViewFrom(session))
	}
	c.JSON(http.StatusOK, resp)
}

// executeSession runs code in a session. Requests relayed by another machine
// are executed locally and never forwarded again.
func (s *Server) executeSession(c *gin.Context) {
	var req forwarder.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "decode request: %v", err)
		return
	}
	if strings.TrimSpace(string(req.SessionID)) == "" {
		badRequest(c, "session_id is required")
		return
	}
	timeout, ok := timeoutFrom(req.Timeout)
	if !ok {
		badRequest(c, "timeout must not be negative")
		return
	}

	origin := c.GetHeader(fleetauth.HeaderForwarded)
	if origin == "" {
		result, err := s.sessions.Execute(c.Request.Context(), req.SessionID, req.Code, timeout)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	if !s.authorizeForwarded(c) {
		return
	}
	result, err := s.sessions.ExecuteLocal(c.Request.Context(), req.SessionID, req.Code, timeout)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) authorizeForwarded(c *gin.Context) bool {
	if !s.signer.Enabled() {
		return true
	}

	token, ok := fleetauth.BearerToken(c.GetHeader(fleetauth.HeaderAuth))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, forwarder.ErrorResponse{Error: "missing fleet token"})
		return false
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		s.logger.Warn("rejected forwarded request",
			zap.String("origin", c.GetHeader(fleetauth.HeaderForwarded)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, forwarder.ErrorResponse{Error: err.Error()})
		return false
	}
	c.Set("fleet_machine", claims.MachineID)
	return true
}

func (s *Server) deleteSession(c *gin.Context) {
	id := domain.SessionID(c.Param("id"))
	if err := s.sessions.DeleteSession(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExecuteTenantRequest is the body of POST /execute.
type ExecuteTenantRequest struct {
	UserID  domain.TenantID `json:"user_id" binding:"required"`
	Code    string          `json:"code"`
	Timeout int             `json:"timeout"`
}

func (s *Server) executeTenant(c *gin.Context) {
	var req ExecuteTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "decode request: %v", err)
		return
	}
	timeout, ok := timeoutFrom(req.Timeout)
	if !ok {
		badRequest(c, "timeout must not be negative")
		return
	}

	result, err := s.executor.Execute(c.Request.Context(), req.UserID, req.Code, timeout)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

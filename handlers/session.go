package handlers

import (
	"errors"
	"net/http"

	"domostay/services/session"
	"domostay/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler exposes the dialogue session store. The conversational layer
// is an external collaborator; it parks its per-conversation state here
// instead of keeping process-global maps.
type SessionHandler struct {
	Store session.Store
}

func NewSessionHandler(store session.Store) *SessionHandler {
	return &SessionHandler{Store: store}
}

type createSessionRequest struct {
	UserID string            `json:"userId"`
	Stage  string            `json:"stage"`
	Data   map[string]string `json:"data"`
}

// CreateSessionHandler answers POST /api/sessions.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	var input createSessionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid input", err.Error())
		return
	}
	sessionID := uuid.New().String()
	state := &session.State{UserID: input.UserID, Stage: input.Stage, Data: input.Data}
	if err := h.Store.Save(c.Request.Context(), sessionID, state); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "TRANSIENT", "failed to store session", err.Error())
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetSessionHandler answers GET /api/sessions/:sessionID.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	state, err := h.Store.Get(c.Request.Context(), c.Param("sessionID"))
	if errors.Is(err, session.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "NOT_FOUND", "session not found or expired", "")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "TRANSIENT", "failed to load session", err.Error())
		return
	}
	c.JSON(http.StatusOK, state)
}

// UpdateSessionHandler answers PUT /api/sessions/:sessionID.
func (h *SessionHandler) UpdateSessionHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	current, err := h.Store.Get(c.Request.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "NOT_FOUND", "session not found or expired", "")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "TRANSIENT", "failed to load session", err.Error())
		return
	}

	var input createSessionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid input", err.Error())
		return
	}
	if input.UserID != "" {
		current.UserID = input.UserID
	}
	if input.Stage != "" {
		current.Stage = input.Stage
	}
	if input.Data != nil {
		current.Data = input.Data
	}
	if err := h.Store.Save(c.Request.Context(), sessionID, current); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "TRANSIENT", "failed to store session", err.Error())
		return
	}
	c.JSON(http.StatusOK, current)
}

// DeleteSessionHandler answers DELETE /api/sessions/:sessionID.
func (h *SessionHandler) DeleteSessionHandler(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("sessionID")); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "TRANSIENT", "failed to delete session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

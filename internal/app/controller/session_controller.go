package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/pkg/util"
)

type SessionController struct {
	secret string
	expiry time.Duration
}

func NewSessionController(secret string, expiry time.Duration) *SessionController {
	return &SessionController{
		secret: secret,
		expiry: expiry,
	}
}

// CreateSession issues a token for a new anonymous session. A still valid token
// in the Authorization header is renewed for the same session instead.
// POST /api/v1/sessions
func (ctrl *SessionController) CreateSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var sessionID string
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok && token != "" {
		if claims, err := util.ValidateSessionToken(token, ctrl.secret); err == nil {
			sessionID = claims.SessionID
		}
	}

	token, err := util.GenerateSessionToken(sessionID, ctrl.secret, ctrl.expiry)
	if err != nil {
		log.Error("Failed to issue session token", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	status := http.StatusCreated
	if sessionID != "" {
		status = http.StatusOK
	}

	log.Info("Session token issued", map[string]interface{}{
		"session_id": token.SessionID,
		"renewed":    sessionID != "",
	})
	c.JSON(status, token)
}

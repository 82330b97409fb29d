package handler

import (
	"errors"
	"net/http"

	"Gated_Community/internal/middleware"
	"Gated_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	svc *service.SessionService
}

type ConnectReq struct {
	Account string `json:"account" binding:"required"`
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Connect 连接钱包，返回会话 token
func (h *SessionHandler) Connect(c *gin.Context) {
	var req ConnectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	token, err := h.svc.Connect(c.Request.Context(), req.Account)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrAccountRequired):
			code = http.StatusBadRequest
		case errors.Is(err, service.ErrStoreUnavailable):
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "account": req.Account})
}

func (h *SessionHandler) Disconnect(c *gin.Context) {
	if err := h.svc.Disconnect(c.Request.Context(), middleware.AccountFromCtx(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "disconnect failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

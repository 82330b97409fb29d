package handler

import (
	"errors"
	"io"
	"net/http"

	"Gated_Community/internal/middleware"
	"Gated_Community/internal/model"
	"Gated_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	NFTContract        string `json:"nftContract"`
	AccessRules        string `json:"accessRules"`
	VerificationMethod string `json:"verificationMethod"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

// Create 创建社区，失败时返回 400 和状态
func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	community, status := h.svc.Create(c.Request.Context(), model.CommunityDraft{
		Name:           req.Name,
		Description:    req.Description,
		GatingContract: req.NFTContract,
		Policy: model.AccessPolicy{
			AccessRules:        req.AccessRules,
			VerificationMethod: req.VerificationMethod,
		},
	})
	if community == nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": status.Message, "status": status})
		return
	}

	c.JSON(http.StatusOK, gin.H{"community": community, "status": status})
}

// Verify 未连接钱包时立即失败
func (h *CommunityHandler) Verify(c *gin.Context) {
	id := c.Param("id")
	outcome, status := h.svc.Verify(c.Request.Context(), middleware.AccountFromCtx(c), id)

	code := http.StatusOK
	if outcome != model.VerifySuccess {
		code = http.StatusForbidden
	}
	c.JSON(code, gin.H{"outcome": outcome, "status": status})
}

// List ?q= 搜索名称/描述，?tab=yours 只看当前账户的
func (h *CommunityHandler) List(c *gin.Context) {
	tab := c.DefaultQuery("tab", model.TabAll)
	if tab != model.TabAll && tab != model.TabYours {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid tab"})
		return
	}

	list, refreshing := h.svc.Browse(c.Request.Context(), model.ListFilter{
		Search:  c.Query("q"),
		Tab:     tab,
		Account: middleware.AccountFromCtx(c),
	})
	c.JSON(http.StatusOK, gin.H{"list": list, "refreshing": refreshing})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, service.ErrCommunityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": err.Error()})
		return
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"msg": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "load failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context()))
}

func (h *CommunityHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

// StatusStream SSE 推送状态变化，客户端断开时结束
func (h *CommunityHandler) StatusStream(c *gin.Context) {
	ch, cancel := h.svc.SubscribeStatus()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case status, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("status", status)
			return true
		}
	})
}

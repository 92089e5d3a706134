package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/utils"
)

// MemberHandler serves membership endpoints.
type MemberHandler struct {
	memberService *services.MemberService
	log           *slog.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService *services.MemberService, log *slog.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		log:           log,
	}
}

// ListMembers returns one page of members with their names and emails
func (h *MemberHandler) ListMembers(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	members, total, err := h.memberService.List(c.Request.Context(), ac, utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.NewList(members, total, dto.ToMemberDTO))
}

// UpdateMemberRole promotes or demotes a member
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	var req struct {
		Role models.MemberRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Role is required")
		return
	}

	member, err := h.memberService.UpdateRole(c.Request.Context(), ac, c.Param("memberId"), req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToMemberDTO(*member))
}

// RemoveMember removes a member, or lets the caller leave
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	memberID := c.Param("memberId")
	if err := h.memberService.Remove(c.Request.Context(), ac, memberID); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": memberID})
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InnermostHandler holds the innermost service dependency.
type InnermostHandler struct {
	innermostService service.InnermostService
}

// NewInnermostHandler creates a new InnermostHandler.
func NewInnermostHandler(innermostService service.InnermostService) *InnermostHandler {
	return &InnermostHandler{innermostService: innermostService}
}

// --- Request/Response Structs ---

type InviteRequest struct {
	PartnerEmail string `json:"partnerEmail" binding:"required,email"`
}

// InnermostResponse converts ObjectIDs to strings for transport.
type InnermostResponse struct {
	ID           string                 `json:"id"`
	InviterID    string                 `json:"inviterId"`
	PartnerID    *string                `json:"partnerId,omitempty"`
	PartnerEmail string                 `json:"partnerEmail"`
	Status       domain.InnermostStatus `json:"status"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// --- Handler Methods ---

// Invite creates a pending innermost addressed to a partner's email.
func (h *InnermostHandler) Invite(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	innermost, err := h.innermostService.Invite(c.Request.Context(), userID, req.PartnerEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInnermostLimitReached):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrCannotInviteSelf), errors.Is(err, service.ErrInviteAlreadyPending):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			respondStorageError(c, err, "Could not create invitation")
		}
		return
	}

	c.JSON(http.StatusCreated, MapInnermostToResponse(innermost))
}

// Accept activates a pending innermost for the invited user.
func (h *InnermostHandler) Accept(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	innermostID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid innermost ID")
		return
	}

	innermost, err := h.innermostService.Accept(c.Request.Context(), userID, innermostID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInnermostNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInnermostNotPending):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrNotInvitee):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			respondStorageError(c, err, "Could not accept invitation")
		}
		return
	}

	c.JSON(http.StatusOK, MapInnermostToResponse(innermost))
}

// End archives an innermost.
func (h *InnermostHandler) End(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	innermostID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid innermost ID")
		return
	}

	if err := h.innermostService.End(c.Request.Context(), userID, innermostID); err != nil {
		switch {
		case errors.Is(err, service.ErrInnermostNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotInnermostMember):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			respondStorageError(c, err, "Could not end innermost")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns all of the user's innermosts, including pending invitations.
func (h *InnermostHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	innermosts, err := h.innermostService.List(c.Request.Context(), userID)
	if err != nil {
		respondStorageError(c, err, "Could not list innermosts")
		return
	}

	responses := make([]InnermostResponse, 0, len(innermosts))
	for i := range innermosts {
		responses = append(responses, MapInnermostToResponse(&innermosts[i]))
	}

	c.JSON(http.StatusOK, responses)
}

// MapInnermostToResponse converts a domain Innermost to its DTO.
func MapInnermostToResponse(innermost *domain.Innermost) InnermostResponse {
	resp := InnermostResponse{
		ID:           innermost.ID.Hex(),
		InviterID:    innermost.InviterID.Hex(),
		PartnerEmail: innermost.PartnerEmail,
		Status:       innermost.Status,
		CreatedAt:    innermost.CreatedAt,
	}
	if innermost.PartnerID != nil && *innermost.PartnerID != primitive.NilObjectID {
		partnerIDHex := innermost.PartnerID.Hex()
		resp.PartnerID = &partnerIDHex
	}
	return resp
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeekHandler holds the week service dependency.
type WeekHandler struct {
	weekService service.WeekService
}

// NewWeekHandler creates a new WeekHandler.
func NewWeekHandler(weekService service.WeekService) *WeekHandler {
	return &WeekHandler{weekService: weekService}
}

// --- Request/Response Structs ---

type SubmitWishesRequest struct {
	Wishes []service.WishInput `json:"wishes" binding:"required,min=1,dive"`
}

type SelectionRequest struct {
	WishIDs []string `json:"wishIds" binding:"required,min=1"`
}

// WillingBoxResponse is the per-partner view of a weekly document. The
// other partner's willingness selection and guess stay hidden until the
// week is complete — seeing them early would break the guessing game.
type WillingBoxResponse struct {
	ID         string       `json:"id"`
	WeekNumber int          `json:"weekNumber"`
	Phase      domain.Phase `json:"phase"`

	MyWishes      []domain.Wish `json:"myWishes,omitempty"`
	PartnerWishes []domain.Wish `json:"partnerWishes,omitempty"`

	MyWilling      []string `json:"myWilling,omitempty"`
	PartnerWilling []string `json:"partnerWilling,omitempty"` // Only once complete

	MyGuess      []string `json:"myGuess,omitempty"`
	PartnerGuess []string `json:"partnerGuess,omitempty"` // Only once complete

	PartnerSubmitted bool `json:"partnerSubmitted"` // Partner already acted in the current phase

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ScoreResponse struct {
	WeekNumber    int       `json:"weekNumber"`
	PartnerAScore int       `json:"partnerAScore"`
	PartnerBScore int       `json:"partnerBScore"`
	IsComplete    bool      `json:"isComplete"`
	ScoredAt      time.Time `json:"scoredAt"`
}

// --- Handler Methods ---

// GetCurrent returns the latest week's document.
func (h *WeekHandler) GetCurrent(c *gin.Context) {
	userID, innermostID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	box, err := h.weekService.GetCurrentBox(c.Request.Context(), userID, innermostID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	h.respondBox(c, userID, innermostID, box)
}

// GetWeek returns a specific week's document.
func (h *WeekHandler) GetWeek(c *gin.Context) {
	userID, innermostID, weekNumber, ok := h.pathIDsWithWeek(c)
	if !ok {
		return
	}

	box, err := h.weekService.GetBox(c.Request.Context(), userID, innermostID, weekNumber)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	h.respondBox(c, userID, innermostID, box)
}

// SubmitWishes plants the caller's tree for the week.
func (h *WeekHandler) SubmitWishes(c *gin.Context) {
	h.mutateWishes(c, h.weekService.SubmitWishes)
}

// ReviseWishes replaces the caller's wish list before the phase advances.
func (h *WeekHandler) ReviseWishes(c *gin.Context) {
	h.mutateWishes(c, h.weekService.ReviseWishes)
}

// SubmitWilling records the caller's willingness selection.
func (h *WeekHandler) SubmitWilling(c *gin.Context) {
	h.mutateSelection(c, h.weekService.SubmitWilling)
}

// ReviseWilling replaces the caller's willingness selection before the phase advances.
func (h *WeekHandler) ReviseWilling(c *gin.Context) {
	h.mutateSelection(c, h.weekService.ReviseWilling)
}

// SubmitGuess records the caller's guess.
func (h *WeekHandler) SubmitGuess(c *gin.Context) {
	h.mutateSelection(c, h.weekService.SubmitGuess)
}

// GetScore returns the finalized score record for a week.
func (h *WeekHandler) GetScore(c *gin.Context) {
	userID, innermostID, weekNumber, ok := h.pathIDsWithWeek(c)
	if !ok {
		return
	}

	score, err := h.weekService.GetScore(c.Request.Context(), userID, innermostID, weekNumber)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, ScoreResponse{
		WeekNumber:    score.WeekNumber,
		PartnerAScore: score.PartnerAScore,
		PartnerBScore: score.PartnerBScore,
		IsComplete:    score.IsComplete,
		ScoredAt:      score.ScoredAt,
	})
}

// --- Internals ---

type wishesMutation func(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishes []service.WishInput) (*domain.WillingBox, error)

func (h *WeekHandler) mutateWishes(c *gin.Context, fn wishesMutation) {
	userID, innermostID, weekNumber, ok := h.pathIDsWithWeek(c)
	if !ok {
		return
	}

	var req SubmitWishesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	box, err := fn(c.Request.Context(), userID, innermostID, weekNumber, req.Wishes)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	h.respondBox(c, userID, innermostID, box)
}

type selectionMutation func(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error)

func (h *WeekHandler) mutateSelection(c *gin.Context, fn selectionMutation) {
	userID, innermostID, weekNumber, ok := h.pathIDsWithWeek(c)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	box, err := fn(c.Request.Context(), userID, innermostID, weekNumber, req.WishIDs)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	h.respondBox(c, userID, innermostID, box)
}

func (h *WeekHandler) pathIDs(c *gin.Context) (userID, innermostID primitive.ObjectID, ok bool) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	innermostID, err = primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid innermost ID")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, innermostID, true
}

func (h *WeekHandler) pathIDsWithWeek(c *gin.Context) (userID, innermostID primitive.ObjectID, weekNumber int, ok bool) {
	userID, innermostID, ok = h.pathIDs(c)
	if !ok {
		return
	}
	weekNumber, err := strconv.Atoi(c.Param("week"))
	if err != nil || weekNumber < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid week number")
		return primitive.NilObjectID, primitive.NilObjectID, 0, false
	}
	return userID, innermostID, weekNumber, true
}

// respondBox resolves the caller's partner slot so the response can hide
// the other partner's unrevealed submissions.
func (h *WeekHandler) respondBox(c *gin.Context, userID, innermostID primitive.ObjectID, box *domain.WillingBox) {
	role, err := h.weekService.RoleOf(c.Request.Context(), userID, innermostID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapBoxToResponse(box, role))
}

// MapBoxToResponse builds the per-partner view of a weekly document.
func MapBoxToResponse(box *domain.WillingBox, viewer domain.PartnerRole) WillingBoxResponse {
	resp := WillingBoxResponse{
		ID:         box.ID.Hex(),
		WeekNumber: box.WeekNumber,
		Phase:      box.Phase,
		CreatedAt:  box.CreatedAt,
		UpdatedAt:  box.UpdatedAt,
	}

	other := viewer.Other()
	resp.MyWishes = box.Wishes(viewer)
	resp.PartnerWishes = box.Wishes(other)
	resp.MyWilling = box.Willing(viewer)
	resp.MyGuess = box.Guess(viewer)
	resp.PartnerSubmitted = box.HasSubmitted(other, box.Phase)

	// The partner's selection and guess are the answers to the game;
	// reveal them only once the week is scored.
	if box.Phase == domain.PhaseComplete {
		resp.PartnerWilling = box.Willing(other)
		resp.PartnerGuess = box.Guess(other)
	}

	return resp
}

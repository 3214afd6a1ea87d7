package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"autorent/internal/app/dto"
	reviewssvc "autorent/internal/app/services/reviews"
	domaincar "autorent/internal/domain/car"
	domainreview "autorent/internal/domain/review"
)

type ReviewHTTP interface {
	ListForCar(c *gin.Context)
	Submit(c *gin.Context)
	Update(c *gin.Context)
	DeleteOwn(c *gin.Context)
	List(c *gin.Context)
	Delete(c *gin.Context)
}

type ReviewHandler struct {
	Service *reviewssvc.Service
	Logger  *slog.Logger
}

type submitReviewRequest struct {
	CarID   string `json:"car_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h ReviewHandler) ListForCar(c *gin.Context) {
	f := domainreview.Filter{CarID: c.Param("id")}
	f.Page, f.Limit = pagination(c)
	reviews, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReviewCollection(reviews))
}

func (h ReviewHandler) Submit(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	review, err := h.Service.Submit(c.Request.Context(), p.UserID, req.CarID, req.Rating, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapReviewView(review))
}

// Update edits the caller's own review.
func (h ReviewHandler) Update(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	review, err := h.Service.Update(c.Request.Context(), p.UserID, domainreview.ID(c.Param("id")), req.Rating, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReviewView(review))
}

func (h ReviewHandler) DeleteOwn(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.UserID, domainreview.ID(c.Param("id")), p.UserID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List is the moderation view across all cars and authors.
func (h ReviewHandler) List(c *gin.Context) {
	f := domainreview.Filter{CarID: c.Query("car_id"), UserID: c.Query("user_id")}
	f.Page, f.Limit = pagination(c)
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rating"})
			return
		}
		f.Rating = rating
	}
	reviews, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReviewCollection(reviews))
}

// Delete removes any review, regardless of author.
func (h ReviewHandler) Delete(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.UserID, domainreview.ID(c.Param("id")), ""); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ReviewHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainreview.ErrNotFound),
		errors.Is(err, domaincar.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainreview.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainreview.ErrInvalidRating),
		errors.Is(err, domainreview.ErrCommentRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("review operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ReviewHTTP = (*ReviewHandler)(nil)

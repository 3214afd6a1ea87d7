package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"autorent/internal/app/dto"
	rentalssvc "autorent/internal/app/services/rentals"
	domaincar "autorent/internal/domain/car"
	domainrental "autorent/internal/domain/rental"
	"autorent/internal/domain/shared/dates"
	domainuser "autorent/internal/domain/user"
)

type RentalHTTP interface {
	Quote(c *gin.Context)
	Availability(c *gin.Context)
	Schedule(c *gin.Context)
	Create(c *gin.Context)
	CreateFor(c *gin.Context)
	ListOwn(c *gin.Context)
	GetOwn(c *gin.Context)
	Cancel(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	SetStatus(c *gin.Context)
	Delete(c *gin.Context)
}

// UserDirectory resolves booking owners when a manager books on someone
// else's behalf.
type UserDirectory interface {
	Get(ctx context.Context, id domainuser.ID) (*domainuser.User, error)
}

type RentalHandler struct {
	Service *rentalssvc.Service
	Users   UserDirectory
	Logger  *slog.Logger
}

type createRentalRequest struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// Quote prices a prospective rental without creating it.
func (h RentalHandler) Quote(c *gin.Context) {
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	start, ok := parseDate(req.StartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}
	quote, err := h.Service.Quote(c.Request.Context(), req.CarID, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapQuoteView(quote))
}

// Availability reports whether the car is free for the queried period.
func (h RentalHandler) Availability(c *gin.Context) {
	carID := c.Param("id")
	start, end, ok := dateRangeQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required as YYYY-MM-DD"})
		return
	}
	busy, err := h.Service.IsBusy(c.Request.Context(), carID, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailabilityView{
		CarID:     carID,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Available: !busy,
	})
}

// Schedule lists the car's booked periods without renter or price data,
// so clients can see when a car is taken. An optional date range narrows
// the window.
func (h RentalHandler) Schedule(c *gin.Context) {
	carID := c.Param("id")
	f := domainrental.Filter{CarID: carID}
	f.Page, f.Limit = pagination(c)
	if c.Query("start_date") != "" || c.Query("end_date") != "" {
		start, end, ok := dateRangeQuery(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date must be YYYY-MM-DD"})
			return
		}
		period, err := dates.New(start, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Period = &period
	}
	rentals, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	busy := rentals[:0]
	for _, r := range rentals {
		if r.Status.Blocking() {
			busy = append(busy, r)
		}
	}
	c.JSON(http.StatusOK, dto.MapScheduleView(carID, busy))
}

// Create books a car for the authenticated client.
func (h RentalHandler) Create(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	start, okStart := parseDate(req.StartDate)
	end, okEnd := parseDate(req.EndDate)
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}
	r, err := h.Service.Create(c.Request.Context(), p.UserID, p.UserID, req.CarID, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapRentalView(r))
}

// CreateFor books a car on behalf of the user in the path; the caller is
// kept as the audit creator.
func (h RentalHandler) CreateFor(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	ownerID := c.Param("user_id")
	if h.Users != nil {
		if _, err := h.Users.Get(c.Request.Context(), domainuser.ID(ownerID)); err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			h.respondError(c, err)
			return
		}
	}
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	start, okStart := parseDate(req.StartDate)
	end, okEnd := parseDate(req.EndDate)
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}
	r, err := h.Service.Create(c.Request.Context(), p.UserID, ownerID, req.CarID, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapRentalView(r))
}

// ListOwn returns the caller's rentals.
func (h RentalHandler) ListOwn(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	f, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	f.UserID = p.UserID
	rentals, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRentalCollection(rentals))
}

func (h RentalHandler) GetOwn(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	r, err := h.Service.Get(c.Request.Context(), domainrental.ID(c.Param("id")), p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRentalView(r))
}

// Cancel moves the caller's own pending rental to cancelled.
func (h RentalHandler) Cancel(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	r, err := h.Service.SetStatus(c.Request.Context(), p.UserID, domainrental.ID(c.Param("id")), domainrental.StatusCancelled, p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRentalView(r))
}

// List returns rentals across all users, filtered.
func (h RentalHandler) List(c *gin.Context) {
	f, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	rentals, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRentalCollection(rentals))
}

func (h RentalHandler) Get(c *gin.Context) {
	r, err := h.Service.Get(c.Request.Context(), domainrental.ID(c.Param("id")), "")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRentalView(r))
}

// SetStatus applies any legal lifecycle transition.
func (h RentalHandler) SetStatus(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	next, err := domainrental.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.Service.SetStatus(c.Request.Context(), p.UserID, domainrental.ID(c.Param("id")), next, "")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRentalView(r))
}

func (h RentalHandler) Delete(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.UserID, domainrental.ID(c.Param("id")), ""); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h RentalHandler) filterFromQuery(c *gin.Context) (domainrental.Filter, bool) {
	f := domainrental.Filter{CarID: c.Query("car_id")}
	f.Page, f.Limit = pagination(c)
	if raw := c.Query("status"); raw != "" {
		status, err := domainrental.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return domainrental.Filter{}, false
		}
		f.Status = status
	}
	if c.Query("start_date") != "" || c.Query("end_date") != "" {
		start, end, ok := dateRangeQuery(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date must be YYYY-MM-DD"})
			return domainrental.Filter{}, false
		}
		period, err := dates.New(start, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return domainrental.Filter{}, false
		}
		f.Period = &period
	}
	return f, true
}

func (h RentalHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainrental.ErrCarUnavailable),
		errors.Is(err, domainrental.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, dates.ErrInvalidRange),
		errors.Is(err, domainrental.ErrInvalidPeriod),
		errors.Is(err, domainrental.ErrPeriodTooLong),
		errors.Is(err, domainrental.ErrInvalidStatus),
		errors.Is(err, domainrental.ErrUserRequired),
		errors.Is(err, domainrental.ErrCarRequired),
		errors.Is(err, domainrental.ErrCostNotPositive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainrental.ErrNotFound),
		errors.Is(err, domaincar.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("rental operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ RentalHTTP = (*RentalHandler)(nil)

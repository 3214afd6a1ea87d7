package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"autorent/internal/app/dto"
	carssvc "autorent/internal/app/services/cars"
	domaincar "autorent/internal/domain/car"
	"autorent/internal/domain/shared/money"
)

type CarHTTP interface {
	Catalog(c *gin.Context)
	CatalogGet(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type CarHandler struct {
	Service *carssvc.Service
	// Currency stamped on prices when the request omits one.
	DefaultCurrency string
	Logger          *slog.Logger
}

type carRequest struct {
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Year        *int    `json:"year"`
	Type        *string `json:"type"`
	PricePerDay *int64  `json:"price_per_day"`
	Currency    string  `json:"currency"`
	State       *string `json:"state"`
}

// Catalog lists cars for clients.
func (h CarHandler) Catalog(c *gin.Context) {
	h.list(c)
}

// CatalogGet hides soft-deleted cars from clients.
func (h CarHandler) CatalogGet(c *gin.Context) {
	car, err := h.Service.CatalogGet(c.Request.Context(), domaincar.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapCarView(car))
}

// List is the fleet-management listing for managers.
func (h CarHandler) List(c *gin.Context) {
	h.list(c)
}

func (h CarHandler) list(c *gin.Context) {
	f := domaincar.Filter{}
	f.Page, f.Limit = pagination(c)
	if raw := c.Query("type"); raw != "" {
		typ, err := domaincar.ParseType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Type = typ
	}
	if raw := c.Query("state"); raw != "" {
		state, err := domaincar.ParseState(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.State = state
	}
	if raw := c.Query("min_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_year"})
			return
		}
		f.MinYear = year
	}
	cars, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapCarCollection(cars))
}

func (h CarHandler) Get(c *gin.Context) {
	car, err := h.Service.Get(c.Request.Context(), domaincar.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapCarView(car))
}

func (h CarHandler) Create(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	params := domaincar.CreateParams{
		Brand: req.Brand,
		Model: req.Model,
	}
	if req.Year != nil {
		params.Year = *req.Year
	}
	if req.Type != nil {
		typ, err := domaincar.ParseType(*req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.Type = typ
	}
	if req.State != nil {
		state, err := domaincar.ParseState(*req.State)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.State = state
	}
	if req.PricePerDay != nil {
		params.PricePerDay = money.Money{Amount: *req.PricePerDay, Currency: h.currency(req.Currency)}
	}
	car, err := h.Service.Add(c.Request.Context(), p.UserID, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapCarView(car))
}

func (h CarHandler) Update(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	params := domaincar.UpdateParams{Year: req.Year}
	if req.Brand != "" {
		params.Brand = &req.Brand
	}
	if req.Model != "" {
		params.Model = &req.Model
	}
	if req.Type != nil {
		typ, err := domaincar.ParseType(*req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.Type = &typ
	}
	if req.State != nil {
		state, err := domaincar.ParseState(*req.State)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.State = &state
	}
	if req.PricePerDay != nil {
		price := money.Money{Amount: *req.PricePerDay, Currency: h.currency(req.Currency)}
		params.PricePerDay = &price
	}
	car, err := h.Service.Update(c.Request.Context(), p.UserID, domaincar.ID(c.Param("id")), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapCarView(car))
}

func (h CarHandler) Delete(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.UserID, domaincar.ID(c.Param("id"))); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto accepts a multipart "photo" file and stores it in the photo
// bucket.
func (h CarHandler) UploadPhoto(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	car, err := h.Service.AttachPhoto(c.Request.Context(), p.UserID, domaincar.ID(c.Param("id")), file, contentType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapCarView(car))
}

func (h CarHandler) currency(requested string) string {
	if requested != "" {
		return requested
	}
	return h.DefaultCurrency
}

func (h CarHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincar.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domaincar.ErrBrandRequired),
		errors.Is(err, domaincar.ErrModelRequired),
		errors.Is(err, domaincar.ErrPriceRequired),
		errors.Is(err, domaincar.ErrInvalidType),
		errors.Is(err, domaincar.ErrInvalidCarState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, carssvc.ErrPhotoStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("car operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ CarHTTP = (*CarHandler)(nil)

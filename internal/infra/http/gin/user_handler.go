package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"autorent/internal/app/dto"
	authsvc "autorent/internal/app/services/auth"
	userssvc "autorent/internal/app/services/users"
	domainuser "autorent/internal/domain/user"
)

type UserHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	GetSelf(c *gin.Context)
	UpdateSelf(c *gin.Context)
	DeleteSelf(c *gin.Context)
}

// UserHandler serves account management twice over: admin routes address
// any account by id, the self routes address the caller's own. Creation
// goes through the auth service so provisioning and self sign-up share
// one registration path.
type UserHandler struct {
	Users  *userssvc.Service
	Auth   *authsvc.Service
	Logger *slog.Logger
}

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

func (h UserHandler) List(c *gin.Context) {
	f := domainuser.Filter{Email: c.Query("email")}
	f.Page, f.Limit = pagination(c)
	if raw := c.Query("role"); raw != "" {
		role, err := domainuser.ParseRole(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Role = role
	}
	users, err := h.Users.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserCollection(users))
}

func (h UserHandler) Get(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), domainuser.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

func (h UserHandler) Create(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if h.Auth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	role, err := domainuser.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creds, err := h.Auth.SignUp(c.Request.Context(), p.UserID, authsvc.SignUpParams{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapUserProfile(creds.User))
}

func (h UserHandler) Update(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.Users.Update(c.Request.Context(), p.UserID, domainuser.ID(c.Param("id")), userssvc.UpdateParams{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

func (h UserHandler) Delete(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), p.UserID, domainuser.ID(c.Param("id"))); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSelf returns the caller's own profile.
func (h UserHandler) GetSelf(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), domainuser.ID(p.UserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// UpdateSelf patches the caller's own email, name or password.
func (h UserHandler) UpdateSelf(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.Users.Update(c.Request.Context(), p.UserID, domainuser.ID(p.UserID), userssvc.UpdateParams{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// DeleteSelf soft-deletes the caller's account and revokes its sessions.
func (h UserHandler) DeleteSelf(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), p.UserID, domainuser.ID(p.UserID)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h UserHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, authsvc.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("user operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ UserHTTP = (*UserHandler)(nil)

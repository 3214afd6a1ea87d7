package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	authsvc "autorent/internal/app/services/auth"
	domainauth "autorent/internal/domain/auth"
	domainuser "autorent/internal/domain/user"
)

const principalContextKey = "autorent.principal"

type principal struct {
	UserID string
	Role   domainuser.Role
	Token  string
}

// roleRank orders roles so a stronger role passes any weaker gate: admin
// covers manager routes, manager covers client routes.
var roleRank = map[domainuser.Role]int{
	domainuser.RoleClient:  1,
	domainuser.RoleManager: 2,
	domainuser.RoleAdmin:   3,
}

func (p principal) Covers(role domainuser.Role) bool {
	return roleRank[p.Role] >= roleRank[role] && roleRank[role] > 0
}

// AuthMiddleware resolves the bearer token into a principal. Requests
// without a valid token pass through anonymously; role gates reject them
// downstream.
type AuthMiddleware struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.Resolve(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{
		UserID: string(resolved.UserID),
		Role:   resolved.Role,
		Token:  token,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireRole aborts with 401 for anonymous requests and 403 for
// principals below the required role.
func requireRole(role domainuser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
			return
		}
		if !p.Covers(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func mustPrincipal(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
	}
	return p, ok
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

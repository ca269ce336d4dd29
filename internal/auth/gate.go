// Package auth gates tenant-scoped routes behind a credential check.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TenantKey is the gin context key under which the validated tenant id is
// stored. Downstream handlers must read the tenant from here, never from the
// raw path.
const TenantKey = "validated_tenant_id"

var (
	// ErrMissingCredential is returned when no Authorization header is present
	ErrMissingCredential = errors.New("authorization header is missing")

	// ErrInvalidScheme is returned when the credential does not carry the expected scheme
	ErrInvalidScheme = errors.New("invalid authorization scheme")
)

// TenantResolver maps a raw credential to the tenant it is valid for. The
// prefix scheme below is a contract-testing placeholder; a real validator
// (signed tokens, mTLS) replaces it without touching the gate's call sites.
type TenantResolver interface {
	TenantForCredential(credential string) (string, error)
}

// PrefixResolver implements the bearer scheme "Bearer <prefix><tenantId>".
type PrefixResolver struct {
	prefix string
}

// NewPrefixResolver creates a resolver for the given token prefix,
// e.g. "test-token-for-".
func NewPrefixResolver(tokenPrefix string) *PrefixResolver {
	return &PrefixResolver{prefix: "Bearer " + tokenPrefix}
}

// TenantForCredential implements TenantResolver.
func (r *PrefixResolver) TenantForCredential(credential string) (string, error) {
	if !strings.HasPrefix(credential, r.prefix) {
		return "", ErrInvalidScheme
	}
	return strings.TrimPrefix(credential, r.prefix), nil
}

// Middleware validates the caller's credential against the tenant id in the
// request path. Missing or malformed credentials map to 401, a tenant
// mismatch to 403. On success the validated tenant is stored in the context.
func Middleware(resolver TenantResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := c.GetHeader("Authorization")
		if credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrMissingCredential.Error(),
			})
			return
		}

		tokenTenant, err := resolver.TenantForCredential(credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrInvalidScheme.Error(),
			})
			return
		}

		pathTenant := c.Param("tenantId")
		if tokenTenant != pathTenant {
			logger.Warn("Tenant mismatch",
				zap.String("path_tenant", pathTenant))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "token is not valid for the specified tenant",
			})
			return
		}

		c.Set(TenantKey, tokenTenant)
		c.Next()
	}
}

// TenantFromContext returns the tenant id stored by the gate.
func TenantFromContext(c *gin.Context) (string, bool) {
	tenant, ok := c.Get(TenantKey)
	if !ok {
		return "", false
	}
	id, ok := tenant.(string)
	return id, ok && id != ""
}

// Package identity resolves the caller identity supplied by the upstream
// identity provider. It performs no credential checks of its own: in header
// mode the authenticating proxy is trusted, in jwt mode the provider's token
// signature is verified.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mrlokans/bookshelf/internal/config"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

// Headers set by the authenticating proxy in header mode.
const (
	HeaderUserID = "X-Authenticated-User-Id"
	HeaderName   = "X-Authenticated-User-Name"
	HeaderEmail  = "X-Authenticated-User-Email"
)

const contextKeyUser = "identity_user"

// User is the authenticated caller.
type User struct {
	UID         string
	DisplayName string
	Email       string
}

// Claims are the token claims issued by the identity provider.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var errMissingIdentity = errors.New("missing identity")

// Middleware attaches the caller identity to each request.
type Middleware struct {
	mode        config.IdentityMode
	secret      []byte
	issuer      string
	publicPaths map[string]bool
	admins      map[string]bool
}

// NewMiddleware creates the identity middleware for the configured mode.
func NewMiddleware(cfg config.Identity) (*Middleware, error) {
	switch cfg.Mode {
	case config.IdentityModeHeader:
	case config.IdentityModeJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("IDENTITY_JWT_SECRET is required in jwt identity mode")
		}
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}

	admins := make(map[string]bool, len(cfg.AdminUIDs))
	for _, uid := range cfg.AdminUIDs {
		if uid = strings.TrimSpace(uid); uid != "" {
			admins[uid] = true
		}
	}

	return &Middleware{
		admins: admins,
		mode:   cfg.Mode,
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
		},
	}, nil
}

// Handler returns the gin handler. Public paths pass through without identity;
// every other request without a valid identity is rejected with 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		user, err := m.resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  domainerrors.CodeUnauthorized,
			})
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// IsAdmin reports whether uid is listed in ADMIN_UIDS.
func (m *Middleware) IsAdmin(uid string) bool {
	return m.admins[uid]
}

// RequireAdmin rejects callers that are not admins with 403. It must run after Handler.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := FromContext(c)
		if !ok || !m.IsAdmin(user.UID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin access required",
				"code":  domainerrors.CodeForbidden,
			})
			return
		}
		c.Next()
	}
}

func (m *Middleware) resolve(r *http.Request) (User, error) {
	if m.mode == config.IdentityModeJWT {
		return m.fromToken(r)
	}
	return fromHeaders(r)
}

func fromHeaders(r *http.Request) (User, error) {
	uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if uid == "" {
		return User{}, errMissingIdentity
	}
	return User{
		UID:         uid,
		DisplayName: strings.TrimSpace(r.Header.Get(HeaderName)),
		Email:       strings.TrimSpace(r.Header.Get(HeaderEmail)),
	}, nil
}

func (m *Middleware) fromToken(r *http.Request) (User, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return User{}, errMissingIdentity
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return User{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return User{}, errMissingIdentity
	}

	return User{UID: claims.Subject, DisplayName: claims.Name, Email: claims.Email}, nil
}

// FromContext returns the caller attached by the middleware.
func FromContext(c *gin.Context) (User, bool) {
	if v, exists := c.Get(contextKeyUser); exists {
		if user, ok := v.(User); ok {
			return user, true
		}
	}
	return User{}, false
}

package middleware

import (
	"errors"
	"time"

	"orgmanager/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// JWTCustomClaims are the claims accepted on bearer tokens.
type JWTCustomClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens either with a shared HMAC secret or
// against a remote JWKS.
type Authenticator struct {
	secret []byte
	jwks   *keyfunc.JWKS
	logger zerolog.Logger
}

// NewAuthenticator prefers jwksURL when it is set.
func NewAuthenticator(secret, jwksURL string, logger zerolog.Logger) (*Authenticator, error) {
	logger = logger.With().Str("component", "auth").Logger()
	if jwksURL == "" {
		if secret == "" {
			return nil, errors.New("either a JWT secret or a JWKS URL is required")
		}
		return &Authenticator{secret: []byte(secret), logger: logger}, nil
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn().Err(err).Str("jwks_url", jwksURL).Msg("JWKS refresh failed")
		},
	})
	if err != nil {
		return nil, err
	}
	return NewJWKSAuthenticator(jwks, logger), nil
}

// NewJWKSAuthenticator verifies tokens against an already loaded key set.
func NewJWKSAuthenticator(jwks *keyfunc.JWKS, logger zerolog.Logger) *Authenticator {
	return &Authenticator{jwks: jwks, logger: logger}
}

// Middleware rejects requests without a valid bearer token and records the
// token subject on the request context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			c.SetRequest(c.Request().WithContext(common.WithSubject(c.Request().Context(), claims.Subject)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			a.logger.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("rejected request")
			return common.SendUnauthorizedError(c)
		},
	}
	if a.jwks != nil {
		config.KeyFunc = a.jwks.Keyfunc
	} else {
		config.SigningKey = a.secret
	}
	return echojwt.WithConfig(config)
}

// Close stops the background JWKS refresh.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

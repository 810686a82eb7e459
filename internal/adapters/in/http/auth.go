package http

import (
	"net/http"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	tokenContextKey = "user"
	actorContextKey = "actor"
)

// Claims are issued by the identity service. The subject is the user id.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware verifies HS256 bearer tokens signed with secret.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(Claims) },
		ErrorHandler: func(_ echo.Context, _ error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
		},
	})
}

// RequireRole admits only the listed roles and stores the caller as a kernel.Actor.
// The system role can never come from a token.
func RequireRole(roles ...kernel.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFrom(c)
			if err != nil {
				return err
			}

			id, err := kernel.UUIDFromString(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token subject is not a user id")
			}
			role, err := kernel.ParseRole(claims.Role)
			if err != nil || role == kernel.RoleSystem {
				return echo.NewHTTPError(http.StatusForbidden, "unknown role")
			}
			if !allowed(role, roles) {
				return echo.NewHTTPError(http.StatusForbidden, role.String()+" may not call this endpoint")
			}

			actor, err := kernel.NewActor(id, role)
			if err != nil {
				return err
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func allowed(role kernel.Role, roles []kernel.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func claimsFrom(c echo.Context) (*Claims, error) {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return claims, nil
}

// actorFrom returns the caller stored by RequireRole.
func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorContextKey).(kernel.Actor)
	return actor
}

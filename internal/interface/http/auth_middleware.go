package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skinscan/internal/domain/auth"
	apperrors "github.com/yanqian/skinscan/pkg/errors"
)

// authMiddleware requires a valid clinician access token on patient and
// detection routes.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		claims, verr := svc.ValidateToken(c.Request.Context(), token)
		switch {
		case verr == nil:
			setClinician(c, claims)
			c.Next()
		case apperrors.IsCode(verr, apperrors.CodeInvalidToken):
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_token", errMessage(verr), verr))
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(verr), verr))
		}
	}
}

// requireScope rejects requests whose token role does not grant scope. It must
// run after authMiddleware.
func requireScope(scope auth.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClinician(c)
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
			return
		}
		if !claims.Allows(scope) {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "forbidden", fmt.Sprintf("role %s lacks scope %s", claims.Role, scope), nil))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, *HTTPError) {
	if strings.TrimSpace(header) == "" {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil)
	}
	return token, nil
}

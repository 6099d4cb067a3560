package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/skinscan/internal/domain/auth"
)

const clinicianClaimsKey = "clinician_claims"

// setClinician stores the validated token claims for downstream handlers.
func setClinician(c *gin.Context, claims auth.Claims) {
	c.Set(clinicianClaimsKey, claims)
}

func currentClinician(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(clinicianClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok && claims.ClinicianID != 0
}

// requestAttrs returns the log attributes for a request, with the clinician
// id once the auth middleware has run.
func requestAttrs(c *gin.Context) []any {
	attrs := []any{"method", c.Request.Method, "path", c.Request.URL.Path}
	if claims, ok := currentClinician(c); ok {
		attrs = append(attrs, "clinician_id", claims.ClinicianID)
	}
	return attrs
}

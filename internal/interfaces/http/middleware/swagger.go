package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
)

// SwaggerProtection guards the API docs. Disabled docs answer 404, an IP
// allow list (single IPs or CIDRs) answers 403 to everyone else, and
// RequireAuth runs the given JWT middleware first.
func SwaggerProtection(cfg config.SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	nets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", c.GetString(RequestIDKey)))
			return
		}

		if len(cfg.AllowedIPs) > 0 && !ipAllowed(net.ParseIP(c.ClientIP()), nets) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				"NOT_AUTHORIZED", "Access to API documentation is restricted", c.GetString(RequestIDKey)))
			return
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			jwtMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

// parseAllowList turns IPs and CIDRs into networks; invalid entries are skipped
func parseAllowList(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				continue
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		if _, n, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func ipAllowed(ip net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

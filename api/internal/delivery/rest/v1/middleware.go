package v1

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/cache"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const DEFAULT_LIMIT = 30
const EXPIRATION_SECONDS = 30

var invoiceLimiter = cache.NewRateLimiter(EXPIRATION_SECONDS * time.Second)

// returns true if rate limit is exceeded
func invoiceRateLimit(clientIp string, limit int) bool {
	if limit <= 0 {
		limit = DEFAULT_LIMIT
	}
	return !invoiceLimiter.Allow(clientIp, limit)
}

func (h *Handler) invoiceRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if invoiceRateLimit(c.ClientIP(), h.config.Payments.InvoiceRateLimit) {
			responseErr(c, http.StatusTooManyRequests, domain.ErrMsgRateLimitExceeded, "")
			return
		}
		c.Next()
	}
}

// operator routes. the Access header is checked against a bcrypt hash,
// no hash configured means the routes are closed
func (h *Handler) adminAccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := h.config.Secrets.OperatorKeyHash
		access := c.Request.Header.Get("Access")

		if hash == "" || access == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(access)) != nil {
			responseErr(c, http.StatusUnauthorized, domain.ErrMsgAccessDenied, "")
			return
		}
		c.Next()
	}
}

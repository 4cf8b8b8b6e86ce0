package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/orca/internal/adapters/forwarder"
	"github.com/bnema/orca/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindTimeout:
		return http.StatusRequestTimeout
	case domain.KindCapacity:
		return http.StatusServiceUnavailable
	case domain.KindConnectivity:
		return http.StatusBadGateway
	case domain.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the typed error body and records err on the context
// for the request logger.
func abortWithError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(kind), forwarder.ErrorResponse{Error: err.Error(), Kind: kind})
}

func badRequest(c *gin.Context, format string, args ...any) {
	abortWithError(c, fmt.Errorf("%w: %s", domain.ErrInvalid, fmt.Sprintf(format, args...)))
}

// timeoutFrom converts a timeout in whole seconds. Zero selects the server
// default.
func timeoutFrom(seconds int) (time.Duration, bool) {
	if seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

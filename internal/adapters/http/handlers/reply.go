package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/app/result"
)

// outcome describes how a service result is written.
type outcome struct {
	status  int
	success string
	failure string

	// byCode overrides failure for a specific first error code.
	byCode map[string]string
}

// reply writes res as an envelope. Failures take the status of their first error.
func reply[T any](c *gin.Context, res result.Result[T], o outcome) {
	if res.IsSuccess() {
		c.JSON(o.status, dto.FromResult(res, o.success, ""))
		return
	}

	msg := o.failure
	if first, ok := res.FirstError(); ok {
		if m, found := o.byCode[first.Code]; found {
			msg = m
		}
	}

	c.JSON(dto.FailureStatus(res.Errors()), dto.FromResult(res, "", msg))
}

// pathID parses the :id segment. A malformed id yields 0, which the services
// reject as an invalid identifier.
func pathID(c *gin.Context) int {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0
	}

	return id
}

// chain appends h to mw without aliasing the caller's slice.
func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)

	return append(out, h)
}

package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/domain"
)

// HandlerFunc is a business-logic entry point. It returns the envelope to
// transmit, or an error for Classify to turn into one.
type HandlerFunc func(c *gin.Context) (*Envelope, error)

// Handle adapts a HandlerFunc into a gin handler. It is the single
// classification boundary: any failure the function returns is classified
// and transmitted in its place, and exactly one response is produced per
// request. Headers and cookies attached to the context before the function
// returns are carried on both paths, since the body is only written here.
func Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		env, err := fn(c)
		if err != nil {
			Respond(c, Classify(c, err))
			return
		}
		if env == nil {
			env = OK(nil)
		}
		Respond(c, env)
	}
}

// ParamID parses the named path parameter as an unsigned integer ID.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, domain.BadRequest("invalid " + name + " parameter")
	}
	return uint(id), nil
}

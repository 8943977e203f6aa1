package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ErrorCase pairs a usecase sentinel with the status and message it maps to.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError writes the first case matching err, or the
// fallback when no case does. Unmapped errors are infrastructure faults;
// the fallback message keeps their detail out of the response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

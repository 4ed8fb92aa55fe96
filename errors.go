package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Two failure classes cross the core boundary: not-found (entity missing
// or not owned by the effective user) and business-rule violations.
// Everything else from gorm bubbles up as a 500.

type notFoundError struct{ msg string }

func (e notFoundError) Error() string { return e.msg }

func notFound(msg string) error { return notFoundError{msg: msg} }

func isNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

func respondError(c *gin.Context, err error) {
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// parseDate parses a day-granular "2006-01-02" value. Empty input returns
// a nil date with no error, so optional fields pass through.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return &t, nil
}

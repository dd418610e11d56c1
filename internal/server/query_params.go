package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// parseTimeParam accepts RFC 3339 timestamps or bare dates.
func parseTimeParam(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	t = t.UTC()
	return &t, nil
}

func parseFloatParam(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	return &v, nil
}

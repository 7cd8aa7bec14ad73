// Package handler wires HTTP endpoints to services. Handlers stay thin:
// bind, delegate, respond.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseBoolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

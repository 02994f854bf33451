package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func parseID(value, field string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, newValidationError(field, "invalid_id", "invalid id")
	}
	return id, nil
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	return parseID(c.Param(name), name)
}

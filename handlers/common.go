package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pixshare/apperr"
	"pixshare/feed"
)

// respondError writes the uniform failure body: a stable machine-readable
// kind plus a display message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(apperr.Status(kind), gin.H{
		"error":   string(kind),
		"message": apperr.MessageOf(err),
	})
}

func invalidInput(c *gin.Context, message string) {
	respondError(c, apperr.New(apperr.InvalidInput, message))
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		invalidInput(c, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pagination reads page and limit query parameters. Unparsable values fall
// back to the defaults; out-of-range values are left for the feed service to
// reject.
func pagination(c *gin.Context) (page, limit int64) {
	page = 1
	limit = feed.DefaultPageSize
	if v, err := strconv.ParseInt(c.Query("page"), 10, 64); err == nil {
		page = v
	}
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil {
		limit = v
	}
	return page, limit
}

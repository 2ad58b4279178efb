package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/auth"
	log "github.com/sirupsen/logrus"
)

// respondError writes the JSON error body for err with the status of its kind
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnavailable {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("❌ Request failed")
	}
	c.JSON(apperr.HTTPStatus(kind), model.ErrorResponse{
		Error:   string(kind),
		Message: apperr.MessageOf(err),
	})
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Error:   string(apperr.KindValidation),
		Message: err.Error(),
	})
}

// uuidParam parses a path parameter, answering 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   string(apperr.KindValidation),
			Message: "invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) string {
	return c.MustGet("user_id").(string)
}

func currentIdentity(c *gin.Context) *auth.Identity {
	return c.MustGet("identity").(*auth.Identity)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/pkg/apperr"
	"github.com/davitren/storefront/pkg/response"
)

// respondError is the single funnel from service errors to HTTP responses.
// Validation failures surface their field details; not-found and
// authorization failures short-circuit with their message; everything else
// collapses to a logged generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, apperr.Status(e), e.Message, e.Details)
}

// fromValidation returns err as a validation error, or nil for any other
// kind. Handlers use it when a validation failure needs extra context in
// the envelope, such as echoed form input.
func fromValidation(err error) *apperr.Error {
	e := apperr.From(err)
	if e.Kind != apperr.KindValidation {
		return nil
	}
	return e
}

func asFieldMap(details any) map[string]string {
	if m, ok := details.(map[string]string); ok {
		return m
	}
	return nil
}

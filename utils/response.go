package utils

import (
	"math"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"crewmanager/apperrors"
)

// Pagination is the envelope attached to every list response.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// PageParams reads page/pageSize query parameters with the standard 1/50
// defaults.
func PageParams(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	pageSize, _ = strconv.Atoi(c.Query("pageSize", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return page, pageSize
}

// ListResponse builds the {items, pagination} body.
func ListResponse(items interface{}, page, pageSize int, totalCount int64) fiber.Map {
	return fiber.Map{
		"items": items,
		"pagination": Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: totalCount,
			TotalPages: int(math.Ceil(float64(totalCount) / float64(pageSize))),
		},
	}
}

// HandleError translates a service error into the HTTP response. Unexpected
// errors are logged and reported to Sentry; their detail never reaches the
// client.
func HandleError(c *fiber.Ctx, log *logrus.Entry, err error) error {
	if apperrors.IsInternal(err) {
		log.WithError(err).Error("internal error")
		sentry.CaptureException(err)
	}
	return c.Status(apperrors.StatusOf(err)).JSON(fiber.Map{
		"error": apperrors.ClientMessage(err),
	})
}

// ParseUint safely parses a route or query parameter to uint.
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// Pointer returns a pointer to the given value.
func Pointer[T any](v T) *T {
	return &v
}

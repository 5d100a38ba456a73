package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewmanager/apperrors"
)

func quietLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestHandleErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", apperrors.Validation("name is required"), fiber.StatusBadRequest, "name is required"},
		{"not found", apperrors.NotFound("boat not found"), fiber.StatusNotFound, "boat not found"},
		{"conflict", apperrors.Conflict("already crew"), fiber.StatusConflict, "already crew"},
		{"forbidden", apperrors.Forbidden("not yours"), fiber.StatusForbidden, "not yours"},
		{"internal hides detail", apperrors.Internal(errors.New("pq: connection refused")), fiber.StatusInternalServerError, "internal server error"},
		{"untagged hides detail", errors.New("raw failure"), fiber.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return HandleError(c, quietLog(), tc.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.body, body["error"])
		})
	}
}

func TestPageParams(t *testing.T) {
	app := fiber.New()
	var page, pageSize int
	app.Get("/", func(c *fiber.Ctx) error {
		page, pageSize = PageParams(c)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, pageSize)

	_, err = app.Test(httptest.NewRequest("GET", "/?page=3&pageSize=25", nil))
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, pageSize)

	// Out-of-range values fall back to the defaults.
	_, err = app.Test(httptest.NewRequest("GET", "/?page=0&pageSize=9999", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, pageSize)
}

func TestListResponsePagination(t *testing.T) {
	body := ListResponse([]int{1, 2, 3}, 2, 3, 7)

	pagination, ok := body["pagination"].(Pagination)
	require.True(t, ok)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 3, pagination.PageSize)
	assert.Equal(t, int64(7), pagination.TotalCount)
	assert.Equal(t, 3, pagination.TotalPages)
}

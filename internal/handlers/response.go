package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/hostelhub/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Code    apperror.Kind `json:"code"`
}

// respondError writes the failure envelope for err. Unclassified and internal
// errors are logged with their cause and answered with a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	if kind == apperror.KindInternal {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   apperror.PublicMessage(err),
		Code:    kind,
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondItems[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

func respondPage[T any](c *gin.Context, result *services.ListResult[T]) {
	respondPageData(c, result.Items, len(result.Items), result.Total, result.Pagination())
}

func respondPageData(c *gin.Context, data interface{}, count, total int, pagination query.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      count,
		"total":      total,
		"pagination": pagination,
		"data":       data,
	})
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// bindBody binds a JSON or multipart body and runs gin's binding tags
func bindBody(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return apperror.Validation("Invalid request body: " + err.Error())
	}
	return nil
}

// listParams reads the page, limit and sort parameters shared by paginated listings
func listParams(c *gin.Context, sortFields []string, fallback []query.SortField) ([]query.SortField, *query.Page, error) {
	sort, err := query.ParseSort(c.Query("sort"), sortFields, fallback)
	if err != nil {
		return nil, nil, err
	}
	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	return sort, &page, nil
}

// optionalFloat parses a numeric query parameter. Empty values yield nil.
func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.Validation(name + " must be a number")
	}
	return &v, nil
}

package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	imagesField = "images"

	maxRoomImages      = 5
	maxComplaintImages = 3
	maxAdImages        = 5
)

// saveUploads stores the files sent in the images field of a multipart request
// and returns their references. Non-multipart requests carry no uploads.
func saveUploads(c *gin.Context, files storage.FileStore, logger *logrus.Logger, limit int) ([]string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid multipart form: " + err.Error())
	}

	headers := form.File[imagesField]
	if len(headers) > limit {
		return nil, apperror.Validation(fmt.Sprintf("too many images: at most %d allowed", limit))
	}

	refs := make([]string, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			discardUploads(c, files, logger, refs)
			return nil, apperror.Internal("Failed to read uploaded file", err)
		}
		ref, err := files.Save(c.Request.Context(), header.Filename, header.Size, f)
		f.Close()
		if err != nil {
			discardUploads(c, files, logger, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// discardUploads removes files saved for a request that then failed
func discardUploads(c *gin.Context, files storage.FileStore, logger *logrus.Logger, refs []string) {
	for _, ref := range refs {
		if err := files.Delete(c.Request.Context(), ref); err != nil {
			logger.WithError(err).WithField("ref", ref).Warn("Failed to remove orphaned upload")
		}
	}
}

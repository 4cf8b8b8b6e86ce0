package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bnema/orca/internal/adapters/forwarder"
	"github.com/bnema/orca/internal/domain"
	"github.com/gin-gonic/gin"
)

const uploadField = "file"

func (s *Server) uploadFiles(c *gin.Context) {
	tenant := domain.TenantID(c.Param("tenant"))
	if err := tenant.Validate(); err != nil {
		abortWithError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, forwarder.ErrorResponse{
				Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
				Kind:  domain.KindInvalid,
			})
			return
		}
		badRequest(c, "read multipart form: %v", err)
		return
	}

	headers := form.File[uploadField]
	if len(headers) == 0 {
		badRequest(c, "no %q parts in upload", uploadField)
		return
	}

	saved := make([]domain.WorkspaceFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			badRequest(c, "open upload %s: %v", header.Filename, err)
			return
		}
		file, err := s.files.Save(c.Request.Context(), tenant, header.Filename, f)
		_ = f.Close()
		if err != nil {
			abortWithError(c, fmt.Errorf("save %s: %w", header.Filename, err))
			return
		}
		saved = append(saved, file)
	}

	c.JSON(http.StatusCreated, gin.H{"files": saved})
}

func (s *Server) listFiles(c *gin.Context) {
	files, err := s.files.List(c.Request.Context(), domain.TenantID(c.Param("tenant")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) deleteFile(c *gin.Context) {
	err := s.files.Delete(c.Request.Context(), domain.TenantID(c.Param("tenant")), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

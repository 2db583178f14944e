package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"teddywatch/internal/dao"
	"teddywatch/internal/pipeline"
	"teddywatch/pkg/log"
)

const uploadField = "file"

// nginx's code for a client that hung up before the response
const statusClientClosedRequest = 499

var errNoFile = errors.New("No file uploaded")

// public status and message per failure kind; details stay in the log
var pipelineErrors = map[pipeline.Kind]struct {
	code    int
	message string
}{
	pipeline.KindDecode:    {http.StatusBadRequest, "Failed to decode image"},
	pipeline.KindInference: {http.StatusInternalServerError, "Failed to run detection"},
	pipeline.KindTimeout:   {http.StatusInternalServerError, "Detection timed out"},
	pipeline.KindCanceled:  {statusClientClosedRequest, "Request canceled"},
	pipeline.KindEncode:    {http.StatusInternalServerError, "Failed to encode result image"},
	pipeline.KindStore:     {http.StatusInternalServerError, "Failed to read statistics"},
	pipeline.KindInternal:  {http.StatusInternalServerError, "Internal server error"},
}

func (s *Server) writePipelineError(c *gin.Context, err error) {
	kind := pipeline.KindOf(err)
	log.GetLogger(c.Request.Context()).WithError(err).WithField("kind", kind).Error("request failed")

	e, ok := pipelineErrors[kind]
	if !ok {
		e = pipelineErrors[pipeline.KindInternal]
	}
	s.writeError(c, e.code, errors.New(e.message))
}

// handleDetect 上传图片检测泰迪熊
// @Summary 检测泰迪熊
// @Description 上传一张图片，返回标注后的图片（base64 JPEG）及检测结果，并记录统计
// @Tags 检测
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "图片文件"
// @Success 200 {object} dao.DetectResponse "检测成功"
// @Failure 400 {object} ErrorResponse "图片无法解码或未上传"
// @Failure 500 {object} ErrorResponse "内部服务器错误"
// @Router /detect/ [post]
func (s *Server) handleDetect(c *gin.Context) {
	if s.conf.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.conf.MaxUploadSize)
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(c, http.StatusRequestEntityTooLarge, errors.New("Upload too large"))
			return
		}
		s.writeError(c, http.StatusBadRequest, errNoFile)
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.writePipelineError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.writePipelineError(c, err)
		return
	}

	outcome, err := s.pipeline.Process(c.Request.Context(), data)
	if err != nil {
		s.writePipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dao.NewDetectResponse(outcome.Image, outcome.Count(), outcome.Message))
}

package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"

	_ "teddywatch/docs"
	"teddywatch/internal/config"
	"teddywatch/internal/metrics"
	"teddywatch/internal/pipeline"
	"teddywatch/pkg/log"
)

type Server struct {
	conf        *config.Config
	httpServer  *http.Server
	pipeline    *pipeline.Pipeline
	metrics     *metrics.Metrics
	influxQuery api.QueryAPI
	logger      *logrus.Entry
	now         func() time.Time
}

type Option func(*Server)

// WithInfluxQuery enables the trend endpoint.
func WithInfluxQuery(q api.QueryAPI) Option {
	return func(s *Server) {
		s.influxQuery = q
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func NewServer(ctx context.Context, conf *config.Config, p *pipeline.Pipeline, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		conf:     conf,
		pipeline: p,
		metrics:  m,
		logger:   log.Component(ctx, "server"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestId echoes or generates X-Request-Id and puts it on the request
// context for log.GetLogger.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(log.HttpXRequestId, requestId)
		c.Request = c.Request.WithContext(log.WithRequestId(c.Request.Context(), requestId))
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		log.GetLogger(c.Request.Context()).Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		s.logger.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		s.logger.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		s.logger.Fatal(err)
	}
}

func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Fatalf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	// 错误信息
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

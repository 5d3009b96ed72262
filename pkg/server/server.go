// Package server exposes translation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/japaniel/kondate/pkg/dictionary"
	"github.com/japaniel/kondate/pkg/menu"
	"github.com/japaniel/kondate/pkg/morph"
	"github.com/japaniel/kondate/pkg/translate"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Translator translates a single text.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string, opts translate.Options) (translate.Response, error)
}

// MenuTranslator translates a whole restaurant menu.
type MenuTranslator interface {
	TranslateMenu(ctx context.Context, restaurantID, targetLang string) (menu.Summary, error)
}

// TermFinder finds dictionary terms in a text.
type TermFinder interface {
	FindTerms(ctx context.Context, text string) []dictionary.FoundTerm
}

// TextAnalyzer reports token statistics.
type TextAnalyzer interface {
	TextStats(text string) morph.Stats
}

// Deps are the handlers' collaborators. Menus may be nil, in which case the
// menu route answers 503.
type Deps struct {
	Translator Translator
	Menus      MenuTranslator
	Terms      TermFinder
	Analyzer   TextAnalyzer
	Logger     *zap.Logger
}

type handler struct {
	Deps
}

// NewRouter builds the gin engine with all routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger))

	h := &handler{Deps: d}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/translate", h.translate)
		api.POST("/restaurants/:id/menu/translate", h.translateMenu)
		api.GET("/terms", h.terms)
		api.GET("/stats", h.stats)
	}
	return r
}

// requestLogger tags each request with an id and logs it when done.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	UseDictionary  *bool  `json:"useDictionary"`
}

func (h *handler) translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := translate.DefaultOptions()
	if req.UseDictionary != nil {
		opts.UseDictionary = *req.UseDictionary
	}

	resp, err := h.Translator.Translate(c.Request.Context(), req.Text, req.TargetLanguage, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type menuRequest struct {
	TargetLanguage string `json:"targetLanguage"`
}

func (h *handler) translateMenu(c *gin.Context) {
	if h.Menus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu translation is not configured"})
		return
	}
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.Menus.TranslateMenu(c.Request.Context(), c.Param("id"), req.TargetLanguage)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": summary.Count, "items": summary.Items})
}

func (h *handler) terms(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	found := h.Terms.FindTerms(c.Request.Context(), text)
	if found == nil {
		found = []dictionary.FoundTerm{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(found), "terms": found})
}

func (h *handler) stats(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	c.JSON(http.StatusOK, h.Analyzer.TextStats(text))
}

// fail maps invalid arguments to 400 and everything else to 500.
func (h *handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, translate.ErrInvalidArgument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := c.Get(requestIDKey)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "requestId": id})
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

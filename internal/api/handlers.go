package api

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"resalelens/server/config"
	"resalelens/server/internal/analysis"
	"resalelens/server/internal/chart"
	"resalelens/server/internal/estimator"
	"resalelens/server/internal/intake"
	"resalelens/server/internal/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	multipartMemory     = 8 << 20
)

var errHistoryDisabled = errors.New("history is disabled")

// HistoryStore is the read side of the analysis history
type HistoryStore interface {
	GetRecentRecords(limit int) ([]models.HistoryRecord, error)
	GetCategorySummaries() ([]models.CategorySummary, error)
}

type Handler struct {
	service   *analysis.Service
	history   HistoryStore
	logger    *logrus.Logger
	maxUpload int64
}

// pageData feeds the index and result templates
type pageData struct {
	Categories  []config.CategoryInfo
	Selected    string
	Description string
	Info        string
	Error       string
	Strategy    string
	Result      *models.Analysis
	Chart       template.HTML
	ExportURL   string
	ChartURL    string
}

// NewHandler creates the HTTP handler. history may be nil when history is disabled.
func NewHandler(service *analysis.Service, history HistoryStore, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	maxUpload := cfg.Estimator.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &Handler{
		service:   service,
		history:   history,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.newPage())
}

// AnalyzePage handles the HTML form submission
func (h *Handler) AnalyzePage(c *gin.Context) {
	page := h.newPage()

	in, err := h.readInput(c)
	if err != nil {
		status := uploadStatus(err)
		page.Error = "업로드를 처리할 수 없습니다. 파일 크기를 확인해주세요."
		c.HTML(status, "index.html", page)
		return
	}
	page.Selected = in.Category
	page.Description = in.Description

	result, err := h.service.Analyze(c.Request.Context(), RequestID(c), in)
	switch {
	case errors.Is(err, intake.ErrDescriptionRequired):
		page.Info = intake.DescriptionPrompt
		c.HTML(http.StatusUnprocessableEntity, "index.html", page)
		return
	case errors.Is(err, intake.ErrUnknownCategory):
		page.Error = "알 수 없는 카테고리입니다. 목록에서 선택해주세요."
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	case err != nil && result == nil:
		page.Error = "분석 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
		c.HTML(http.StatusInternalServerError, "index.html", page)
		return
	}

	page.Result = result
	if result.Chart != "" {
		page.Chart = template.HTML(result.Chart)
	}
	if result.Trend != nil {
		query := trendQuery(result.Category, result.Estimate)
		page.ExportURL = "/api/trend/export.xlsx?" + query
		page.ChartURL = "/api/trend/chart.svg?" + query
	}

	status := http.StatusOK
	if errors.Is(err, estimator.ErrCollaborator) {
		status = http.StatusBadGateway
	}
	c.HTML(status, "result.html", page)
}

// Analyze handles POST /api/analyze
func (h *Handler) Analyze(c *gin.Context) {
	in, err := h.readInput(c)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read upload")
		c.JSON(uploadStatus(err), gin.H{"error": "Failed to read upload"})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), RequestID(c), in)
	switch {
	case errors.Is(err, intake.ErrDescriptionRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": intake.DescriptionPrompt})
	case errors.Is(err, intake.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown category %q", in.Category)})
	case errors.Is(err, estimator.ErrCollaborator):
		c.JSON(http.StatusBadGateway, result)
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze item"})
	default:
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, config.GetCategoryInfos())
}

// GetTrend returns a simulated series for ?category=&price=
func (h *Handler) GetTrend(c *gin.Context) {
	series, ok := h.trendFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) GetTrendChart(c *gin.Context) {
	series, ok := h.trendFromQuery(c)
	if !ok {
		return
	}

	svg, err := chart.SVG(series)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render chart")
		svg = chart.Placeholder()
	}
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}

func (h *Handler) ExportTrend(c *gin.Context) {
	series, ok := h.trendFromQuery(c)
	if !ok {
		return
	}

	buf, err := chart.Workbook(series)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
		return
	}

	filename := fmt.Sprintf("trend-%s.xlsx", series.Category)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errHistoryDisabled.Error()})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.history.GetRecentRecords(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetHistorySummary(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errHistoryDisabled.Error()})
		return
	}

	summaries, err := h.history.GetCategorySummaries()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get history summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history summary"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"strategy": h.service.StrategyName(),
		"history":  h.history != nil,
	})
}

func (h *Handler) newPage() pageData {
	return pageData{
		Categories: config.GetCategoryInfos(),
		Selected:   string(models.CategoryElectronics),
		Strategy:   h.service.StrategyName(),
	}
}

// readInput reads description, category and the optional image from a multipart or urlencoded body
func (h *Handler) readInput(c *gin.Context) (analysis.Input, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return analysis.Input{}, err
	}

	in := analysis.Input{
		Description: c.Request.FormValue("description"),
		Category:    c.Request.FormValue("category"),
	}

	file, _, err := c.Request.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, nil
	}
	if err != nil {
		return analysis.Input{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("failed to read image: %w", err)
	}
	in.Image = data
	return in, nil
}

func (h *Handler) trendFromQuery(c *gin.Context) (models.TrendSeries, bool) {
	category, ok := models.ParseCategory(c.Query("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown category %q", c.Query("category"))})
		return models.TrendSeries{}, false
	}

	var price *int64
	if raw := c.Query("price"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative integer"})
			return models.TrendSeries{}, false
		}
		price = &v
	}

	return h.service.Trend(category, price), true
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func trendQuery(category models.Category, est *models.PriceEstimate) string {
	q := url.Values{}
	q.Set("category", string(category))
	if est != nil && est.HasAmount() {
		q.Set("price", strconv.FormatInt(*est.Amount, 10))
	}
	return q.Encode()
}

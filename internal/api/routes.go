package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"resalelens/server/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewRouter builds a gin engine with recovery, request logging and CORS
func NewRouter(allowedOrigins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, requestIDHeader)
	corsConfig.ExposeHeaders = []string{requestIDHeader, "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.SetHTMLTemplate(pageTemplates())

	router.GET("/", handler.Index)
	router.POST("/analyze", handler.AnalyzePage)
	router.GET("/healthz", handler.Health)

	api := router.Group("/api")
	{
		api.POST("/analyze", handler.Analyze)
		api.GET("/categories", handler.GetCategories)
		api.GET("/trend", handler.GetTrend)
		api.GET("/trend/chart.svg", handler.GetTrendChart)
		api.GET("/trend/export.xlsx", handler.ExportTrend)
		api.GET("/history", handler.GetHistory)
		api.GET("/history/summary", handler.GetHistorySummary)
	}
}

func pageTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"won": func(amount *int64) string {
			if amount == nil {
				return ""
			}
			return models.FormatAmount(*amount)
		},
		"price": func(v float64) string {
			return models.FormatAmount(int64(v))
		},
	}).ParseFS(templateFS, "templates/*.html"))
}

package handler

import (
	"reflect"
	"strings"
	"sync"

	"brai/internal/repository"
	"brai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Info describes the running service on /health.
type Info struct {
	Name    string `json:"service"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// Handler handles HTTP requests
type Handler struct {
	datasets  repository.DatasetRepository
	strains   repository.StrainRepository
	models    repository.ModelRepository
	predictor *service.Predictor
	info      Info
	logger    *zap.Logger

	writeAuth []gin.HandlerFunc
}

// NewHandler creates a new API handler
func NewHandler(
	datasets repository.DatasetRepository,
	strains repository.StrainRepository,
	modelRepo repository.ModelRepository,
	predictor *service.Predictor,
	info Info,
	logger *zap.Logger,
) *Handler {
	registerFieldNames.Do(useWireFieldNames)
	return &Handler{
		datasets:  datasets,
		strains:   strains,
		models:    modelRepo,
		predictor: predictor,
		info:      info,
		logger:    logger,
	}
}

// ProtectWrites runs mw before the handlers that create predictions.
func (h *Handler) ProtectWrites(mw ...gin.HandlerFunc) {
	h.writeAuth = append(h.writeAuth, mw...)
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/dataset", h.ListDatasets)
		api.GET("/dataset/:id", h.GetDataset)

		api.GET("/strains/:id", h.GetStrain)
		api.POST("/strains/:id", h.GetStrain)

		api.GET("/models", h.ListModels)
		api.GET("/models/:id", h.GetModel)

		predictions := api.Group("/predictions")
		predictions.POST("", append(h.writeAuth, h.CreatePrediction)...)
		predictions.GET("", h.ListPredictions)
		predictions.GET("/byCombination", h.GetPredictionByCombination)
		predictions.POST("/existingCombinations", h.ListCombinations)
		predictions.GET("/:id", h.GetPrediction)
	}
}

var registerFieldNames sync.Once

// useWireFieldNames makes validation errors name fields as clients send them.
func useWireFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"brai/internal/middleware"
	"brai/internal/repository"
	"brai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, protect ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	catalog := repository.NewStaticCatalog()
	modelRepo := repository.NewStaticModelRepository()
	predictor := service.NewPredictor(catalog, catalog, modelRepo,
		repository.NewMemoryPredictionRepository(), service.NewMetrics(nil), zap.NewNop())

	h := NewHandler(catalog, catalog, modelRepo, predictor, Info{Name: "brai", Version: "test", Mode: "development"}, zap.NewNop())
	h.ProtectWrites(protect...)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

// newCSVRouter serves datasets written from files below a temporary root.
func newCSVRouter(t *testing.T, files map[string]string) *gin.Engine {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	catalog, err := repository.NewCSVCatalog(root, nil, zap.NewNop())
	require.NoError(t, err)
	modelRepo := repository.NewStaticModelRepository()
	predictor := service.NewPredictor(catalog, catalog, modelRepo,
		repository.NewMemoryPredictionRepository(), service.NewMetrics(nil), zap.NewNop())

	h := NewHandler(catalog, catalog, modelRepo, predictor, Info{Name: "brai", Version: "test", Mode: "development"}, zap.NewNop())
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

type envelope struct {
	Success      bool              `json:"success"`
	Code         int               `json:"code"`
	ErrorMessage string            `json:"errorMessage"`
	Data         []json.RawMessage `json:"data"`
	Total        int               `json:"total"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
	HasMore      bool              `json:"hasMore"`
}

func do(t *testing.T, r http.Handler, method, target string, body any, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

var tc1Body = map[string]string{
	"datasetId":      "TC1",
	"modelId":        "sj_rf",
	"maleStrainId":   "TC1_001",
	"femaleStrainId": "TC1_022",
}

func TestRootAndHealth(t *testing.T) {
	r := newRouter(t)

	w, _ := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"BRAI API server is running"}`, w.Body.String())

	w, _ = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"brai","version":"test","mode":"development"}`, w.Body.String())
}

func TestDatasetRoutes(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.Data, 1)
	assert.JSONEq(t, `{"datasets":["AI","TC1"],"numberOfDatasets":2}`, string(env.Data[0]))

	w, env = do(t, r, http.MethodGet, "/api/dataset/AI", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ds struct {
		ID      string `json:"id"`
		SNPInfo struct {
			NumberOfSNP int `json:"numberOfSNP"`
		} `json:"snpInfo"`
	}
	decode(t, env.Data[0], &ds)
	assert.Equal(t, "AI", ds.ID)
	assert.Equal(t, 3, ds.SNPInfo.NumberOfSNP)

	w, env = do(t, r, http.MethodGet, "/api/dataset/XX", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, 404, env.Code)
	assert.Equal(t, "데이터세트를 찾을 수 없습니다", env.ErrorMessage)
}

func TestStrainRoutes(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/strains/TC1_001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var strain struct {
		ID        string         `json:"id"`
		Phenotype map[string]any `json:"phenotype"`
	}
	decode(t, env.Data[0], &strain)
	assert.Equal(t, 45.12, strain.Phenotype["weight"])
	assert.Equal(t, "round", strain.Phenotype["shape"])

	w, _ = do(t, r, http.MethodGet, "/api/strains/TC1_001?datasetId=TC1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/strains/TC1_001", map[string]string{"datasetId": "AI"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "계통을 찾을 수 없습니다", env.ErrorMessage)

	w, _ = do(t, r, http.MethodPost, "/api/strains/AI_101", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestModelRoutes(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"models":["keti_ai","sj_rf"],"numberOfModels":2}`, string(env.Data[0]))

	w, env = do(t, r, http.MethodGet, "/api/models/keti_ai", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"keti_ai","name":"keti_ai","modelType":"combiationAbility","modelDetail":"radomforest","trainedBy":"TC1","advanced":false}`,
		string(env.Data[0]))

	w, env = do(t, r, http.MethodGet, "/api/models/none", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "모델을 찾을 수 없습니다", env.ErrorMessage)
}

type predictionBody struct {
	ID                 string  `json:"id"`
	ModelID            string  `json:"modelId"`
	CreatedAt          string  `json:"createdAt"`
	OverallScore       float64 `json:"overallScore"`
	PredictedPhenotype map[string]struct {
		Value      any      `json:"value"`
		Confidence float64  `json:"confidence"`
		Grade      *float64 `json:"grade"`
	} `json:"predictedPhenotype"`
}

func TestCreatePredictionFlow(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/predictions", tc1Body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first predictionBody
	decode(t, env.Data[0], &first)
	assert.Equal(t, 0.9, first.OverallScore)
	assert.Equal(t, 46.18, first.PredictedPhenotype["weight"].Value)
	assert.Equal(t, 0.9, first.PredictedPhenotype["weight"].Confidence)
	require.NotNil(t, first.PredictedPhenotype["weight"].Grade)
	assert.Equal(t, 3.0, *first.PredictedPhenotype["weight"].Grade)
	assert.Equal(t, "round", first.PredictedPhenotype["shape"].Value)
	_, err := time.Parse(time.RFC3339, first.CreatedAt)
	assert.NoError(t, err)

	w, env = do(t, r, http.MethodPost, "/api/predictions", tc1Body)
	require.Equal(t, http.StatusOK, w.Code)
	var second predictionBody
	decode(t, env.Data[0], &second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	w, env = do(t, r, http.MethodGet, "/api/predictions/byCombination?maleId=TC1_001&femaleId=TC1_022", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byCombo predictionBody
	decode(t, env.Data[0], &byCombo)
	assert.Equal(t, first.ID, byCombo.ID)

	w, env = do(t, r, http.MethodGet, "/api/predictions/"+first.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.Data, 1)

	w, env = do(t, r, http.MethodPost, "/api/predictions/existingCombinations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.Data, 1)
	assert.JSONEq(t, `{"key":"TC1_022-TC1_001","maleStrainId":"TC1_001","femaleStrainId":"TC1_022","predictionId":"`+first.ID+`"}`,
		string(env.Data[0]))

	w, env = do(t, r, http.MethodPost, "/api/predictions/existingCombinations", map[string]string{"datasetId": "AI"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Data)
}

func TestCreatePredictionRejects(t *testing.T) {
	r := newRouter(t)

	missing := map[string]string{"datasetId": "TC1", "modelId": "sj_rf", "maleStrainId": "TC1_001"}
	w, env := do(t, r, http.MethodPost, "/api/predictions", missing)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "femaleStrainId: is required", env.ErrorMessage)

	w, _ = do(t, r, http.MethodPost, "/api/predictions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	foreign := map[string]string{"datasetId": "TC1", "modelId": "sj_rf", "maleStrainId": "AI_101", "femaleStrainId": "TC1_022"}
	w, env = do(t, r, http.MethodPost, "/api/predictions", foreign)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ErrorMessage, "maleStrainId")

	unknownModel := map[string]string{"datasetId": "TC1", "modelId": "gbm", "maleStrainId": "TC1_001", "femaleStrainId": "TC1_022"}
	w, env = do(t, r, http.MethodPost, "/api/predictions", unknownModel)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "모델을 찾을 수 없습니다", env.ErrorMessage)

	unknownStrain := map[string]string{"datasetId": "TC1", "modelId": "sj_rf", "maleStrainId": "TC1_001", "femaleStrainId": "TC1_999"}
	w, env = do(t, r, http.MethodPost, "/api/predictions", unknownStrain)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "계통을 찾을 수 없습니다", env.ErrorMessage)
}

func TestListPredictionsRoute(t *testing.T) {
	r := newRouter(t)

	pairs := [][2]string{{"TC1_001", "TC1_022"}, {"TC1_022", "TC1_001"}, {"TC1_022", "TC1_022"}}
	for _, pair := range pairs {
		body := map[string]string{"datasetId": "TC1", "modelId": "keti_ai", "maleStrainId": pair[0], "femaleStrainId": pair[1]}
		w, _ := do(t, r, http.MethodPost, "/api/predictions", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := do(t, r, http.MethodGet, "/api/predictions?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Total)
	assert.Equal(t, 1, env.Page)
	assert.Equal(t, 2, env.Limit)
	assert.True(t, env.HasMore)
	assert.Len(t, env.Data, 2)

	w, env = do(t, r, http.MethodGet, "/api/predictions?page=2&limit=2&sort=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.HasMore)
	assert.Len(t, env.Data, 1)

	for _, target := range []string{
		"/api/predictions?page=0",
		"/api/predictions?limit=101",
		"/api/predictions?sort=up",
		"/api/predictions?page=abc",
	} {
		w, _ = do(t, r, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestPredictionLookupsNotFound(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/predictions/byCombination?maleId=A&femaleId=B", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "예측 결과를 찾을 수 없습니다", env.ErrorMessage)

	w, _ = do(t, r, http.MethodGet, "/api/predictions/byCombination?maleId=A", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/predictions/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePredictionRequiresToken(t *testing.T) {
	secret := []byte("s3cret")
	r := newRouter(t, middleware.AuthMiddleware(secret, zap.NewNop()))

	w, env := do(t, r, http.MethodPost, "/api/predictions", tc1Body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 401, env.Code)

	token, err := middleware.IssueToken(secret, "tester", time.Hour)
	require.NoError(t, err)
	w, _ = do(t, r, http.MethodPost, "/api/predictions", tc1Body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Reads stay open.
	w, _ = do(t, r, http.MethodGet, "/api/predictions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNonFiniteCellsStaySerializable(t *testing.T) {
	r := newCSVRouter(t, map[string]string{
		"NF/strains/strains.csv": "marker,chr,bp,S1,S2\nm1,1,100,A,G\n",
		"NF/phenotype/phenotype.csv": "id,weight,brix\n" +
			"S1,NaN,Inf\n" +
			"S2,40,1e400\n",
	})

	w, env := do(t, r, http.MethodGet, "/api/strains/S1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotZero(t, w.Body.Len())
	var strain struct {
		ID        string         `json:"id"`
		Phenotype map[string]any `json:"phenotype"`
	}
	decode(t, env.Data[0], &strain)
	assert.Equal(t, "S1", strain.ID)
	assert.Empty(t, strain.Phenotype)

	body := map[string]string{"datasetId": "NF", "modelId": "sj_rf", "maleStrainId": "S1", "femaleStrainId": "S2"}
	w, env = do(t, r, http.MethodPost, "/api/predictions", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var pred struct {
		PredictedPhenotype map[string]any `json:"predictedPhenotype"`
	}
	decode(t, env.Data[0], &pred)
	assert.Empty(t, pred.PredictedPhenotype)

	w, env = do(t, r, http.MethodGet, "/api/predictions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Total)
	assert.Len(t, env.Data, 1)
}

func TestByCombinationWithDashedIDs(t *testing.T) {
	r := newCSVRouter(t, map[string]string{
		"D/strains/strains.csv": "marker,chr,bp,A,B-C,A-B,C\nm1,1,100,A,G,T,T\n",
		"D/phenotype/phenotype.csv": "id,weight\n" +
			"A,10\nB-C,20\nA-B,30\nC,40\n",
	})

	body := map[string]string{"datasetId": "D", "modelId": "sj_rf", "maleStrainId": "B-C", "femaleStrainId": "A"}
	w, _ := do(t, r, http.MethodPost, "/api/predictions", body)
	require.Equal(t, http.StatusCreated, w.Code)

	// "A-B-C" is the key of both crosses; only the stored one may match.
	w, _ = do(t, r, http.MethodGet, "/api/predictions/byCombination?maleId=C&femaleId=A-B", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/predictions/byCombination?maleId=B-C&femaleId=A", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pred struct {
		MaleStrainID   string `json:"maleStrainId"`
		FemaleStrainID string `json:"femaleStrainId"`
	}
	decode(t, env.Data[0], &pred)
	assert.Equal(t, "B-C", pred.MaleStrainID)
	assert.Equal(t, "A", pred.FemaleStrainID)
}

func TestListPredictionsHugePage(t *testing.T) {
	r := newRouter(t)
	w, _ := do(t, r, http.MethodPost, "/api/predictions", tc1Body)
	require.Equal(t, http.StatusCreated, w.Code)

	for _, target := range []string{
		"/api/predictions?page=9223372036854775807&limit=2",
		"/api/predictions?page=92233720368547759&limit=100",
	} {
		w, env := do(t, r, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, env.ErrorMessage, "page", target)
	}

	w, env := do(t, r, http.MethodGet, "/api/predictions?page=5&limit=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Data)
	assert.False(t, env.HasMore)
	assert.Equal(t, 1, env.Total)
}

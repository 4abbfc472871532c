package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	_ "github.com/fleetrisk/telematics-backend-go/internal/analysis/detect"
	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
	"github.com/fleetrisk/telematics-backend-go/internal/config"
	"github.com/fleetrisk/telematics-backend-go/internal/database"
)

const tripCSV = `trip_id,user_id,start_lat,start_lon,end_lat,end_lon,distance,driving_time,sudden_start_count,sudden_stop_count,sudden_acceleration_count,sudden_deceleration_count,eot,trip_point
t1,u1,37.5,127.0,37.55,127.05,9,1200,0,1,0,0,Y,20
t2,u1,37.5,127.0,37.55,127.05,250,1800,0,2,0,0,Y,20
t3,u2,37.5665,126.978,35.1796,129.0756,500,18000,0,0,0,0,Y,0
`

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Port: ":0", Thresholds: anomaly.DefaultThresholds}
	return SetupRouter(cfg, db)
}

func uploadCSV(t *testing.T, router *gin.Engine, csv string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "trips.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func do(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPI_Health(t *testing.T) {
	router := testRouter(t)
	w := do(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_IngestRunAndQuery(t *testing.T) {
	router := testRouter(t)

	w := uploadCSV(t, router, tripCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodPost, "/api/v1/analysis/run")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/analysis/flagged")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total int64 `json:"total"`
			Data  []struct {
				TripID string `json:"trip_id"`
				Flags  struct {
					SuspiciousDistance bool `json:"flag_suspicious_distance"`
					AnySuspicious      bool `json:"flag_any_suspicious"`
				} `json:"flags"`
			} `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.Data.Total)
	require.Len(t, resp.Data.Data, 2)
	assert.Equal(t, "t2", resp.Data.Data[0].TripID)
	assert.True(t, resp.Data.Data[0].Flags.SuspiciousDistance)

	w = do(router, http.MethodGet, "/api/v1/analysis/users")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/analysis/summary")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "high_risk_users")
}

func TestAPI_ExportWorkbook(t *testing.T) {
	router := testRouter(t)

	require.Equal(t, http.StatusOK, uploadCSV(t, router, tripCSV).Code)
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/api/v1/analysis/run").Code)

	w := do(router, http.MethodGet, "/api/v1/analysis/export")
	require.Equal(t, http.StatusOK, w.Code)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{"Flagged_Trips", "User_IDs"}, f.GetSheetList())
}

func TestAPI_SchemaErrorNamesColumns(t *testing.T) {
	router := testRouter(t)

	badCSV := "trip_id,start_lat\nt1,37.5\n"
	w := uploadCSV(t, router, badCSV)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "user_id")
	assert.Contains(t, w.Body.String(), "eot")
}

func TestAPI_ResultsBeforeAnyRun(t *testing.T) {
	router := testRouter(t)

	w := do(router, http.MethodGet, "/api/v1/analysis/flagged")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/v1/analysis/export")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

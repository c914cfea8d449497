package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/BioMart/BioMart-Backend/src/middleware"
	"github.com/BioMart/BioMart-Backend/src/models"
	"github.com/BioMart/BioMart-Backend/src/services"
)

func setupRouter(t *testing.T) (*gin.Engine, *services.ScoreService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetSecretKey("test-secret")

	dsn := filepath.Join(t.TempDir(), "mart.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&models.BiometricScoreModel{}, &models.UserModel{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	userService := services.NewUserService(db)
	if _, err := userService.CreateUser(&models.UserModel{Username: "tester", Password: "secret"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	scoreService := services.NewScoreService(db)

	router := gin.New()
	SetupUserRoutes(router, userService)
	SetupScoreRoutes(router, scoreService)

	return router, scoreService
}

func login(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(models.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("login returned empty token")
	}
	return resp.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := setupRouter(t)

	body, _ := json.Marshal(models.LoginRequest{Username: "tester", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestScoresRequireAuth(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/scores", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestScoresEndToEnd(t *testing.T) {
	router, scoreService := setupRouter(t)
	token := login(t, router, "tester", "secret")

	score := 62
	nbpk := 14
	sampleId := 7
	if _, err := scoreService.InsertScores([]models.BiometricScoreModel{
		{ReId: "TXN123", Modality: models.ModalityFinger, Channel: models.ChannelRightThumb,
			SampleId: &sampleId, Score: &score, Nbpk: &nbpk},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/scores?reId=TXN123", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rows []models.BiometricScoreModel
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Nbpk == nil || *rows[0].Nbpk != 14 {
		t.Fatalf("nbpk = %v, want 14", rows[0].Nbpk)
	}
	if rows[0].Id == 0 {
		t.Fatalf("id not assigned")
	}
	if rows[0].RqType != "IP" {
		t.Fatalf("rqType = %q, want IP", rows[0].RqType)
	}
}

func TestScoreSummaryEndpoint(t *testing.T) {
	router, scoreService := setupRouter(t)
	token := login(t, router, "tester", "secret")

	score := 100
	if _, err := scoreService.InsertScores([]models.BiometricScoreModel{
		{ReId: "A", Modality: models.ModalityFace, Channel: models.ChannelFace, Score: &score},
		{ReId: "B", Modality: models.ModalityFace, Channel: models.ChannelFace, Score: &score},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var summary []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary) != 1 {
		t.Fatalf("summary rows = %d, want 1", len(summary))
	}
	if summary[0]["modality"] != "FACE" || summary[0]["count"] != float64(2) {
		t.Fatalf("unexpected summary: %+v", summary[0])
	}
}

func TestScoresBadDateFilter(t *testing.T) {
	router, _ := setupRouter(t)
	token := login(t, router, "tester", "secret")

	req := httptest.NewRequest(http.MethodGet, "/scores?from=26-01-2026", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

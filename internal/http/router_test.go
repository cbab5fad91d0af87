package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/aggregates"
	"github.com/yungbote/materials-catalog/internal/data/repos"
	repotest "github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	httpH "github.com/yungbote/materials-catalog/internal/http/handlers"
	httpMW "github.com/yungbote/materials-catalog/internal/http/middleware"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/gcp/gcptest"
	"github.com/yungbote/materials-catalog/internal/services"
)

type apiFixture struct {
	engine   *gin.Engine
	db       *gorm.DB
	bucket   *gcptest.FakeBucket
	category *types.Category
	admin    string
	user     string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := repotest.SQLite(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	agg := aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base:  aggregates.BaseDeps{DB: db, Log: log},
		Repos: set,
	})
	bucket := gcptest.NewFakeBucket()
	c := cache.NewMemory()
	metrics := observability.NewMetrics("catalog_test")
	query := services.NewCatalogQueryService(db, log, set, agg, c, metrics, 0)
	write := services.NewCatalogWriteService(log, agg, bucket, query, c, metrics)
	engagement := services.NewEngagementService(db, log, set, bucket, metrics)
	tokens, err := services.NewTokenService(log, "router-secret", "catalog")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	admin, _ := tokens.Issue(uuid.New(), ctxutil.RoleAdmin, time.Hour)
	user, _ := tokens.Issue(uuid.New(), ctxutil.RoleUser, time.Hour)

	engine := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, tokens),
		MaterialHandler: httpH.NewMaterialHandler(log, query, write, engagement, 8<<20),
		CatalogHandler:  httpH.NewCatalogHandler(log, query),
		HealthHandler:   httpH.NewHealthHandler(db),
	})
	return &apiFixture{
		engine:   engine,
		db:       db,
		bucket:   bucket,
		category: repotest.SeedCategory(t, db, "Programming"),
		admin:    admin,
		user:     user,
	}
}

func (f *apiFixture) do(method, path, token, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) materialForm(t *testing.T, withFile bool, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":       "Go Concurrency",
		"type":        "video",
		"category_id": uintStr(f.category.ID),
		"description": "Channels and goroutines",
		"author":      "Rob",
		"level":       "intermediate",
		"duration":    "1h 30min",
		"tags":        `["go", "concurrency"]`,
	}
	for k, v := range extra {
		fields[k] = v
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("field %s: %v", k, err)
		}
	}
	if withFile {
		part, err := w.CreateFormFile("file", "lecture.mp4")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = part.Write([]byte("video-bytes"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPI(t)
	if rec := f.do(http.MethodGet, "/healthcheck", "", "", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/readyz", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
	f.do(http.MethodGet, "/api/tags", "", "", nil)
	rec := f.do(http.MethodGet, "/metrics", "", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "catalog_test_api_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestCreateMaterialAsAdmin(t *testing.T) {
	f := newAPI(t)
	body, ct := f.materialForm(t, true, nil)
	rec := f.do(http.MethodPost, "/api/materials", f.admin, ct, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var m types.Material
	decode(t, rec, &m)
	if m.ID == 0 || m.CategoryName != "Programming" || len(m.Tags) != 2 {
		t.Fatalf("unexpected material: %+v", m)
	}
	if m.FilePath == nil || f.bucket.Len() != 1 {
		t.Fatalf("file not stored: path=%v objects=%d", m.FilePath, f.bucket.Len())
	}

	rec = f.do(http.MethodGet, "/api/statistics", "", "", nil)
	var stats types.Statistics
	decode(t, rec, &stats)
	if stats.TotalMaterials != 1 || stats.VideoContentHours != 1.5 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestCreateMaterialUploadFailureIsAtomic(t *testing.T) {
	f := newAPI(t)
	f.bucket.FailUpload = errors.New("bucket offline")
	body, ct := f.materialForm(t, true, nil)
	rec := f.do(http.MethodPost, "/api/materials", f.admin, ct, body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct{ Error string }
	decode(t, rec, &out)
	if out.Error != "internal server error" {
		t.Fatalf("leaked message: %q", out.Error)
	}
	var n int64
	f.db.Model(&types.Material{}).Count(&n)
	if n != 0 || f.bucket.Len() != 0 {
		t.Fatalf("partial write: rows=%d objects=%d", n, f.bucket.Len())
	}
}

func TestCreateMaterialRoleGates(t *testing.T) {
	f := newAPI(t)
	body, ct := f.materialForm(t, false, nil)
	if rec := f.do(http.MethodPost, "/api/materials", "", ct, body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", rec.Code)
	}
	body, ct = f.materialForm(t, false, nil)
	if rec := f.do(http.MethodPost, "/api/materials", f.user, ct, body); rec.Code != http.StatusForbidden {
		t.Fatalf("user: %d", rec.Code)
	}
}

func TestCreateMaterialValidationMessage(t *testing.T) {
	f := newAPI(t)
	body, ct := f.materialForm(t, false, map[string]string{"category_id": "99"})
	rec := f.do(http.MethodPost, "/api/materials", f.admin, ct, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	body, ct = f.materialForm(t, false, map[string]string{"level": "expert"})
	rec = f.do(http.MethodPost, "/api/materials", f.admin, ct, body)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "level is invalid") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUpdateReplacesTagsFromDelimitedList(t *testing.T) {
	f := newAPI(t)
	m := repotest.SeedMaterial(t, f.db, f.category.ID, "Rust Basics")
	repotest.SeedTag(t, f.db, m.ID, "rust")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("title", "Rust Basics 2e")
	_ = w.WriteField("tags", "systems; memory , rust")
	_ = w.Close()
	rec := f.do(http.MethodPut, "/api/materials/"+uintStr(m.ID), f.admin, w.FormDataContentType(), &buf)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out types.Material
	decode(t, rec, &out)
	if out.Title != "Rust Basics 2e" || len(out.Tags) != 3 {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestRateAndTrack(t *testing.T) {
	f := newAPI(t)
	m := repotest.SeedMaterial(t, f.db, f.category.ID, "Kubernetes")
	path := "/api/materials/" + uintStr(m.ID)

	if rec := f.do(http.MethodPost, path+"/rate", "", "application/json", bytes.NewBufferString(`{"value":4}`)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous rate: %d", rec.Code)
	}
	if rec := f.do(http.MethodPost, path+"/rate", f.user, "application/json", bytes.NewBufferString(`{"value":7}`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range: %d", rec.Code)
	}
	rec := f.do(http.MethodPost, path+"/rate", f.user, "application/json", bytes.NewBufferString(`{"value":4.5,"comment":"clear"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("rate: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Success bool                `json:"success"`
		Rating  types.RatingSummary `json:"rating"`
	}
	decode(t, rec, &out)
	if !out.Success || out.Rating.Average != 4.5 || out.Rating.Count != 1 {
		t.Fatalf("rating: %+v", out)
	}

	if rec := f.do(http.MethodPost, path+"/track", "", "application/json", bytes.NewBufferString(`{"action":"share"}`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad action: %d", rec.Code)
	}
	if rec := f.do(http.MethodPost, path+"/track", "", "application/json", bytes.NewBufferString(`{"action":"download"}`)); rec.Code != http.StatusOK {
		t.Fatalf("track: %d", rec.Code)
	}
	if rec := f.do(http.MethodPost, "/api/materials/999/track", "", "application/json", bytes.NewBufferString(`{"action":"view"}`)); rec.Code != http.StatusNotFound {
		t.Fatalf("missing material: %d", rec.Code)
	}
}

func TestDeletePermanently(t *testing.T) {
	f := newAPI(t)
	m := repotest.SeedMaterial(t, f.db, f.category.ID, "Old Webinar")
	path := "/api/materials/" + uintStr(m.ID)

	if rec := f.do(http.MethodDelete, path+"?permanently=maybe", f.admin, "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad flag: %d", rec.Code)
	}
	rec := f.do(http.MethodDelete, path+"?permanently=true", f.admin, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Success     bool `json:"success"`
		Permanently bool `json:"permanently"`
	}
	decode(t, rec, &out)
	if !out.Success || !out.Permanently {
		t.Fatalf("body: %+v", out)
	}
	if rec := f.do(http.MethodGet, path, "", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
}

func TestListMaterialsQueryValidation(t *testing.T) {
	f := newAPI(t)
	repotest.SeedMaterial(t, f.db, f.category.ID, "Docker")
	if rec := f.do(http.MethodGet, "/api/materials?dateRange=yesterday", "", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad range: %d", rec.Code)
	}
	rec := f.do(http.MethodGet, "/api/materials?search=dock&page=1&pageSize=5", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	var page types.MaterialPage
	decode(t, rec, &page)
	if len(page.Items) != 1 || page.Pagination.TotalItems != 1 || page.Pagination.PageSize != 5 {
		t.Fatalf("page: %+v", page.Pagination)
	}
}

func uintStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

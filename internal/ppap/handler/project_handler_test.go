package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/service"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/testutil"
	"github.com/xuri/excelize/v2"
)

func setupProjectTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	projectSvc := service.NewProjectService(repos.Project)
	exportSvc := service.NewExportService(repos.Project)
	h := NewProjectHandler(projectSvc, exportSvc)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/projects", h.ListProjects)
	api.GET("/projects/export", h.ExportProjects)
	api.POST("/projects", h.CreateProject)
	api.GET("/projects/:id", h.GetProject)
	api.PUT("/projects/:id", h.UpdateProject)
	api.DELETE("/projects/:id", h.DeleteProject)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestProjectCreateDefaults(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/projects",
		map[string]interface{}{
			"project_number": "P-100",
			"project_name":   "Door Hinge",
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["project_number"] != "P-100" {
		t.Errorf("Expected project_number P-100, got %v", data["project_number"])
	}
	if data["status"] != "draft" {
		t.Errorf("Expected default status draft, got %v", data["status"])
	}
	if data["progress_percentage"] != float64(0) {
		t.Errorf("Expected default progress 0, got %v", data["progress_percentage"])
	}
	if data["created_by"] != "test-user-001" {
		t.Errorf("Expected created_by test-user-001, got %v", data["created_by"])
	}
	if data["sales_manager_id"] != nil {
		t.Errorf("Expected nil sales_manager_id, got %v", data["sales_manager_id"])
	}
}

func TestProjectListWithManagersAndCounts(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")
	manager := testutil.SeedProfile(t, env.DB, "mgr-001", "王销售", "sales@test.com")

	testutil.SeedProject(t, env.DB, "proj-001", "P-001", "Alpha", "draft", 0, "test-user-001")
	testutil.SeedProject(t, env.DB, "proj-002", "P-002", "Beta", "draft", 10, "test-user-001")
	testutil.SeedProject(t, env.DB, "proj-003", "P-003", "Gamma", "in_progress", 50, "test-user-001")
	testutil.SeedProject(t, env.DB, "proj-004", "P-004", "Delta", "completed", 100, "test-user-001")

	// 给一个项目挂上销售负责人
	env.DB.Model(&entity.PPAPProject{}).
		Where("id = ?", "proj-003").
		Update("sales_manager_id", manager.ID)

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/projects", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 4 {
		t.Fatalf("Expected 4 projects, got %d", len(items))
	}
	if data["total"] != float64(4) {
		t.Errorf("Expected total 4, got %v", data["total"])
	}

	counts := data["status_counts"].(map[string]interface{})
	if counts["draft"] != float64(2) || counts["in_progress"] != float64(1) ||
		counts["completed"] != float64(1) || counts["on_hold"] != float64(0) {
		t.Errorf("Unexpected status counts: %v", counts)
	}

	// 列表按创建时间倒序，负责人内联解析
	var withManager map[string]interface{}
	for _, item := range items {
		p := item.(map[string]interface{})
		if p["id"] == "proj-003" {
			withManager = p
		}
	}
	if withManager == nil {
		t.Fatal("proj-003 missing from list")
	}
	sales := withManager["sales_manager"].(map[string]interface{})
	if sales["wechat_name"] != "王销售" {
		t.Errorf("Expected embedded sales manager, got %v", withManager["sales_manager"])
	}
}

func TestProjectListStatusFilter(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")

	testutil.SeedProject(t, env.DB, "proj-001", "P-001", "Alpha", "draft", 0, "test-user-001")
	testutil.SeedProject(t, env.DB, "proj-002", "P-002", "Beta", "on_hold", 30, "test-user-001")

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/projects?status=on_hold", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 filtered project, got %d", len(items))
	}

	// 过滤不影响计数口径：各状态计数之和仍等于总数
	counts := data["status_counts"].(map[string]interface{})
	if counts["draft"] != float64(1) || counts["on_hold"] != float64(1) {
		t.Errorf("Counts must cover the full set, got %v", counts)
	}
	if data["total"] != float64(2) {
		t.Errorf("Expected total 2, got %v", data["total"])
	}

	// 非法状态值
	w2 := testutil.DoRequest(env.Router, "GET", "/api/v1/projects?status=bogus", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", w2.Code)
	}
}

func TestProjectNumberImmutableOnUpdate(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")
	testutil.SeedProject(t, env.DB, "proj-001", "P-001", "Alpha", "draft", 0, "test-user-001")

	w := testutil.DoRequest(env.Router, "PUT", "/api/v1/projects/proj-001",
		map[string]interface{}{
			"project_number":      "P-999",
			"project_name":        "Alpha Renamed",
			"status":              "in_progress",
			"progress_percentage": 42,
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["project_number"] != "P-001" {
		t.Errorf("project_number must stay P-001, got %v", data["project_number"])
	}
	if data["project_name"] != "Alpha Renamed" {
		t.Errorf("Expected renamed project, got %v", data["project_name"])
	}
	if data["progress_percentage"] != float64(42) {
		t.Errorf("Expected progress 42, got %v", data["progress_percentage"])
	}

	var stored entity.PPAPProject
	env.DB.Where("id = ?", "proj-001").First(&stored)
	if stored.ProjectNumber != "P-001" {
		t.Errorf("Stored project_number mutated to %s", stored.ProjectNumber)
	}
}

func TestProjectDuplicateNumber(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")
	testutil.SeedProject(t, env.DB, "proj-001", "P-001", "Alpha", "draft", 0, "test-user-001")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/projects",
		map[string]interface{}{
			"project_number": "P-001",
			"project_name":   "Copycat",
		}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate number, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectProgressRange(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/projects",
		map[string]interface{}{
			"project_number":      "P-150",
			"project_name":        "Overdone",
			"progress_percentage": 150,
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for progress > 100, got %d", w.Code)
	}

	// 边界值100合法且原样保存
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/projects",
		map[string]interface{}{
			"project_number":      "P-151",
			"project_name":        "Done",
			"status":              "completed",
			"progress_percentage": 100,
		}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	resp := testutil.ParseResponse(w2)
	data := resp["data"].(map[string]interface{})
	if data["progress_percentage"] != float64(100) {
		t.Errorf("Expected progress 100, got %v", data["progress_percentage"])
	}
}

func TestProjectManagerNotAssigned(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")
	manager := testutil.SeedProfile(t, env.DB, "mgr-001", "李研发", "rd@test.com")

	// 空选择 → NULL引用
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/projects",
		map[string]interface{}{
			"project_number":      "P-200",
			"project_name":        "Bracket",
			"sales_manager_id":    "",
			"rd_manager_id":       manager.ID,
			"assembly_manager_id": "",
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	projectID := resp["data"].(map[string]interface{})["id"].(string)

	var stored entity.PPAPProject
	env.DB.Where("id = ?", projectID).First(&stored)
	if stored.SalesManagerID != nil {
		t.Errorf("Empty selection must persist as NULL, got %v", *stored.SalesManagerID)
	}
	if stored.RDManagerID == nil || *stored.RDManagerID != manager.ID {
		t.Errorf("Expected rd_manager_id %s, got %v", manager.ID, stored.RDManagerID)
	}

	// 编辑时清空负责人 → 回到NULL
	w2 := testutil.DoRequest(env.Router, "PUT", "/api/v1/projects/"+projectID,
		map[string]interface{}{
			"project_name":        "Bracket",
			"status":              "draft",
			"progress_percentage": 0,
			"rd_manager_id":       "",
		}, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	env.DB.Where("id = ?", projectID).First(&stored)
	if stored.RDManagerID != nil {
		t.Errorf("Cleared manager must persist as NULL, got %v", *stored.RDManagerID)
	}
}

func TestProjectDelete(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")
	testutil.SeedProject(t, env.DB, "proj-001", "P-001", "Alpha", "draft", 0, "test-user-001")

	w := testutil.DoRequest(env.Router, "DELETE", "/api/v1/projects/proj-001", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 删除后从下一次加载中消失
	w2 := testutil.DoRequest(env.Router, "GET", "/api/v1/projects", nil, token)
	resp := testutil.ParseResponse(w2)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Errorf("Expected empty list after delete, got %d items", len(items))
	}

	w3 := testutil.DoRequest(env.Router, "DELETE", "/api/v1/projects/proj-001", nil, token)
	if w3.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing project, got %d", w3.Code)
	}
}

func TestProjectGetNotFound(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/projects/nonexistent", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestProjectRequiresAuth(t *testing.T) {
	env := setupProjectTest(t)

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/projects", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestProjectExport(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "test-user-001", "Test Admin", "admin@test.com")
	testutil.SeedProject(t, env.DB, "proj-001", "P-001", "Alpha", "draft", 25, "test-user-001")
	testutil.SeedProject(t, env.DB, "proj-002", "P-002", "Beta", "completed", 100, "test-user-001")

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/projects/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("Failed to open exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Projects")
	if err != nil {
		t.Fatalf("Failed to read sheet: %v", err)
	}
	// 表头 + 两行数据
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] == rows[2][0] {
		t.Errorf("Expected distinct project numbers, got %v and %v", rows[1][0], rows[2][0])
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/Justinlulululu/PPAP-Master/internal/config"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/service"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/testutil"
)

func setupUserTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	profileSvc := service.NewProfileService(repos.Profile, nil, config.MinIOConfig{})
	h := NewUserHandler(profileSvc)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/users", h.List)
	api.GET("/users/search", h.Search)
	api.GET("/users/:id", h.Get)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestUserListOrderedByDisplayName(t *testing.T) {
	env := setupUserTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedProfile(t, env.DB, "user-b", "Bravo", "bravo@test.com")
	testutil.SeedProfile(t, env.DB, "user-a", "Alpha", "alpha@test.com")
	// 无微信名的用户按邮箱排序
	testutil.SeedProfile(t, env.DB, "user-c", "", "charlie@test.com")

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/users", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(items))
	}

	got := make([]string, 0, 3)
	for _, item := range items {
		got = append(got, item.(map[string]interface{})["id"].(string))
	}
	want := []string{"user-a", "user-b", "user-c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestUserSearch(t *testing.T) {
	env := setupUserTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedProfile(t, env.DB, "user-1", "张三", "zhangsan@test.com")
	testutil.SeedProfile(t, env.DB, "user-2", "李四", "lisi@test.com")

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/users/search?q=张", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(items))
	}
	if items[0].(map[string]interface{})["wechat_name"] != "张三" {
		t.Errorf("Unexpected match: %v", items[0])
	}

	// 缺少关键字
	w2 := testutil.DoRequest(env.Router, "GET", "/api/v1/users/search", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without query, got %d", w2.Code)
	}
}

func TestUserGet(t *testing.T) {
	env := setupUserTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProfile(t, env.DB, "user-1", "王五", "wangwu@test.com")

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/users/user-1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["email"] != "wangwu@test.com" {
		t.Errorf("Unexpected profile: %v", data)
	}

	w2 := testutil.DoRequest(env.Router, "GET", "/api/v1/users/missing", nil, token)
	if w2.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w2.Code)
	}
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/inkpress/inkpress/internal/models"
	"github.com/inkpress/inkpress/internal/stats"
	"gorm.io/gorm"
)

func setupPublicDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:publicposts_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	errMigrate := db.AutoMigrate(&models.Author{}, &models.Tag{}, &models.Post{}, &models.ContentBlock{}, &models.PostView{})
	if errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func newPublicRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewPostHandler(db, stats.NewRecorder(db))
	router := gin.New()
	router.GET("/api/posts", handler.List)
	router.GET("/api/posts/featured", handler.Featured)
	router.GET("/api/posts/:slug", handler.Get)
	return router
}

func createPost(t *testing.T, db *gorm.DB, slug, status string, featured bool, publishedDaysAgo int) models.Post {
	t.Helper()
	post := models.Post{
		Slug:     slug,
		Title:    slug,
		Summary:  "s",
		Image:    "i",
		Status:   status,
		Featured: featured,
	}
	if status == models.PostStatusPublished {
		publishedAt := time.Now().UTC().AddDate(0, 0, -publishedDaysAgo)
		post.PublishedAt = &publishedAt
	}
	if errCreate := db.Create(&post).Error; errCreate != nil {
		t.Fatalf("create post %s: %v", slug, errCreate)
	}
	return post
}

func getPath(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublicListExcludesDrafts(t *testing.T) {
	db := setupPublicDB(t)
	router := newPublicRouter(t, db)

	createPost(t, db, "visible", models.PostStatusPublished, false, 1)
	createPost(t, db, "hidden", models.PostStatusDraft, false, 0)

	w := getPath(t, router, "/api/posts")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
		Total int64 `json:"total"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.Total != 1 || len(resp.Posts) != 1 || resp.Posts[0].Slug != "visible" {
		t.Fatalf("draft leaked into public list: %+v", resp)
	}
}

func TestPublicListOrdersNewestFirst(t *testing.T) {
	db := setupPublicDB(t)
	router := newPublicRouter(t, db)

	createPost(t, db, "older", models.PostStatusPublished, false, 10)
	createPost(t, db, "newer", models.PostStatusPublished, false, 1)

	w := getPath(t, router, "/api/posts")
	var resp struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Posts) != 2 || resp.Posts[0].Slug != "newer" {
		t.Fatalf("unexpected order: %+v", resp.Posts)
	}
}

func TestPublicFeaturedOnlyReturnsFeaturedPublished(t *testing.T) {
	db := setupPublicDB(t)
	router := newPublicRouter(t, db)

	createPost(t, db, "featured-live", models.PostStatusPublished, true, 1)
	createPost(t, db, "featured-draft", models.PostStatusDraft, true, 0)
	createPost(t, db, "plain", models.PostStatusPublished, false, 2)

	w := getPath(t, router, "/api/posts/featured")
	var resp struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].Slug != "featured-live" {
		t.Fatalf("unexpected featured set: %+v", resp.Posts)
	}
}

func TestPublicGetReturnsOrderedBlocksAndHidesDrafts(t *testing.T) {
	db := setupPublicDB(t)
	router := newPublicRouter(t, db)

	post := createPost(t, db, "full-post", models.PostStatusPublished, false, 1)
	blocks := []models.ContentBlock{
		{PostID: post.ID, Type: models.BlockTypeText, Content: "second", Position: 1},
		{PostID: post.ID, Type: models.BlockTypeHeading, Content: "first", Position: 0},
	}
	if errCreate := db.Create(&blocks).Error; errCreate != nil {
		t.Fatalf("create blocks: %v", errCreate)
	}
	createPost(t, db, "secret-draft", models.PostStatusDraft, false, 0)

	w := getPath(t, router, "/api/posts/full-post")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Post struct {
			Blocks []struct {
				Content string `json:"content"`
			} `json:"content_blocks"`
		} `json:"post"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Post.Blocks) != 2 || resp.Post.Blocks[0].Content != "first" {
		t.Fatalf("blocks not ordered by position: %+v", resp.Post.Blocks)
	}

	draft := getPath(t, router, "/api/posts/secret-draft")
	if draft.Code != http.StatusNotFound {
		t.Fatalf("draft fetch: expected 404, got %d", draft.Code)
	}
}

func TestPublicGetRecordsView(t *testing.T) {
	db := setupPublicDB(t)
	router := newPublicRouter(t, db)

	post := createPost(t, db, "counted", models.PostStatusPublished, false, 1)

	w := getPath(t, router, "/api/posts/counted")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// The view is recorded on a background goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		db.Model(&models.PostView{}).Where("post_id = ?", post.ID).Count(&count)
		if count == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 view row, got %d", count)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/inkpress/internal/models"
	"gorm.io/gorm"
)

func newTagRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewTagHandler(db)
	router := gin.New()
	router.POST("/admin/api/tags", handler.Create)
	router.GET("/admin/api/tags", handler.List)
	router.PUT("/admin/api/tags/:id", handler.Update)
	router.DELETE("/admin/api/tags/:id", handler.Delete)
	return router
}

func TestCreateTagRejectsDuplicateName(t *testing.T) {
	db := setupContentDB(t)
	router := newTagRouter(t, db)

	first := doJSON(t, router, http.MethodPost, "/admin/api/tags", gin.H{"name": "Go"})
	if first.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", first.Code)
	}
	second := doJSON(t, router, http.MethodPost, "/admin/api/tags", gin.H{"name": "Go"})
	if second.Code != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", second.Code)
	}
}

func TestRenameTagGuardsAgainstCollision(t *testing.T) {
	db := setupContentDB(t)
	router := newTagRouter(t, db)

	a := models.Tag{Name: "Go"}
	b := models.Tag{Name: "Rust"}
	if errCreate := db.Create(&a).Error; errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}
	if errCreate := db.Create(&b).Error; errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}

	collide := doJSON(t, router, http.MethodPut, fmt.Sprintf("/admin/api/tags/%d", b.ID), gin.H{"name": "Go"})
	if collide.Code != http.StatusConflict {
		t.Fatalf("colliding rename: expected 409, got %d", collide.Code)
	}
	rename := doJSON(t, router, http.MethodPut, fmt.Sprintf("/admin/api/tags/%d", b.ID), gin.H{"name": "Zig"})
	if rename.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d", rename.Code)
	}
}

func TestDeleteTagRemovesJoinRowsButKeepsPosts(t *testing.T) {
	db := setupContentDB(t)
	router := newTagRouter(t, db)

	tag := models.Tag{Name: "Doomed"}
	if errCreate := db.Create(&tag).Error; errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}
	post := models.Post{Slug: "kept", Title: "Kept", Summary: "s", Image: "i", Status: models.PostStatusDraft}
	if errCreate := db.Create(&post).Error; errCreate != nil {
		t.Fatalf("create post: %v", errCreate)
	}
	if errAssoc := db.Model(&post).Association("Tags").Append(&tag); errAssoc != nil {
		t.Fatalf("associate tag: %v", errAssoc)
	}

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/admin/api/tags/%d", tag.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var joinCount int64
	db.Table("post_tags").Where("tag_id = ?", tag.ID).Count(&joinCount)
	if joinCount != 0 {
		t.Fatalf("expected 0 join rows, got %d", joinCount)
	}
	var postCount int64
	db.Model(&models.Post{}).Count(&postCount)
	if postCount != 1 {
		t.Fatal("deleting a tag must keep its posts")
	}
}

func TestListTagsIncludesPostCounts(t *testing.T) {
	db := setupContentDB(t)
	router := newTagRouter(t, db)

	tag := models.Tag{Name: "Counted"}
	if errCreate := db.Create(&tag).Error; errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}
	post := models.Post{Slug: "one", Title: "One", Summary: "s", Image: "i"}
	if errCreate := db.Create(&post).Error; errCreate != nil {
		t.Fatalf("create post: %v", errCreate)
	}
	if errAssoc := db.Model(&post).Association("Tags").Append(&tag); errAssoc != nil {
		t.Fatalf("associate tag: %v", errAssoc)
	}

	w := doJSON(t, router, http.MethodGet, "/admin/api/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var resp struct {
		Tags []struct {
			Name      string `json:"name"`
			PostCount int64  `json:"post_count"`
		} `json:"tags"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Tags) != 1 || resp.Tags[0].PostCount != 1 {
		t.Fatalf("unexpected tag list: %+v", resp.Tags)
	}
}

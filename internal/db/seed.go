package db

import (
	"context"
	"time"

	"github.com/inkpress/inkpress/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seed populates the database with demo authors, tags and posts. Existing
// content rows are removed first; admin accounts and settings are kept.
func Seed(ctx context.Context, conn *gorm.DB) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errExec := tx.Exec("DELETE FROM post_tags").Error; errExec != nil {
			return errExec
		}
		for _, model := range []any{&models.ContentBlock{}, &models.PostView{}, &models.Post{}, &models.Tag{}, &models.Author{}} {
			if errDel := tx.Where("1 = 1").Delete(model).Error; errDel != nil {
				return errDel
			}
		}

		authors := []models.Author{
			{
				Name:   "John Doe",
				Email:  "john.doe@techblog.com",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=John",
				Bio:    "Full-stack developer passionate about web technologies, AI, and building scalable applications.",
			},
			{
				Name:   "Jane Smith",
				Email:  "jane.smith@techblog.com",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Jane",
				Bio:    "Tech writer and software architect specializing in cloud computing and DevOps.",
			},
			{
				Name:   "Mike Johnson",
				Email:  "mike.johnson@techblog.com",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Mike",
				Bio:    "Data scientist and machine learning enthusiast.",
			},
		}
		if errCreate := tx.Create(&authors).Error; errCreate != nil {
			return errCreate
		}

		tagNames := []string{
			"Web Development", "Go", "Databases", "React", "TypeScript",
			"AI", "Cloud Computing", "DevOps", "Docker", "Python",
		}
		tags := make([]models.Tag, len(tagNames))
		for i, name := range tagNames {
			tags[i] = models.Tag{Name: name}
		}
		if errCreate := tx.Create(&tags).Error; errCreate != nil {
			return errCreate
		}
		tagByName := make(map[string]models.Tag, len(tags))
		for _, tag := range tags {
			tagByName[tag.Name] = tag
		}

		now := time.Now().UTC()
		published := func(daysAgo int) *time.Time {
			t := now.AddDate(0, 0, -daysAgo)
			return &t
		}
		readTime := func(minutes int) *int { return &minutes }

		posts := []struct {
			post   models.Post
			tags   []string
			blocks []models.ContentBlock
		}{
			{
				post: models.Post{
					Slug:        "building-a-blog-backend-in-go",
					Title:       "Building a Blog Backend in Go",
					Summary:     "A walkthrough of designing a blog CMS backend with Go, covering routing, persistence and session handling.",
					Image:       "https://images.unsplash.com/photo-1499750310107-5fef28a66643?w=800&q=80",
					Status:      models.PostStatusPublished,
					PublishedAt: published(14),
					Category:    "Web Development",
					ReadTime:    readTime(8),
					Featured:    true,
					AuthorID:    &authors[0].ID,
				},
				tags: []string{"Web Development", "Go", "Databases"},
				blocks: []models.ContentBlock{
					{Type: models.BlockTypeHeading, Content: "Introduction"},
					{Type: models.BlockTypeText, Content: "A modern blog backend needs routing, persistence and authentication. This post walks through one way to put those together in Go."},
					{Type: models.BlockTypeSubheading, Content: "Why Go?"},
					{Type: models.BlockTypeText, Content: "Go's standard HTTP machinery plus a small set of well-worn libraries gets you a production-ready service with very little ceremony."},
					{Type: models.BlockTypeCode, Content: "func main() {\n\tr := gin.Default()\n\tr.GET(\"/api/posts\", listPosts)\n\tr.Run(\":8080\")\n}", Language: "go"},
					{Type: models.BlockTypeQuote, Content: "The best way to learn is by building. Start small, iterate often, and don't be afraid to experiment."},
				},
			},
			{
				post: models.Post{
					Slug:        "shipping-with-docker-and-ci",
					Title:       "Shipping with Docker and CI",
					Summary:     "How to package a web service in a container and wire up a continuous delivery pipeline that you can trust.",
					Image:       "https://images.unsplash.com/photo-1605745341112-85968b19335b?w=800&q=80",
					Status:      models.PostStatusPublished,
					PublishedAt: published(7),
					Category:    "DevOps",
					ReadTime:    readTime(6),
					Featured:    true,
					AuthorID:    &authors[1].ID,
				},
				tags: []string{"DevOps", "Docker", "Cloud Computing"},
				blocks: []models.ContentBlock{
					{Type: models.BlockTypeHeading, Content: "From laptop to production"},
					{Type: models.BlockTypeText, Content: "Containers give you one artifact that runs the same everywhere. The pipeline's job is to build it once and promote it through environments."},
					{Type: models.BlockTypeImage, Content: "https://images.unsplash.com/photo-1667372393119-3d4c48d07fc9?w=800&q=80", Alt: "Server racks in a data center"},
					{Type: models.BlockTypeText, Content: "Keep images small, pin your base versions, and let the CI system own the credentials."},
				},
			},
			{
				post: models.Post{
					Slug:     "practical-machine-learning-notes",
					Title:    "Practical Machine Learning Notes",
					Summary:  "Field notes on getting machine learning models out of notebooks and into services people actually use.",
					Image:    "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=800&q=80",
					Status:   models.PostStatusDraft,
					Category: "AI",
					ReadTime: readTime(10),
					AuthorID: &authors[2].ID,
				},
				tags: []string{"AI", "Python"},
				blocks: []models.ContentBlock{
					{Type: models.BlockTypeHeading, Content: "Beyond the notebook"},
					{Type: models.BlockTypeText, Content: "Most models never make it to production. The gap is rarely the math; it is packaging, monitoring and data drift."},
				},
			},
		}

		for _, entry := range posts {
			post := entry.post
			if errCreate := tx.Omit("Tags", "ContentBlocks").Create(&post).Error; errCreate != nil {
				return errCreate
			}
			assoc := make([]models.Tag, 0, len(entry.tags))
			for _, name := range entry.tags {
				assoc = append(assoc, tagByName[name])
			}
			if errTags := tx.Model(&post).Association("Tags").Replace(assoc); errTags != nil {
				return errTags
			}
			for i, block := range entry.blocks {
				block.PostID = post.ID
				block.Position = i
				if errBlock := tx.Create(&block).Error; errBlock != nil {
					return errBlock
				}
			}
		}

		log.WithFields(log.Fields{
			"authors": len(authors),
			"tags":    len(tags),
			"posts":   len(posts),
		}).Info("seeded demo content")
		return nil
	})
}

package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// slugify builds a URL slug from a title: lowercase, non-alphanumerics
// collapsed to single hyphens.
func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugCleanup.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

/* =========================
   PUBLIC
========================= */

func GetBlogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blogs"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("blogs").Find(ctx,
			bson.M{"status": models.BlogStatusPublished},
			options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		blogs := make([]models.Blog, 0)
		if err := cursor.All(ctx, &blogs); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, blogs)
	}
}

func GetBlogBySlug(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blogs/:slug"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var blog models.Blog
		err := db.Collection("blogs").FindOne(ctx, bson.M{
			"slug":   c.Param("slug"),
			"status": models.BlogStatusPublished,
		}).Decode(&blog)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, blog)
	}
}

/* =========================
   ADMIN
========================= */

func GetAllBlogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/blogs"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("blogs").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		blogs := make([]models.Blog, 0)
		if err := cursor.All(ctx, &blogs); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, blogs)
	}
}

type blogCreateRequest struct {
	Title      string `json:"title" binding:"required"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content" binding:"required"`
	CoverImage string `json:"coverImage"`
	Status     string `json:"status"`
}

func CreateBlog(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/blogs"
		defer handlePanic(c, route)

		var req blogCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "title and content are required")
			return
		}

		status := req.Status
		if status == "" {
			status = models.BlogStatusDraft
		}
		if status != models.BlogStatusDraft && status != models.BlogStatusPublished {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		now := time.Now()
		blog := models.Blog{
			Title:      strings.TrimSpace(req.Title),
			Slug:       slugify(req.Title),
			Excerpt:    req.Excerpt,
			Content:    req.Content,
			CoverImage: req.CoverImage,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if status == models.BlogStatusPublished {
			blog.PublishedAt = &now
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("blogs").InsertOne(ctx, blog)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "a post with this slug already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			blog.ID = id
		}

		c.JSON(http.StatusCreated, blog)
	}
}

type blogUpdateRequest struct {
	Title      *string `json:"title"`
	Excerpt    *string `json:"excerpt"`
	Content    *string `json:"content"`
	CoverImage *string `json:"coverImage"`
	Status     *string `json:"status"`
}

func UpdateBlog(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/blogs/:id"
		defer handlePanic(c, route)

		blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req blogUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		now := time.Now()
		set := bson.M{"updatedAt": now}
		if req.Title != nil {
			set["title"] = strings.TrimSpace(*req.Title)
			set["slug"] = slugify(*req.Title)
		}
		if req.Excerpt != nil {
			set["excerpt"] = *req.Excerpt
		}
		if req.Content != nil {
			set["content"] = *req.Content
		}
		if req.CoverImage != nil {
			set["coverImage"] = *req.CoverImage
		}
		if req.Status != nil {
			if *req.Status != models.BlogStatusDraft && *req.Status != models.BlogStatusPublished {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			set["status"] = *req.Status
			if *req.Status == models.BlogStatusPublished {
				set["publishedAt"] = now
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("blogs").UpdateOne(ctx, bson.M{"_id": blogID}, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "post updated"})
	}
}

func DeleteBlog(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/blogs/:id"
		defer handlePanic(c, route)

		blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("blogs").DeleteOne(ctx, bson.M{"_id": blogID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
	}
}

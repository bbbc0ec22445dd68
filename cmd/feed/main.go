package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/classfeed/classfeed/go-services/internal/database"
	"github.com/classfeed/classfeed/go-services/internal/posts/repository"
)

// A read-only feed service: serves the public post list without the auth
// surface, for deployments that split reads from the main API.
func main() {
	port := os.Getenv("FEED_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var repo repository.Repository
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" {
		// attempt a connection with a short timeout; fall back to memory on failure
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v), using memory-backed repo", err)
			repo = repository.NewMemoryRepo()
		} else {
			db := os.Getenv("MONGODB_DATABASE")
			if db == "" {
				db = "classfeed"
			}
			repo = repository.NewMongoRepo(client.Database(db).Collection("posts"))
		}
	} else {
		repo = repository.NewMemoryRepo()
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/posts", func(c *gin.Context) {
		ps, err := repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
			return
		}
		c.JSON(http.StatusOK, ps)
	})
	r.GET("/posts/:id", func(c *gin.Context) {
		p, err := repo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	log.Printf("feed service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nindyaadesyana/chatbot/services"
)

// DatabaseController exposes the knowledge-base management endpoints:
// listing and deleting uploaded files and triggering a full re-ingestion.
type DatabaseController struct {
	store   *services.UploadStore
	indexer *services.IndexingService
}

// NewDatabaseController creates the controller.
func NewDatabaseController(store *services.UploadStore, indexer *services.IndexingService) *DatabaseController {
	return &DatabaseController{store: store, indexer: indexer}
}

// ListFiles is the gin handler for GET /api/database.
func (c *DatabaseController) ListFiles(ctx *gin.Context) {
	files, err := c.store.List()
	if err != nil {
		// An unreadable uploads dir presents as an empty listing, matching
		// the admin UI's expectation.
		ctx.JSON(http.StatusOK, gin.H{"files": []any{}})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"files": files})
}

type deleteFileRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// DeleteFile is the gin handler for DELETE /api/database. It removes the
// file from disk and its chunks from the vector collection.
func (c *DatabaseController) DeleteFile(ctx *gin.Context) {
	var req deleteFileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Filename tidak valid"})
		return
	}

	if err := c.store.Delete(req.Filename); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}
	if err := c.indexer.RemoveFile(ctx.Request.Context(), req.Filename); err != nil {
		log.Printf("SERVICE: Could not remove %s from the collection: %v", req.Filename, err)
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Reingest is the gin handler for POST /api/database/reingest. It runs the
// full ingestion pipeline in-process.
func (c *DatabaseController) Reingest(ctx *gin.Context) {
	if err := c.indexer.Rebuild(ctx.Request.Context()); err != nil {
		log.Printf("INDEXER: Re-ingestion failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Re-ingestion failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

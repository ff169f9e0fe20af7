package controller

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nindyaadesyana/chatbot/services"
)

// UploadController handles PDF uploads into the knowledge base.
type UploadController struct {
	store   *services.UploadStore
	indexer *services.IndexingService
}

// NewUploadController creates the controller.
func NewUploadController(store *services.UploadStore, indexer *services.IndexingService) *UploadController {
	return &UploadController{store: store, indexer: indexer}
}

// Upload is the gin handler for POST /api/upload. It accepts a multipart
// form with a single PDF under "file", saves it to the uploads directory,
// and indexes its text into the vector collection.
func (c *UploadController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Hanya file PDF yang didukung"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal membaca file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal membaca file"})
		return
	}

	path, err := c.store.Save(fileHeader.Filename, content)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.indexer.IndexFile(ctx.Request.Context(), path); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": fmt.Sprintf("File tersimpan namun gagal diproses: %v", err),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("PDF %s berhasil diupload dan diproses", fileHeader.Filename),
	})
}

package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

/*** Request bodies shared across handlers ***/

type CreateVideoReq struct {
	Title string `json:"title" binding:"required"`
}

type BindFileReq struct {
	StorageID string   `json:"storageId" binding:"required"`
	Duration  *float64 `json:"duration"`
}

type ReorderReq struct {
	IDs []string `json:"ids" binding:"required"`
}

/*** Videos (editor) ***/

func ListMyVideos(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		vs, err := svc.ListMyVideos(c.Request.Context(), identityFrom(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, vs)
	}
}

func GetVideo(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.GetVideo(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func CreateVideo(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVideoReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id, err := svc.CreateVideo(c.Request.Context(), identityFrom(c), req.Title)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func UpdateVideo(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VideoPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.UpdateVideo(c.Request.Context(), identityFrom(c), id, req); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func DeleteVideo(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteVideo(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

/*** Media ***/

func GenerateUploadURL(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.GenerateUploadURL(c.Request.Context(), identityFrom(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"uploadUrl": u})
	}
}

// UploadBlob receives the file behind a signed upload URL. The token in the
// query string is the only credential.
func UploadBlob(svc *Service, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		id, err := svc.StoreUpload(c.Request.Context(), c.Query("token"), body)
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
				return
			}
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"storageId": id})
	}
}

// ServeBlob streams a blob behind a signed media URL; range requests work so
// players can buffer and seek.
func ServeBlob(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := svc.BlobPath(c.Request.Context(), c.Param("id"), c.Query("token"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.File(path)
	}
}

func GetMediaURL(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.MediaURL(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": u})
	}
}

func SaveVideoFile(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BindFileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.SaveVideoFile(c.Request.Context(), identityFrom(c), id, req.StorageID, req.Duration); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func SaveThumbnail(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BindFileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.SaveThumbnail(c.Request.Context(), identityFrom(c), id, req.StorageID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func SaveQuestionMedia(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BindFileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.SaveQuestionMedia(c.Request.Context(), identityFrom(c), id, req.StorageID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*** Chapters ***/

func ListChapters(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		chs, err := svc.ListChapters(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, chs)
	}
}

func CreateChapter(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChapterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id, err := svc.CreateChapter(c.Request.Context(), identityFrom(c), c.Param("id"), req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func UpdateChapter(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChapterPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.UpdateChapter(c.Request.Context(), identityFrom(c), id, req); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func DeleteChapter(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteChapter(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ReorderChapters(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReorderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		if err := svc.ReorderChapters(c.Request.Context(), identityFrom(c), req.IDs); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ids": req.IDs})
	}
}

/*** Questions ***/

func ListQuestions(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		qs, err := svc.ListQuestions(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, qs)
	}
}

func GetQuestion(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := svc.GetQuestion(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if q.AnswerOptions == nil {
			q.AnswerOptions = []AnswerOption{}
		}
		c.JSON(http.StatusOK, q)
	}
}

func CreateQuestion(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuestionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id, err := svc.CreateQuestion(c.Request.Context(), identityFrom(c), c.Param("id"), req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func UpdateQuestion(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuestionPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.UpdateQuestion(c.Request.Context(), identityFrom(c), id, req); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func DeleteQuestion(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteQuestion(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

/*** Answer options ***/

func ListAnswerOptions(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := svc.ListAnswerOptions(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, opts)
	}
}

func CreateAnswerOption(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnswerOptionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id, err := svc.CreateAnswerOption(c.Request.Context(), identityFrom(c), c.Param("id"), req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func UpdateAnswerOption(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnswerOptionPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.UpdateAnswerOption(c.Request.Context(), identityFrom(c), id, req); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func DeleteAnswerOption(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteAnswerOption(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ReorderAnswerOptions(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReorderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		if err := svc.ReorderAnswerOptions(c.Request.Context(), identityFrom(c), req.IDs); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ids": req.IDs})
	}
}

/*** Interaction points ***/

func ListInteractionPoints(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ips, err := svc.ListInteractionPoints(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ips)
	}
}

func CreateInteractionPoint(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InteractionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id, err := svc.CreateInteractionPoint(c.Request.Context(), identityFrom(c), c.Param("id"), req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func UpdateInteractionPoint(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InteractionPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad request")
			return
		}
		id := c.Param("id")
		if err := svc.UpdateInteractionPoint(c.Request.Context(), identityFrom(c), id, req); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func DeleteInteractionPoint(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteInteractionPoint(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

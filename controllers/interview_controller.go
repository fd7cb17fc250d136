package controllers

import (
	"errors"
	"io"
	"net/http"

	"neurovisa/middlewares"
	"neurovisa/models"
	"neurovisa/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InterviewController struct {
	interviews *services.InterviewService
}

func NewInterviewController(interviews *services.InterviewService) *InterviewController {
	return &InterviewController{interviews: interviews}
}

func (ic *InterviewController) Start(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := ic.interviews.StartSession(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (ic *InterviewController) MySessions(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := ic.interviews.ListSessions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []models.InterviewSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (ic *InterviewController) GetSession(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrSessionNotFound.Error()})
		return
	}

	session, err := ic.interviews.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitAnswer evaluates one answer and returns it with its feedback
func (ic *InterviewController) SubmitAnswer(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	answer, err := ic.interviews.SubmitAnswer(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// Complete closes a session. The body is optional.
func (ic *InterviewController) Complete(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrSessionNotFound.Error()})
		return
	}

	var req services.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Status != "" && req.Status != models.StatusCompleted && req.Status != models.StatusInterrupted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be completed or interrupted"})
		return
	}

	session, err := ic.interviews.CompleteSession(c.Request.Context(), userID, sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": session.Status, "final_score": session.Score})
}

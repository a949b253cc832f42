package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"verdant/internal/services"
)

type createCommentRequest struct {
	Text string `json:"text" binding:"required"`
	Task string `json:"task"`
	// TaskID is accepted as an alias of task.
	TaskID string `json:"taskId"`
}

type updateCommentRequest struct {
	Text string `json:"text"`
}

func CreateComment(comments *services.Comments) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/comments"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}

		var req createCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		rawTask := req.Task
		if strings.TrimSpace(rawTask) == "" {
			rawTask = req.TaskID
		}
		taskID, err := services.ParseID(rawTask)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid task id")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		comment, err := comments.Create(ctx, who, taskID, req.Text)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

func GetTaskComments(comments *services.Comments) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/comments/task/:taskId"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}
		taskID, ok := parseIDParam(c, route, "taskId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := comments.ListByTask(ctx, who, taskID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// UpdateComment is limited to the author; blank text keeps the old text.
func UpdateComment(comments *services.Comments) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/comments/:commentId"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, route, "commentId")
		if !ok {
			return
		}

		var req updateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		comment, err := comments.Update(ctx, who, id, req.Text)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, comment)
	}
}

func DeleteComment(comments *services.Comments) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/comments/:commentId"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, route, "commentId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := comments.Delete(ctx, who, id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "Comment removed"})
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"verdant/internal/models"
	"verdant/internal/services"
)

type taskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	DueDate     *flexibleTime `json:"dueDate"`
	AssignedTo  string        `json:"assignedTo"`
	Project     string        `json:"project"`
}

func (r taskRequest) input() services.TaskInput {
	return services.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate.Ptr(),
		AssignedTo:  r.AssignedTo,
		Project:     r.Project,
	}
}

func CreateTask(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/tasks"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		var req taskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		task, err := tasks.Create(ctx, id, req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

func GetTasks(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := tasks.All(ctx)
		respondTaskList(c, route, list, err)
	}
}

func GetProjectTasks(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks/project/:projectId"
		defer handlePanic(c, route)

		projectID, ok := parseIDParam(c, route, "projectId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := tasks.ByProject(ctx, projectID)
		respondTaskList(c, route, list, err)
	}
}

// GetMyTasks lists tasks assigned to the caller.
func GetMyTasks(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks/user"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := tasks.ByUser(ctx, id)
		respondTaskList(c, route, list, err)
	}
}

func GetTasksDueToday(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks/due/today"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := tasks.DueToday(ctx)
		respondTaskList(c, route, list, err)
	}
}

func respondTaskList(c *gin.Context, route string, list []models.TaskView, err error) {
	if err != nil {
		respondServiceError(c, route, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetTask(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		task, err := tasks.Get(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// UpdateTask always rewrites dueDate and assignedTo; omitting them clears
// both.
func UpdateTask(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/tasks/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		var req taskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		task, err := tasks.Update(ctx, id, req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

func DeleteTask(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/tasks/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := tasks.Delete(ctx, id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
	}
}

func CountTasks(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks/count"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		n, err := tasks.Count(ctx)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalTasks": n})
	}
}

func CountMyTasks(tasks *services.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/tasks/count/user"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		n, err := tasks.CountByUser(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalTasks": n})
	}
}

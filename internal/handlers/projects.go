package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"verdant/internal/services"
)

type projectRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Members     []string      `json:"members"`
	EndDate     *flexibleTime `json:"endDate"`
	Status      string        `json:"status"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Members:     r.Members,
		EndDate:     r.EndDate.Ptr(),
		Status:      r.Status,
	}
}

func CreateProject(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/projects"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		var req projectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		project, err := projects.Create(ctx, id, req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

// GetProjects lists projects the caller owns or belongs to.
func GetProjects(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/projects"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := projects.List(ctx, id, c.Query("search"), c.Query("status"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetProject(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/projects/:id"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		detail, err := projects.Get(ctx, who, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func UpdateProject(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/projects/:id"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		var req projectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		project, err := projects.Update(ctx, who, id, req.input())
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func DeleteProject(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/projects/:id"
		defer handlePanic(c, route)

		who, ok := caller(c, route)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := projects.Delete(ctx, who, id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "Project deleted"})
	}
}

func CountProjects(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/projects/count"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		n, err := projects.Count(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalProjects": n})
	}
}

func GetProjectsDueToday(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/projects/due/today"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := projects.DueToday(ctx)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetProjectMembers(projects *services.Projects) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/projects/:id/members"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		emails, err := projects.MemberEmails(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, emails)
	}
}

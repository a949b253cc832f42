package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"verdant/internal/models"
	"verdant/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

func Register(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := req.Name
		if strings.TrimSpace(name) == "" {
			name = req.Username
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sess, err := accounts.Register(ctx, services.RegisterInput{
			Name:     name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		})
		if errors.Is(err, services.ErrConflict) {
			respondWithError(c, http.StatusBadRequest, route, "User already exists")
			return
		}
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, sessionResponse{Token: sess.Token, User: newUserResponse(sess.User)})
	}
}

func Login(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sess, err := accounts.Login(ctx, req.Email, req.Password)
		if errors.Is(err, services.ErrUnauthorized) {
			respondWithError(c, http.StatusUnauthorized, route, "Invalid credentials")
			return
		}
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, sessionResponse{Token: sess.Token, User: newUserResponse(sess.User)})
	}
}

func GetMe(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/me"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := accounts.Me(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(*user))
	}
}

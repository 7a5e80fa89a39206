package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kaustubh0601/Task-Management/internal/dto"
	apierrors "github.com/kaustubh0601/Task-Management/internal/errors"
	"github.com/kaustubh0601/Task-Management/internal/middleware"
	"github.com/kaustubh0601/Task-Management/internal/services"
	"github.com/kaustubh0601/Task-Management/internal/utils"
)

// UserHandler coordinates the admin user management endpoints, plus the
// assignable-users listing available to every authenticated actor.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns a page of user accounts.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	input := services.ListUsersInput{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if raw := c.Query("is_active"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid is_active")
			return
		}
		input.IsActive = &isActive
	}

	users, pagination, err := h.userService.List(input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, dto.ToPaginationDTO(pagination)))
}

// CreateUser provisions an account with an explicit role.
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
		IsActive  *bool  `json:"is_active"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(services.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// GetUser returns an account together with its task statistics.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	user, stats, err := h.userService.Get(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       dto.ToUserDTO(*user),
		"task_stats": stats,
	})
}

// UpdateUser applies a partial update to an account.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		Password  *string `json:"password"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Role      *string `json:"role"`
		IsActive  *bool   `json:"is_active"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(actor, userID, services.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes an account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(actor, userID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// ListAssignableUsers returns the active users a task may be assigned to.
func (h *UserHandler) ListAssignableUsers(c *gin.Context) {
	users, err := h.userService.ListAssignable()
	if err != nil {
		respondUserError(c, err)
		return
	}

	dtos := make([]dto.AssignableUserDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, dto.ToAssignableUserDTO(user))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dtos,
	})
}

func parseUserID(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, false
	}
	return userID, true
}

func respondUserError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Fields)
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUserHasTasks):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrSelfDeactivation),
		errors.Is(err, services.ErrSelfDeletion):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		log.Printf("user handler: %v", err)
		apierrors.InternalError(c, "")
	}
}

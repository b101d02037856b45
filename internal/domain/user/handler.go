package user

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/kidpech/user_service/pkg/response"
)

// ErrorReporter receives unexpected errors before a 500 is written.
type ErrorReporter func(err error)

// Handler wires HTTP routes to the Service.
type Handler struct {
	service   *Service
	sanitizer *bluemonday.Policy
	report    ErrorReporter
}

// NewHandler returns a Handler. report may be nil.
func NewHandler(service *Service, report ErrorReporter) *Handler {
	return &Handler{
		service:   service,
		sanitizer: bluemonday.StrictPolicy(),
		report:    report,
	}
}

// RegisterRoutes mounts user routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", h.create)
		users.GET("", h.list)
		users.GET("/search", h.search)
		users.GET("/:id", h.getByID)
		users.PUT("/:id", h.update)
		users.DELETE("/:id", h.delete)
		users.GET("/username/:username", h.getByUsername)
		users.GET("/username/:username/exists", h.usernameExists)
		users.GET("/email/:email", h.getByEmail)
		users.GET("/email/:email/exists", h.emailExists)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.ValidationError(c, err)
		return
	}
	password := req.Password
	usr, err := h.service.CreateUser(c.Request.Context(), &User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    &password,
		FirstName:   h.clean(req.FirstName),
		LastName:    h.clean(req.LastName),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Location", "/api/v1/users/"+usr.ID.String())
	c.JSON(http.StatusCreated, usr)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.ValidationError(c, err)
		return
	}
	usr, err := h.service.UpdateUser(c.Request.Context(), id, &User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   h.clean(req.FirstName),
		LastName:    h.clean(req.LastName),
		PhoneNumber: req.PhoneNumber,
		Active:      req.Active,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

func (h *Handler) getByUsername(c *gin.Context) {
	usr, err := h.service.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

func (h *Handler) getByEmail(c *gin.Context) {
	usr, err := h.service.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

func (h *Handler) list(c *gin.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.List(c, users, len(users))
}

func (h *Handler) search(c *gin.Context) {
	filter := SearchFilter{
		Username:    c.Query("username"),
		Email:       c.Query("email"),
		FirstName:   c.Query("first_name"),
		LastName:    c.Query("last_name"),
		PhoneNumber: c.Query("phone_number"),
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "active must be true or false")
			return
		}
		filter.Active = &active
	}
	users, err := h.service.SearchUsers(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.List(c, users, len(users))
}

func (h *Handler) usernameExists(c *gin.Context) {
	exists, err := h.service.ExistsByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *Handler) emailExists(c *gin.Context) {
	exists, err := h.service.ExistsByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(c, "user")
	case errors.Is(err, ErrUsernameTaken):
		response.Conflict(c, "duplicate_username", "username already in use")
	case errors.Is(err, ErrEmailTaken):
		response.Conflict(c, "duplicate_email", "email already in use")
	case errors.Is(err, ErrConflict):
		response.Conflict(c, "conflict", "username or email already in use")
	default:
		if h.report != nil {
			h.report(err)
		}
		response.InternalServerError(c, err)
	}
}

// requestBody is a create or update payload that trims itself before
// validation.
type requestBody interface {
	normalize()
}

// bindJSON decodes the body, normalizes it and only then runs the binding
// tags, so length limits apply to the values that get stored.
func bindJSON(c *gin.Context, req requestBody) error {
	if c.Request.Body == nil {
		return errors.New("missing request body")
	}
	if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil {
		return err
	}
	req.normalize()
	return binding.Validator.ValidateStruct(req)
}

// clean strips markup from free-text names. Values without a '<' cannot carry
// markup and are kept verbatim, entities included. Values with one go through
// the policy and are unescaped afterwards, so "&amp;" in such a value reads
// back as "&" and text that looks like an unclosed tag may be dropped.
func (h *Handler) clean(v string) string {
	if !strings.Contains(v, "<") {
		return v
	}
	return strings.TrimSpace(html.UnescapeString(h.sanitizer.Sanitize(v)))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "user")
		return uuid.Nil, false
	}
	return id, true
}

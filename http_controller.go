package auth

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-userauth/middleware/authware"
)

// Controller exposes the JSON authentication and user management surface
type Controller struct {
	Logger Logger
	Users  Users
	Hasher PasswordAuthenticator
	Auther *RouteAuthenticator
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewController(users Users, auther *RouteAuthenticator, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
		Users:  users,
		Hasher: BcryptHasher{},
		Auther: auther,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Users == nil {
		panic("Missing Users repository in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the public auth endpoints and the guarded user
// endpoints. The pipeline runs on every route; the guards only on routes
// that require a bound identity.
func RegisterRoutes(app *fiber.App, controller *Controller, pipeline fiber.Handler) {
	app.Use(pipeline)

	app.Post("/auth/login", controller.Login)
	app.Post("/auth/logout", controller.Logout)

	authed := authware.RequireAuthenticated(authware.GuardConfig{
		ContextKey: LocalsIdentityKey,
	})

	app.Get("/auth/me", authed, controller.Me)
	app.Get("/users", authed, controller.ListUsers)
	app.Get("/users/:id", authed, controller.GetUser)
	app.Post("/users", authware.RequireRole(RoleAdmin, authware.GuardConfig{
		ContextKey: LocalsIdentityKey,
	}), controller.CreateUser)
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "Unable to parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryValidation, "Invalid login payload"))
	}

	if err := a.Auther.Login(c, payload); err != nil {
		// credential failures all collapse to the same message so callers
		// cannot probe which accounts exist, anything else keeps its
		// category so store outages report as server errors
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryAuth {
			return WriteError(c, ErrMismatchedHashAndPassword)
		}
		return WriteError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (a *Controller) Logout(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.JSON(fiber.Map{"success": true})
}

// UserResponse is the wire shape for user records. Password material never
// appears here.
type UserResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func userResponse(user *User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	}
}

func identityResponse(identity Identity) UserResponse {
	return UserResponse{
		ID:       identity.ID(),
		Username: identity.Username(),
		Email:    identity.Email(),
		Roles:    identity.Roles(),
	}
}

// Me returns the identity bound to the current request
func (a *Controller) Me(c *fiber.Ctx) error {
	identity, ok := IdentityFromLocals(c)
	if !ok {
		return WriteError(c, ErrUnauthenticated)
	}
	return c.JSON(identityResponse(identity))
}

func (a *Controller) ListUsers(c *fiber.Ctx) error {
	users, err := a.Users.List(c.UserContext())
	if err != nil {
		a.Logger.Error("list users: %v", err)
		return WriteError(c, err)
	}

	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, userResponse(user))
	}
	return c.JSON(out)
}

func (a *Controller) GetUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return WriteError(c, errors.New("Invalid user id", errors.CategoryBadInput))
	}

	user, err := a.Users.GetByID(c.UserContext(), id)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(userResponse(user))
}

// CreateUserRequest payload
type CreateUserRequest struct {
	Username string   `form:"username" json:"username"`
	Email    string   `form:"email" json:"email"`
	Password string   `form:"password" json:"password"`
	Roles    []string `form:"roles" json:"roles"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *Controller) CreateUser(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("create user parse payload: %v", err)
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "Unable to parse user payload"))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryValidation, "Invalid user payload"))
	}

	hash, err := a.Hasher.HashPassword(payload.Password)
	if err != nil {
		a.Logger.Error("create user hash password: %v", err)
		return WriteError(c, err)
	}

	roles := payload.Roles
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	user := &User{
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: hash,
	}

	created, err := a.Users.Create(c.UserContext(), user, roles...)
	if err != nil {
		a.Logger.Error("create user: %v", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(userResponse(created))
}

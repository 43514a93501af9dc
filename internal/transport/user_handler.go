package transport

import (
	"net/http"
	"strings"

	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,notblank"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Phone     string `json:"phone" validate:"required,notblank"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Postcode  string `json:"postcode"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func (req RegisterRequest) input() service.UserInput {
	return service.UserInput{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Password:  req.Password,
		Phone:     strings.TrimSpace(req.Phone),
		Street:    req.Street,
		Apartment: req.Apartment,
		Postcode:  req.Postcode,
		City:      req.City,
		Country:   req.Country,
	}
}

// CreateUserRequest is the admin payload, which may grant admin rights
type CreateUserRequest struct {
	RegisterRequest
	IsAdmin bool `json:"isAdmin"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the caller's email and bearer token
type LoginResponse struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes. rateLimit guards the
// credential endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.With(rateLimit).Post("/register", h.Register)
		r.With(rateLimit).Post("/login", h.Login)

		r.With(middleware.RequireSelfOrAdmin("id", h.logger)).Get("/{id}", h.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Get("/", h.ListUsers)
			r.Get("/get/count", h.CountUsers)
			r.Post("/", h.CreateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})
}

// Register handles self registration. The new account is never an admin.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.input())
	if err != nil {
		respondWithError(w, h.logger, "Registration failed", err)
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, user)
}

// CreateUser handles account creation by an administrator
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("User validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	input := req.input()
	input.IsAdmin = req.IsAdmin

	user, err := h.userService.CreateUser(r.Context(), input)
	if err != nil {
		respondWithError(w, h.logger, "User creation failed", err)
		return
	}

	h.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_admin", user.IsAdmin),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	token, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, h.logger, "Login failed", err)
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{User: user.Email, Token: token})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		respondWithError(w, h.logger, "Failed to get user", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		respondWithError(w, h.logger, "Failed to list users", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) CountUsers(w http.ResponseWriter, r *http.Request) {
	count, err := h.userService.CountUsers(r.Context())
	if err != nil {
		respondWithError(w, h.logger, "Failed to count users", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		respondWithError(w, h.logger, "Failed to delete user", err)
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "the user is deleted"})
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"darkroom/internal/domain/models"
	"darkroom/internal/lib/logger/sl"
	"darkroom/internal/repository"
	"darkroom/internal/services/post_service"
	"darkroom/internal/services/settings_service"
	"darkroom/internal/services/user_service"
	"darkroom/internal/transport/http/dto"
	"darkroom/internal/transport/http/dto/response"
	"darkroom/internal/youtube"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "darkroom/docs"
)

type PostService interface {
	CreatePost(ctx context.Context, req dto.CreatePostRequest, actor models.Role) (*models.Post, error)
	UpdatePost(ctx context.Context, postID int64, req dto.UpdatePostRequest) (*models.Post, error)
	ApprovePost(ctx context.Context, postID int64, actor models.Role) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, countView bool) (*models.Post, error)
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context, filter repository.PostListFilter, actor models.Role) ([]models.Post, int, error)
	Delete(ctx context.Context, postID int64) error
	Stats(ctx context.Context) (models.PostStats, error)
	RepairSlugs(ctx context.Context) (*post_service.RepairReport, error)
}

type UserService interface {
	Register(ctx context.Context, req dto.UserRegisterRequest) (models.User, error)
	Login(ctx context.Context, req dto.UserLoginRequest) (*models.TokenPair, error)
	GetByID(ctx context.Context, userID int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, userID int64, req dto.UpdateUserRequest) (models.User, error)
	Delete(ctx context.Context, userID int64) error
	TwoFactorSetup(ctx context.Context, userID int64) (*dto.TwoFactorSetupResponse, error)
	TwoFactorVerify(ctx context.Context, userID int64, code string) error
	TwoFactorDisable(ctx context.Context, userID int64) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type TokenService interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
	Validate(token string) (*models.TokenMeta, error)
}

type SettingsService interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Update(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
}

type MediaService interface {
	UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type VideoService interface {
	LatestVideos(ctx context.Context) ([]youtube.Video, error)
}

type ContactMailer interface {
	SendContactMessage(ctx context.Context, name, email, subject, body string) error
}

type Routers struct {
	log             *slog.Logger
	PostService     PostService
	UserService     UserService
	TokenService    TokenService
	SettingsService SettingsService
	MediaService    MediaService
	CategoryService CategoryService
	VideoService    VideoService
	ContactMailer   ContactMailer
}

func NewRouter(
	log *slog.Logger,
	posts PostService,
	users UserService,
	tokens TokenService,
	settings SettingsService,
	media MediaService,
	categories CategoryService,
	videos VideoService,
	contact ContactMailer,
) *Routers {
	return &Routers{
		log:             log,
		PostService:     posts,
		UserService:     users,
		TokenService:    tokens,
		SettingsService: settings,
		MediaService:    media,
		CategoryService: categories,
		VideoService:    videos,
		ContactMailer:   contact,
	}
}

// Login godoc
// @Summary Log in
// @Description Authenticates by email or username plus password. Accounts with two-factor enabled must also send totp_code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UserLoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req dto.UserLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", slog.String("identifier", req.Identifier))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	pair, err := r.UserService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, user_service.ErrTOTPRequired) {
			return c.JSON(http.StatusUnauthorized, response.ErrTOTPRequired)
		}
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UserRegisterRequest true "Registration data"
// @Success 201 {object} response.Response{data=dto.UserResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/auth/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(slog.String("op", op))

	var req dto.UserRegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	user, err := r.UserService.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, user_service.ErrUserExists) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}
		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewUserResponse(user)))
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.TokenService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		r.log.Warn("refresh failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Logout godoc
// @Summary Revoke the presented refresh token
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	userID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.TokenService.Logout(c.Request().Context(), userID, req.RefreshToken); err != nil {
		r.log.Error("logout failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("logged out"))
}

// Me godoc
// @Summary Current account
// @Tags users
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.UserResponse}
// @Router /api/v1/users/me [get]
func (r *Routers) Me(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	user, err := r.UserService.GetByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewUserResponse(user)))
}

// ListUsers godoc
// @Summary List accounts
// @Tags users
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]dto.UserResponse}
// @Router /api/v1/admin/users [get]
func (r *Routers) ListUsers(c echo.Context) error {
	const op = "http.routers.ListUsers"

	users, err := r.UserService.List(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list users", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(out))
}

// UpdateUser godoc
// @Summary Update an account (role changes included)
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} response.Response{data=dto.UserResponse}
// @Router /api/v1/admin/users/{id} [put]
func (r *Routers) UpdateUser(c echo.Context) error {
	const op = "http.routers.UpdateUser"

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	user, err := r.UserService.Update(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, user_service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		r.log.Error("failed to update user", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewUserResponse(user)))
}

// DeleteUser godoc
// @Summary Delete an account
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/users/{id} [delete]
func (r *Routers) DeleteUser(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.UserService.Delete(c.Request().Context(), userID); err != nil {
		if errors.Is(err, user_service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("user deleted"))
}

// TwoFactorSetup godoc
// @Summary Issue a TOTP secret for the current account
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.TwoFactorSetupResponse}
// @Router /api/v1/auth/2fa/setup [post]
func (r *Routers) TwoFactorSetup(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	setup, err := r.UserService.TwoFactorSetup(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(setup))
}

// TwoFactorVerify godoc
// @Summary Confirm the TOTP secret and enable two-factor
// @Tags auth
// @Security BearerAuth
// @Param request body dto.TwoFactorVerifyRequest true "Six-digit code"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/2fa/verify [post]
func (r *Routers) TwoFactorVerify(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	var req dto.TwoFactorVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.UserService.TwoFactorVerify(c.Request().Context(), userID, req.Code); err != nil {
		if errors.Is(err, user_service.ErrInvalidTOTPCode) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_code", "TOTP code did not match"))
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("two-factor enabled"))
}

// TwoFactorDisable godoc
// @Summary Disable two-factor for the current account
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/auth/2fa [delete]
func (r *Routers) TwoFactorDisable(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.UserService.TwoFactorDisable(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("two-factor disabled"))
}

// ForgotPassword godoc
// @Summary Request a password reset mail
// @Tags auth
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/forgot-password [post]
func (r *Routers) ForgotPassword(c echo.Context) error {
	const op = "http.routers.ForgotPassword"

	var req dto.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.UserService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		r.log.Error("reset request failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	// Identical response for known and unknown emails.
	return c.JSON(http.StatusOK, response.SuccessMessage("if the account exists, a reset mail was sent"))
}

// ResetPassword godoc
// @Summary Set a new password using a reset token
// @Tags auth
// @Param request body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/auth/reset-password [post]
func (r *Routers) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.UserService.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, user_service.ErrResetTokenExpired) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_token", "Reset token invalid or expired"))
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("password updated"))
}

// CreatePost godoc
// @Summary Create a post
// @Description The slug is derived from the title and suffixed until unique. Super admins publish immediately, other roles queue for moderation.
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "Post payload"
// @Success 201 {object} response.Response{data=dto.PostResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/posts [post]
func (r *Routers) CreatePost(c echo.Context) error {
	const op = "http.routers.CreatePost"

	log := r.log.With(slog.String("op", op))

	var req dto.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	post, err := r.PostService.CreatePost(c.Request().Context(), req, actorRole(c))
	if err != nil {
		if errors.Is(err, post_service.ErrSlugConflict) {
			return c.JSON(http.StatusConflict, response.ErrSlugConflict)
		}
		log.Error("failed to create post", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewPostResponse(post)))
}

// GetPost godoc
// @Summary Fetch a post by slug
// @Description Increments the view counter on every successful read.
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Response{data=dto.PostResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/posts/{slug} [get]
func (r *Routers) GetPost(c echo.Context) error {
	post, err := r.PostService.GetBySlug(c.Request().Context(), c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, post_service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	if post.Status != models.StatusPublished && !actorRole(c).Elevated() {
		return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewPostResponse(post)))
}

// GetPostByID godoc
// @Summary Fetch a post by id for editing
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response{data=dto.PostResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/posts/id/{id} [get]
func (r *Routers) GetPostByID(c echo.Context) error {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	post, err := r.PostService.GetByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, post_service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewPostResponse(post)))
}

// ListPosts godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Param status query string false "Filter by status (elevated roles only)"
// @Param category query string false "Filter by category slug"
// @Param type query string false "Filter by post type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.ListResponse{data=[]dto.PostResponse}
// @Router /api/v1/posts [get]
func (r *Routers) ListPosts(c echo.Context) error {
	const op = "http.routers.ListPosts"

	filter := repository.PostListFilter{
		Status:       models.PostStatus(c.QueryParam("status")),
		CategorySlug: c.QueryParam("category"),
		PostType:     models.PostType(c.QueryParam("type")),
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		filter.Offset = offset
	}

	posts, total, err := r.PostService.List(c.Request().Context(), filter, actorRole(c))
	if err != nil {
		r.log.Error("failed to list posts", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.ListSuccessResponse(dto.NewPostListResponse(posts), total))
}

// UpdatePost godoc
// @Summary Update a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.UpdatePostRequest true "Fields to update"
// @Success 200 {object} response.Response{data=dto.PostResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/posts/{id} [put]
func (r *Routers) UpdatePost(c echo.Context) error {
	const op = "http.routers.UpdatePost"

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	var req dto.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	post, err := r.PostService.UpdatePost(c.Request().Context(), postID, req)
	if err != nil {
		switch {
		case errors.Is(err, post_service.ErrPostNotFound):
			return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
		case errors.Is(err, post_service.ErrSlugConflict):
			return c.JSON(http.StatusConflict, response.ErrSlugConflict)
		}
		r.log.Error("failed to update post", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewPostResponse(post)))
}

// ApprovePost godoc
// @Summary Approve a pending post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response{data=dto.PostResponse}
// @Failure 403 {object} response.ErrorResponse
// @Router /api/v1/posts/{id}/approve [post]
func (r *Routers) ApprovePost(c echo.Context) error {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	post, err := r.PostService.ApprovePost(c.Request().Context(), postID, actorRole(c))
	if err != nil {
		switch {
		case errors.Is(err, post_service.ErrForbidden):
			return c.JSON(http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, post_service.ErrPostNotFound):
			return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewPostResponse(post)))
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (r *Routers) DeletePost(c echo.Context) error {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.PostService.Delete(c.Request().Context(), postID); err != nil {
		if errors.Is(err, post_service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPostNotFound)
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("post deleted"))
}

// PostStats godoc
// @Summary Post counts by status
// @Tags posts
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.PostStatsResponse}
// @Router /api/v1/admin/stats [get]
func (r *Routers) PostStats(c echo.Context) error {
	stats, err := r.PostService.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.PostStatsResponse{
		Total:     stats.Total,
		Published: stats.Published,
		Pending:   stats.Pending,
		Draft:     stats.Draft,
	}))
}

// RepairSlugs godoc
// @Summary Recompute slugs for every post
// @Description Walks all posts, derives the canonical slug from each title and rewrites the ones that drifted.
// @Tags posts
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.RepairSlugsResponse}
// @Router /api/v1/admin/repair-slugs [post]
func (r *Routers) RepairSlugs(c echo.Context) error {
	const op = "http.routers.RepairSlugs"

	report, err := r.PostService.RepairSlugs(c.Request().Context())
	if err != nil {
		r.log.Error("slug repair failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.RepairSlugsResponse{
		Total:   report.Total,
		Updated: report.Updated,
	}))
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Success 200 {object} response.Response{data=[]dto.CategoryResponse}
// @Router /api/v1/categories [get]
func (r *Routers) ListCategories(c echo.Context) error {
	categories, err := r.CategoryService.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, dto.NewCategoryResponse(&categories[i]))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(out))
}

// GetSetting godoc
// @Summary Fetch a site setting by key
// @Tags settings
// @Param key path string true "Setting key"
// @Success 200 {object} response.Response{data=dto.SettingResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/settings/{key} [get]
func (r *Routers) GetSetting(c echo.Context) error {
	setting, err := r.SettingsService.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, settings_service.ErrSettingNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewSettingResponse(setting)))
}

// UpdateSetting godoc
// @Summary Update a site setting
// @Tags settings
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param request body dto.UpdateSettingRequest true "New value"
// @Success 200 {object} response.Response{data=dto.SettingResponse}
// @Router /api/v1/admin/settings/{key} [put]
func (r *Routers) UpdateSetting(c echo.Context) error {
	const op = "http.routers.UpdateSetting"

	var req dto.UpdateSettingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	setting, err := r.SettingsService.Update(c.Request().Context(), c.Param("key"), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, settings_service.ErrUnknownKey):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("unknown_key", "No such setting"))
		case errors.Is(err, settings_service.ErrInvalidValue):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_value", "Value must be valid JSON"))
		}
		r.log.Error("failed to update setting", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewSettingResponse(setting)))
}

// UploadMedia godoc
// @Summary Upload a file
// @Tags media
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} response.Response{data=dto.MediaResponse}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/media [post]
func (r *Routers) UploadMedia(c echo.Context) error {
	const op = "http.routers.UploadMedia"

	userID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "file field is required"))
	}

	media, err := r.MediaService.UploadMedia(c.Request().Context(), dto.MediaUploadInput{
		File:       file,
		UploaderID: userID,
		MediaType:  c.FormValue("media_type"),
	})
	if err != nil {
		r.log.Warn("upload rejected", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("upload_failed", err.Error()))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewMediaResponse(media)))
}

// LatestVideos godoc
// @Summary Latest uploads from the site's video channel
// @Tags videos
// @Success 200 {object} response.Response{data=[]youtube.Video}
// @Router /api/v1/videos/latest [get]
func (r *Routers) LatestVideos(c echo.Context) error {
	videos, err := r.VideoService.LatestVideos(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, response.ErrorResponseWithDetails("feed_unavailable", "Video feed temporarily unavailable"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(videos))
}

// Contact godoc
// @Summary Deliver a contact form message
// @Tags contact
// @Param request body dto.ContactRequest true "Message"
// @Success 200 {object} response.Response
// @Router /api/v1/contact [post]
func (r *Routers) Contact(c echo.Context) error {
	const op = "http.routers.Contact"

	var req dto.ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	err := r.ContactMailer.SendContactMessage(c.Request().Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		r.log.Error("failed to deliver contact message", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("message sent"))
}

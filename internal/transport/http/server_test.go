package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"darkroom/internal/domain/models"
	"darkroom/internal/repository"
	"darkroom/internal/services/post_service"
	"darkroom/internal/services/user_service"
	httpapp "darkroom/internal/transport/http"
	"darkroom/internal/transport/http/dto"
	"darkroom/internal/youtube"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type customValidator struct {
	validator *validator.Validate
}

func (cv *customValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(ctx context.Context, req dto.CreatePostRequest, actor models.Role) (*models.Post, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) UpdatePost(ctx context.Context, postID int64, req dto.UpdatePostRequest) (*models.Post, error) {
	args := m.Called(ctx, postID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) ApprovePost(ctx context.Context, postID int64, actor models.Role) (*models.Post, error) {
	args := m.Called(ctx, postID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) GetBySlug(ctx context.Context, slug string, countView bool) (*models.Post, error) {
	args := m.Called(ctx, slug, countView)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, filter repository.PostListFilter, actor models.Role) ([]models.Post, int, error) {
	args := m.Called(ctx, filter, actor)
	return args.Get(0).([]models.Post), args.Int(1), args.Error(2)
}

func (m *MockPostService) Delete(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockPostService) Stats(ctx context.Context) (models.PostStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.PostStats), args.Error(1)
}

func (m *MockPostService) RepairSlugs(ctx context.Context) (*post_service.RepairReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*post_service.RepairReport), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req dto.UserRegisterRequest) (models.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req dto.UserLoginRequest) (*models.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, userID int64, req dto.UpdateUserRequest) (models.User, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) TwoFactorSetup(ctx context.Context, userID int64) (*dto.TwoFactorSetupResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TwoFactorSetupResponse), args.Error(1)
}

func (m *MockUserService) TwoFactorVerify(ctx context.Context, userID int64, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockUserService) TwoFactorDisable(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

// Stubs for services the individual test does not exercise.

type stubTokenService struct{}

func (stubTokenService) RefreshTokens(context.Context, string) (*models.TokenPair, error) {
	return nil, nil
}
func (stubTokenService) Logout(context.Context, int64, string) error { return nil }
func (stubTokenService) Validate(string) (*models.TokenMeta, error)  { return nil, nil }

type stubSettingsService struct{}

func (stubSettingsService) Get(context.Context, string) (*models.Setting, error) { return nil, nil }
func (stubSettingsService) Update(context.Context, string, json.RawMessage) (*models.Setting, error) {
	return nil, nil
}

type stubMediaService struct{}

func (stubMediaService) UploadMedia(context.Context, dto.MediaUploadInput) (*models.Media, error) {
	return nil, nil
}
func (stubMediaService) GetByID(context.Context, uuid.UUID) (*models.Media, error) {
	return nil, nil
}

type stubCategoryService struct{}

func (stubCategoryService) List(context.Context) ([]models.Category, error) { return nil, nil }
func (stubCategoryService) GetBySlug(context.Context, string) (*models.Category, error) {
	return nil, nil
}

type stubVideoService struct{}

func (stubVideoService) LatestVideos(context.Context) ([]youtube.Video, error) { return nil, nil }

type stubContactMailer struct{ sent int }

func (s *stubContactMailer) SendContactMessage(context.Context, string, string, string, string) error {
	s.sent++
	return nil
}

type testEnv struct {
	e       *echo.Echo
	posts   *MockPostService
	users   *MockUserService
	contact *stubContactMailer
	routers *httpapp.Routers
}

func newTestEnv() *testEnv {
	e := echo.New()
	e.Validator = &customValidator{validator: validator.New()}

	posts := new(MockPostService)
	users := new(MockUserService)
	contact := &stubContactMailer{}

	routers := httpapp.NewRouter(
		slog.Default(),
		posts,
		users,
		stubTokenService{},
		stubSettingsService{},
		stubMediaService{},
		stubCategoryService{},
		stubVideoService{},
		contact,
	)

	return &testEnv{e: e, posts: posts, users: users, contact: contact, routers: routers}
}

func (env *testEnv) request(method, target, body string) (*httptest.ResponseRecorder, echo.Context) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	return rec, c
}

func TestRouters_GetPost(t *testing.T) {
	t.Run("published post is returned with view counting", func(t *testing.T) {
		env := newTestEnv()
		post := &models.Post{ID: 1, Title: "Story", Slug: "story", Status: models.StatusPublished}
		env.posts.On("GetBySlug", mock.Anything, "story", true).Return(post, nil).Once()

		rec, c := env.request(http.MethodGet, "/api/v1/posts/story", "")
		c.SetPath("/api/v1/posts/:slug")
		c.SetParamNames("slug")
		c.SetParamValues("story")

		require.NoError(t, env.routers.GetPost(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"slug":"story"`)
		env.posts.AssertExpectations(t)
	})

	t.Run("pending post hidden from anonymous readers", func(t *testing.T) {
		env := newTestEnv()
		post := &models.Post{ID: 1, Slug: "queued", Status: models.StatusPending}
		env.posts.On("GetBySlug", mock.Anything, "queued", true).Return(post, nil).Once()

		rec, c := env.request(http.MethodGet, "/api/v1/posts/queued", "")
		c.SetPath("/api/v1/posts/:slug")
		c.SetParamNames("slug")
		c.SetParamValues("queued")

		require.NoError(t, env.routers.GetPost(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("GetBySlug", mock.Anything, "nope", true).
			Return(nil, post_service.ErrPostNotFound).Once()

		rec, c := env.request(http.MethodGet, "/api/v1/posts/nope", "")
		c.SetPath("/api/v1/posts/:slug")
		c.SetParamNames("slug")
		c.SetParamValues("nope")

		require.NoError(t, env.routers.GetPost(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouters_CreatePost(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		env := newTestEnv()
		created := &models.Post{ID: 1, Title: "Breaking", Slug: "breaking", Status: models.StatusPending}
		env.posts.On("CreatePost", mock.Anything, mock.AnythingOfType("dto.CreatePostRequest"), models.RoleUser).
			Return(created, nil).Once()

		body := `{"title":"Breaking","content":"<p>x</p>","category_id":3}`
		rec, c := env.request(http.MethodPost, "/api/v1/posts", body)

		require.NoError(t, env.routers.CreatePost(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"slug":"breaking"`)
	})

	t.Run("missing title rejected before the service runs", func(t *testing.T) {
		env := newTestEnv()

		body := `{"content":"<p>x</p>","category_id":3}`
		rec, c := env.request(http.MethodPost, "/api/v1/posts", body)

		require.NoError(t, env.routers.CreatePost(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("slug conflict maps to 409", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("CreatePost", mock.Anything, mock.AnythingOfType("dto.CreatePostRequest"), models.RoleUser).
			Return(nil, post_service.ErrSlugConflict).Once()

		body := `{"title":"Breaking","content":"<p>x</p>","category_id":3}`
		rec, c := env.request(http.MethodPost, "/api/v1/posts", body)

		require.NoError(t, env.routers.CreatePost(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRouters_Login(t *testing.T) {
	t.Run("bad credentials map to 401", func(t *testing.T) {
		env := newTestEnv()
		env.users.On("Login", mock.Anything, mock.AnythingOfType("dto.UserLoginRequest")).
			Return(nil, user_service.ErrInvalidCredentials).Once()

		body := `{"identifier":"reporter","password":"wrong"}`
		rec, c := env.request(http.MethodPost, "/api/v1/auth/login", body)

		require.NoError(t, env.routers.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("2fa requirement is signalled distinctly", func(t *testing.T) {
		env := newTestEnv()
		env.users.On("Login", mock.Anything, mock.AnythingOfType("dto.UserLoginRequest")).
			Return(nil, user_service.ErrTOTPRequired).Once()

		body := `{"identifier":"reporter","password":"correct"}`
		rec, c := env.request(http.MethodPost, "/api/v1/auth/login", body)

		require.NoError(t, env.routers.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "totp_required")
	})

	t.Run("success returns the token pair", func(t *testing.T) {
		env := newTestEnv()
		pair := &models.TokenPair{UserID: 1, AccessToken: "a", RefreshToken: "r"}
		env.users.On("Login", mock.Anything, mock.AnythingOfType("dto.UserLoginRequest")).
			Return(pair, nil).Once()

		body := `{"identifier":"reporter","password":"correct"}`
		rec, c := env.request(http.MethodPost, "/api/v1/auth/login", body)

		require.NoError(t, env.routers.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"access_token":"a"`)
	})
}

func TestRouters_ListPosts(t *testing.T) {
	env := newTestEnv()
	posts := []models.Post{
		{ID: 1, Title: "One", Slug: "one", Status: models.StatusPublished},
		{ID: 2, Title: "Two", Slug: "two", Status: models.StatusPublished},
	}
	env.posts.On("List", mock.Anything, mock.MatchedBy(func(f repository.PostListFilter) bool {
		return f.CategorySlug == "news" && f.Limit == 10
	}), models.RoleUser).Return(posts, 25, nil).Once()

	rec, c := env.request(http.MethodGet, "/api/v1/posts?category=news&limit=10", "")

	require.NoError(t, env.routers.ListPosts(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":25`)
}

func TestRouters_Contact(t *testing.T) {
	t.Run("valid message is delivered", func(t *testing.T) {
		env := newTestEnv()

		body := `{"name":"Reader","email":"reader@example.com","subject":"Correction","message":"Paragraph three is wrong."}`
		rec, c := env.request(http.MethodPost, "/api/v1/contact", body)

		require.NoError(t, env.routers.Contact(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.contact.sent)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		env := newTestEnv()

		body := `{"name":"Reader","email":"not-an-email","subject":"Hi","message":"x"}`
		rec, c := env.request(http.MethodPost, "/api/v1/contact", body)

		require.NoError(t, env.routers.Contact(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, env.contact.sent)
	})
}

func TestRouters_RepairSlugs(t *testing.T) {
	env := newTestEnv()
	env.posts.On("RepairSlugs", mock.Anything).
		Return(&post_service.RepairReport{Total: 120, Updated: 7}, nil).Once()

	rec, c := env.request(http.MethodPost, "/api/v1/admin/repair-slugs", "")

	require.NoError(t, env.routers.RepairSlugs(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":7`)
}

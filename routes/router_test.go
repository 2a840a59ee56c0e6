package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"authhub/internal/cache"
	"authhub/internal/controllers"
	"authhub/internal/mail"
	"authhub/internal/middleware"
	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/services"
	"authhub/internal/testutil"
	"authhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type outbox struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) templates() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.messages))
	for _, m := range o.messages {
		out = append(out, m.Template)
	}
	return out
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (cache.Decision, error) {
	args := m.Called(key)
	return args.Get(0).(cache.Decision), args.Error(1)
}

type server struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *services.TokenManager
	hasher *utils.BcryptHasher
	outbox *outbox
}

func newServer(t *testing.T, limiter middleware.Limiter) *server {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()
	dispatcher := services.InlineDispatcher{Log: log}
	hasher := &utils.BcryptHasher{Cost: bcrypt.MinCost}
	box := &outbox{}

	users := repository.NewUserRepository(db)
	tx := repository.NewTransactor(db)
	roles := services.NewRoleService(repository.NewRoleRepository(db), log)
	notifications := services.NewNotificationService(repository.NewNotificationRepository(db), users, tx, dispatcher, log)
	userService := services.NewUserService(users, repository.NewFileRepository(db), roles, notifications, tx,
		hasher, box, dispatcher, services.NewImageStore(1<<20, 64, log),
		services.UserServiceConfig{UploadDir: t.TempDir(), ClientHost: "http://localhost:3000"}, log)
	tokens := services.NewTokenManager("test-secret", time.Hour)

	router := NewRouter(Dependencies{
		Users:         controllers.NewUserController(userService, log),
		Auth:          controllers.NewAuthController(services.NewAuthService(users, hasher, tokens, log), userService, log),
		Notifications: controllers.NewNotificationController(notifications, log),
		Tokens:        tokens,
		Limiter:       limiter,
		DB:            db,
		Log:           log,
		Version:       "test",
	})
	return &server{router: router, db: db, tokens: tokens, hasher: hasher, outbox: box}
}

func (s *server) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, _, err := s.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func (s *server) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, controllers.ApiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *server) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, controllers.ApiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var res controllers.ApiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	}
	return w, res
}

func decode[T any](t *testing.T, res controllers.ApiResponse) T {
	t.Helper()
	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func signUpBody() gin.H {
	return gin.H{
		"first_name":   "Jane",
		"last_name":    "Doe",
		"email":        "a@x.com",
		"phone_number": "0780000000",
		"national_id":  "1199880012345678",
		"gender":       "FEMALE",
		"password":     "Abcd1234!",
		"role":         "STANDARD",
	}
}

func TestHealthRoutes(t *testing.T) {
	s := newServer(t, nil)

	w, _ := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w, _ = s.do(t, http.MethodGet, "/debug/database", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database_health":true`)

	w, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegistrationLifecycle(t *testing.T) {
	s := newServer(t, nil)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, models.StatusActive)
	adminToken := s.tokenFor(t, admin)

	w, res := s.do(t, http.MethodPost, "/users/register", "", signUpBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[models.User](t, res)
	assert.Equal(t, models.StatusWaitEmailVerification, registered.Status)
	assert.NotContains(t, w.Body.String(), "Abcd1234!")

	var stored models.User
	require.NoError(t, s.db.First(&stored, "id = ?", registered.ID).Error)
	require.NotEmpty(t, stored.ActivationCode)

	w, _ = s.do(t, http.MethodPost, "/users/verify-email", "", gin.H{"email": "a@x.com", "code": "000000x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, res = s.do(t, http.MethodPost, "/users/verify-email", "", gin.H{"email": "a@x.com", "code": stored.ActivationCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusPending, decode[models.User](t, res).Status)

	w, res = s.do(t, http.MethodGet, "/notifications/unread-count", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, res.Data)

	// Pending accounts cannot log in yet.
	w, _ = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "Abcd1234!"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, res = s.do(t, http.MethodPut, "/users/"+registered.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusActive, decode[models.User](t, res).Status)

	w, res = s.do(t, http.MethodPut, "/users/"+registered.ID.String()+"/reject", adminToken, gin.H{"rejection_message": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User was approved recently", res.Message)

	w, res = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "Abcd1234!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[models.LoginResponse](t, res)
	assert.NotEmpty(t, login.Token)

	w, res = s.do(t, http.MethodGet, "/users/current-user", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, registered.ID, decode[models.User](t, res).ID)

	assert.Equal(t, []string{mail.TemplateVerifyEmail, mail.TemplateVerifiedEmail, mail.TemplateWelcomeEmail}, s.outbox.templates())
}

func TestRegisterValidation(t *testing.T) {
	s := newServer(t, nil)

	body := signUpBody()
	body["phone_number"] = "12ab"
	body["password"] = "weak"
	delete(body, "email")

	w, res := s.do(t, http.MethodPost, "/users/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors, "phone_number")
	assert.Contains(t, res.Errors, "password")
	assert.Equal(t, "is required", res.Errors["email"])
}

func TestRegisterDuplicate(t *testing.T) {
	s := newServer(t, nil)
	testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive, func(u *models.User) {
		u.Email = "a@x.com"
	})

	w, res := s.do(t, http.MethodPost, "/users/register", "", signUpBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, res.Success)
}

func TestProtectedRoutes(t *testing.T) {
	s := newServer(t, nil)
	standard := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive)
	token := s.tokenFor(t, standard)

	w, _ := s.do(t, http.MethodGet, "/users/current-user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/users", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/users/"+standard.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/notifications", token, gin.H{
		"user_id": standard.ID, "message": "hi", "type": "GENERAL",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, res := s.do(t, http.MethodGet, "/users/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id, expected a UUID", res.Message)

	w, _ = s.do(t, http.MethodGet, "/users/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndSearch(t *testing.T) {
	s := newServer(t, nil)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, models.StatusActive)
	token := s.tokenFor(t, admin)
	for i := 0; i < 3; i++ {
		testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusPending, func(u *models.User) {
			u.FirstName = "Pending"
		})
	}

	w, res := s.do(t, http.MethodGet, "/users/all?page=1&size=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[repository.Page[models.User]](t, res)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 4, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	w, res = s.do(t, http.MethodGet, "/users/search?status=PENDING&name=pend&role=STANDARD", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, decode[repository.Page[models.User]](t, res).TotalItems)

	w, res = s.do(t, http.MethodGet, "/users/search?name=pend", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Errors, "status")
}

func TestBatchApprove(t *testing.T) {
	s := newServer(t, nil)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, models.StatusActive)
	token := s.tokenFor(t, admin)
	a := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusPending)
	b := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusRejected)

	w, _ := s.do(t, http.MethodPut, "/users/approve-many", token, gin.H{"user_ids": []uuid.UUID{a.ID, b.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded models.User
	require.NoError(t, s.db.First(&reloaded, "id = ?", a.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)

	w, res := s.do(t, http.MethodPut, "/users/approve-many", token, gin.H{"user_ids": []uuid.UUID{a.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1 users approved", res.Message)
}

func TestBatchApproveWithRepeatedID(t *testing.T) {
	s := newServer(t, nil)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, models.StatusActive)
	a := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusPending)

	w, res := s.do(t, http.MethodPut, "/users/approve-many", s.tokenFor(t, admin), gin.H{"user_ids": []uuid.UUID{a.ID, a.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1 users approved", res.Message)
	assert.Equal(t, []string{mail.TemplateWelcomeEmail}, s.outbox.templates())
}

func TestSendEmail(t *testing.T) {
	s := newServer(t, nil)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, models.StatusActive)
	standard := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive)
	body := gin.H{"subject": "Maintenance", "content": "Down on Sunday", "user_types": []string{"STANDARD"}}

	w, _ := s.do(t, http.MethodPost, "/users/send-email", s.tokenFor(t, standard), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/users/send-email", s.tokenFor(t, admin), gin.H{"subject": "Maintenance", "user_types": []string{"GUEST"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.outbox.templates())

	w, res := s.do(t, http.MethodPost, "/users/send-email", s.tokenFor(t, admin), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Email sent to 1 users", res.Message)
	assert.Equal(t, []string{mail.TemplateCustomEmail}, s.outbox.templates())
}

func TestDeleteUser(t *testing.T) {
	s := newServer(t, nil)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, models.StatusActive)
	token := s.tokenFor(t, admin)
	target := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive)

	w, res := s.do(t, http.MethodPost, "/notifications", token, gin.H{
		"user_id": target.ID, "message": "hello", "type": "GENERAL",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.NotificationUnread, decode[models.Notification](t, res).Status)

	w, _ = s.do(t, http.MethodDelete, "/users/"+target.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, s.db.Model(&models.Notification{}).Where("user_id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count)

	w, _ = s.do(t, http.MethodDelete, "/users/"+target.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationStatus(t *testing.T) {
	s := newServer(t, nil)
	owner := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive)
	other := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive)
	n := &models.Notification{UserID: owner.ID, Message: "m", Type: models.NotificationGeneral}
	require.NoError(t, s.db.Omit("User").Create(n).Error)

	w, _ := s.do(t, http.MethodPut, "/notifications/"+n.ID.String()+"/read", s.tokenFor(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, res := s.do(t, http.MethodPut, "/notifications/"+n.ID.String()+"/read", s.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, res.Data)

	w, res = s.do(t, http.MethodGet, "/notifications/today", s.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[repository.Page[models.Notification]](t, res)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.NotificationRead, page.Items[0].Status)
}

func TestProfileUploadAndLoad(t *testing.T) {
	s := newServer(t, nil)
	user := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive)
	token := s.tokenFor(t, user)

	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/users/"+user.ID.String()+"/upload-profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w, res := s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.User](t, res)
	require.NotNil(t, updated.ProfileImage)

	w, _ = s.do(t, http.MethodGet, "/users/load-file/"+updated.ProfileImage.Name, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	w, _ = s.do(t, http.MethodGet, "/users/load-file/missing.jpg", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// No file part at all.
	w, _ = s.do(t, http.MethodPut, "/users/"+user.ID.String()+"/upload-profile", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordRoutes(t *testing.T) {
	s := newServer(t, nil)
	user := testutil.CreateUser(t, s.db, models.RoleStandard, models.StatusActive, func(u *models.User) {
		u.Email = "b@x.com"
		u.Password, _ = s.hasher.Hash("Abcd1234!")
	})

	w, res := s.do(t, http.MethodPut, "/users/change-password", s.tokenFor(t, user), gin.H{
		"current_password": "wrong", "new_password": "Efgh5678?",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid current password", res.Message)

	w, _ = s.do(t, http.MethodPost, "/auth/forgot-password", "", gin.H{"email": "b@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, s.db.First(&stored, "id = ?", user.ID).Error)
	w, _ = s.do(t, http.MethodPost, "/auth/reset-password", "", gin.H{
		"email": "b@x.com", "code": stored.ActivationCode, "new_password": "Efgh5678?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "b@x.com", "password": "Efgh5678?"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitedLogin(t *testing.T) {
	limiter := new(MockLimiter)
	limiter.On("Allow", mock.Anything).Return(cache.Decision{Allowed: false, Limit: 1, RetryAfter: time.Minute}, nil)
	s := newServer(t, limiter)

	w, _ := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	limiter.AssertCalled(t, "Allow", mock.MatchedBy(func(key string) bool {
		return len(key) > len("login:ip:") && key[:len("login:ip:")] == "login:ip:"
	}))
}

package services

import (
	"context"
	"testing"
	"time"

	"authhub/internal/mail"
	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/session"
	"authhub/internal/testutil"
	"authhub/internal/utils"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// sent returns the messages passed to Send for the given template.
func (m *MockMailer) sent(template string) []mail.Message {
	var out []mail.Message
	for _, call := range m.Calls {
		if msg, ok := call.Arguments.Get(1).(mail.Message); ok && msg.Template == template {
			out = append(out, msg)
		}
	}
	return out
}

type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	notifications repository.NotificationRepository
	userService   *UserService
	notifService  *NotificationService
	authService   *AuthService
	tokens        *TokenManager
	mailer        *MockMailer
	hasher        *utils.BcryptHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()

	users := repository.NewUserRepository(db)
	notifications := repository.NewNotificationRepository(db)
	files := repository.NewFileRepository(db)
	tx := repository.NewTransactor(db)
	hasher := &utils.BcryptHasher{Cost: bcrypt.MinCost}
	dispatcher := InlineDispatcher{Log: log}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	roles := NewRoleService(repository.NewRoleRepository(db), log)
	notifService := NewNotificationService(notifications, users, tx, dispatcher, log)
	store := NewImageStore(1<<20, 64, log)
	userService := NewUserService(users, files, roles, notifService, tx, hasher, mailer, dispatcher, store,
		UserServiceConfig{
			UploadDir:        t.TempDir(),
			ClientHost:       "http://localhost:3000",
			FrontendLoginURL: "http://localhost:3000/login",
		}, log)
	tokens := NewTokenManager("test-secret", time.Hour)

	return &testEnv{
		db:            db,
		users:         users,
		notifications: notifications,
		userService:   userService,
		notifService:  notifService,
		authService:   NewAuthService(users, hasher, tokens, log),
		tokens:        tokens,
		mailer:        mailer,
		hasher:        hasher,
	}
}

func (e *testEnv) createUser(t *testing.T, role models.RoleName, status models.UserStatus, mutate ...func(*models.User)) *models.User {
	t.Helper()
	u := testutil.CreateUser(t, e.db, role, status, mutate...)
	reloaded, err := e.users.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return reloaded
}

func withPassword(h *utils.BcryptHasher, plain string) func(*models.User) {
	return func(u *models.User) {
		digest, err := h.Hash(plain)
		if err != nil {
			panic(err)
		}
		u.Password = digest
	}
}

func asUser(u *models.User) context.Context {
	return session.WithPrincipal(context.Background(), session.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role.Name),
	})
}

func signUp(email, phone, nationalID string) models.SignUpRequest {
	return models.SignUpRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       email,
		PhoneNumber: phone,
		NationalID:  nationalID,
		Gender:      models.GenderFemale,
		Password:    "Abcd1234!",
		Role:        models.RoleStandard,
	}
}

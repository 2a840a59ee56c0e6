package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"authhub/internal/apperr"
	"authhub/internal/mail"
	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/session"
	"authhub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const awaitsApprovalMessage = "You have a new User Registration which awaits your approval."

type UserServiceConfig struct {
	UploadDir        string
	ClientHost       string
	FrontendLoginURL string
}

type UserService struct {
	users         repository.UserRepository
	files         repository.FileRepository
	roles         *RoleService
	notifications *NotificationService
	tx            repository.Transactor
	hasher        utils.CredentialHasher
	mailer        mail.Mailer
	dispatcher    Dispatcher
	store         FileStore
	cfg           UserServiceConfig
	log           *zap.Logger

	newCode func() (string, error)
}

func NewUserService(
	users repository.UserRepository,
	files repository.FileRepository,
	roles *RoleService,
	notifications *NotificationService,
	tx repository.Transactor,
	hasher utils.CredentialHasher,
	mailer mail.Mailer,
	dispatcher Dispatcher,
	store FileStore,
	cfg UserServiceConfig,
	log *zap.Logger,
) *UserService {
	return &UserService{
		users:         users,
		files:         files,
		roles:         roles,
		notifications: notifications,
		tx:            tx,
		hasher:        hasher,
		mailer:        mailer,
		dispatcher:    dispatcher,
		store:         store,
		cfg:           cfg,
		log:           log.Named("users"),
		newCode:       utils.GenerateActivationCode,
	}
}

// Register creates an unverified account, or takes over an earlier unverified
// registration with the same national id, and mails the activation code.
func (s *UserService) Register(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	roleName := req.Role
	if roleName == "" {
		roleName = models.RoleStandard
	}
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          strings.TrimSpace(req.Email),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		NationalID:     strings.TrimSpace(req.NationalID),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		Password:       digest,
		ActivationCode: code,
		Status:         models.StatusWaitEmailVerification,
		RoleID:         role.ID,
		Role:           *role,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.ValidateNewRegistration(ctx, user)
		if err != nil {
			return err
		}
		if existing == nil {
			return s.users.Create(ctx, user)
		}
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		user.ProfileImageID = existing.ProfileImageID
		return s.users.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Stringer("user_id", user.ID), zap.String("role", string(roleName)))
	s.sendMail(mail.TemplateVerifyEmail, user, map[string]string{
		"code": code,
		"link": s.clientLink("verify-email", user.Email, code),
	})
	return user, nil
}

// ValidateNewRegistration applies the uniqueness policy to a candidate. It
// returns the unverified record the candidate should replace, if any.
func (s *UserService) ValidateNewRegistration(ctx context.Context, candidate *models.User) (*models.User, error) {
	q := repository.IdentityQuery{
		Email:      candidate.Email,
		Phone:      candidate.PhoneNumber,
		NationalID: candidate.NationalID,
	}

	withoutUnverified := q
	withoutUnverified.ExcludeStatus = models.StatusWaitEmailVerification
	taken, err := s.users.ExistsByIdentity(ctx, withoutUnverified)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("User with email '%s' or phone number '%s' or national id '%s' already exists",
			candidate.Email, candidate.PhoneNumber, candidate.NationalID)
	}

	seen, err := s.users.ExistsByIdentity(ctx, q)
	if err != nil || !seen {
		return nil, err
	}

	existing, err := s.users.FindByNationalID(ctx, candidate.NationalID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Conflict("User with email '%s' or phone number '%s' already exists",
				candidate.Email, candidate.PhoneNumber)
		}
		return nil, err
	}
	return existing, nil
}

func (s *UserService) VerifyEmailWithCode(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.findByCode(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.VerifyEmail(ctx, user)
}

// findByCode resolves the account a mailed code was issued to. An email can
// briefly belong to more than one unverified registration, so the code picks
// the row rather than the email alone.
func (s *UserService) findByCode(ctx context.Context, email, code string) (*models.User, error) {
	if code != "" {
		user, err := s.users.FindByEmailAndActivationCode(ctx, email, code)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	}
	return nil, apperr.BadRequest("Invalid Activation Code ..")
}

// VerifyEmail moves a user out of WAIT_EMAIL_VERIFICATION and tells every
// active admin that a registration awaits approval.
func (s *UserService) VerifyEmail(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Status != models.StatusWaitEmailVerification {
		return nil, apperr.BadRequest("Your account is %s", statusText(user.Status))
	}
	if !user.HasRole(models.RoleStandard) {
		return nil, apperr.BadRequest("You have an invalid role for email verification")
	}

	user.Status = models.StatusPending
	user.ActivationCode = ""
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.sendMail(mail.TemplateVerifiedEmail, user, nil)

	admins, err := s.users.FindAllByRoleAndStatus(ctx, models.RoleAdmin, models.StatusActive)
	if err != nil {
		s.log.Error("failed to load admins to notify", zap.Error(err))
		return user, nil
	}
	s.notifications.NotifyBulk(admins, models.NotificationUserAwaitsConfirmation, awaitsApprovalMessage)
	return user, nil
}

func (s *UserService) Approve(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.approve(ctx, user); err != nil {
		return nil, err
	}
	s.sendWelcome(user)
	return user, nil
}

func (s *UserService) approve(ctx context.Context, user *models.User) error {
	switch user.Status {
	case models.StatusPending:
	case models.StatusActive:
		return apperr.BadRequest("User Already Approved")
	case models.StatusRejected:
		return apperr.BadRequest("User was rejected previously")
	default:
		return apperr.BadRequest("User is %s and can not be approved", statusText(user.Status))
	}

	user.Status = models.StatusActive
	if err := s.users.Save(ctx, user); err != nil {
		user.Status = models.StatusPending
		return err
	}
	return nil
}

// ApproveMany approves every id or none of them. Welcome mails go out after commit.
func (s *UserService) ApproveMany(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	approved, err := s.inBatch(ctx, ids, func(ctx context.Context, u *models.User) error {
		return s.approve(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	for i := range approved {
		s.sendWelcome(&approved[i])
	}
	return approved, nil
}

func (s *UserService) Reject(ctx context.Context, user *models.User, reason string) (*models.User, error) {
	if err := s.reject(ctx, user, reason); err != nil {
		return nil, err
	}
	s.sendRejection(user)
	return user, nil
}

func (s *UserService) reject(ctx context.Context, user *models.User, reason string) error {
	switch user.Status {
	case models.StatusRejected:
		return apperr.BadRequest("User Already Rejected")
	case models.StatusActive:
		return apperr.BadRequest("User was approved recently")
	}

	previous := user.Status
	user.Status = models.StatusRejected
	user.RejectionDescription = reason
	if err := s.users.Save(ctx, user); err != nil {
		user.Status = previous
		user.RejectionDescription = ""
		return err
	}
	return nil
}

// RejectMany rejects every id or none of them. Rejection mails go out after commit.
func (s *UserService) RejectMany(ctx context.Context, ids []uuid.UUID, reason string) ([]models.User, error) {
	rejected, err := s.inBatch(ctx, ids, func(ctx context.Context, u *models.User) error {
		return s.reject(ctx, u, reason)
	})
	if err != nil {
		return nil, err
	}
	for i := range rejected {
		s.sendRejection(&rejected[i])
	}
	return rejected, nil
}

// inBatch resolves all distinct ids first, then applies fn to each user in order
// inside one transaction. The first failure rolls the whole batch back.
func (s *UserService) inBatch(ctx context.Context, ids []uuid.UUID, fn func(context.Context, *models.User) error) ([]models.User, error) {
	var done []models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		users := make([]*models.User, 0, len(ids))
		seen := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			u, err := s.users.FindByID(ctx, id)
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		for _, u := range users {
			if err := fn(ctx, u); err != nil {
				return fmt.Errorf("user %s: %w", u.ID, err)
			}
			done = append(done, *u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return done, nil
}

func (s *UserService) Deactivate(ctx context.Context, user *models.User) (*models.User, error) {
	user.Status = models.StatusDeactivated
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) MarkAsPending(ctx context.Context, user *models.User) (*models.User, error) {
	user.Status = models.StatusPending
	user.RejectionDescription = ""
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeProfileImage stores the upload and points the user at it. The previous
// image record is removed.
func (s *UserService) ChangeProfileImage(ctx context.Context, id uuid.UUID, r io.Reader) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file, err := s.store.Store(ctx, r, s.cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	previous := user.ProfileImage
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.files.Create(ctx, file); err != nil {
			return err
		}
		user.ProfileImageID = &file.ID
		user.ProfileImage = file
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}
		if previous != nil {
			return s.files.Delete(ctx, previous.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) LoadFile(ctx context.Context, name string) (*models.File, *os.File, error) {
	file, err := s.files.FindByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.store.Open(file.Directory, file.Name)
	if err != nil {
		return nil, nil, err
	}
	return file, f, nil
}

func (s *UserService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	user, err := s.GetLoggedInUser(ctx)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(req.CurrentPassword, user.Password) {
		return apperr.BadRequest("Invalid current password")
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = digest
	return s.users.Save(ctx, user)
}

// ForgotPassword issues a fresh activation code and mails it.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := s.newCode()
	if err != nil {
		return err
	}
	user.ActivationCode = code
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	s.sendMail(mail.TemplateResetPassword, user, map[string]string{
		"code": code,
		"link": s.clientLink("reset-password", user.Email, code),
	})
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	user, err := s.findByCode(ctx, req.Email, req.Code)
	if err != nil {
		return err
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = digest
	user.ActivationCode = ""
	return s.users.Save(ctx, user)
}

// Update changes profile fields. Identifying fields must stay unique among
// other users.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByIdentity(ctx, repository.IdentityQuery{
		Email:      req.Email,
		Phone:      req.PhoneNumber,
		NationalID: req.NationalID,
		ExcludeID:  user.ID,
	})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("User with email '%s' or phone number '%s' or national id '%s' already exists",
			req.Email, req.PhoneNumber, req.NationalID)
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.PhoneNumber = req.PhoneNumber
	user.NationalID = req.NationalID
	user.Gender = req.Gender
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) GetLoggedInUser(ctx context.Context) (*models.User, error) {
	principal, err := session.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, principal.UserID)
}

func (s *UserService) List(ctx context.Context, p repository.Pageable) (repository.Page[models.User], error) {
	return s.users.FindAll(ctx, p)
}

func (s *UserService) Search(ctx context.Context, q models.UserSearchQuery, p repository.Pageable) (repository.Page[models.User], error) {
	return s.users.Search(ctx, repository.UserFilter{
		Status: q.Status,
		Name:   strings.TrimSpace(q.Name),
		Gender: q.Gender,
		Role:   q.Role,
	}, p)
}

// Delete removes the user's notifications and then the user, atomically.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, id); err != nil {
			return err
		}
		if err := s.notifications.DeleteByUserID(ctx, id); err != nil {
			return err
		}
		return s.users.Delete(ctx, id)
	})
}

// SendCustomEmail mails subject and content to every active user holding one
// of roles, or every active user when roles is empty. It returns how many
// mails were queued.
func (s *UserService) SendCustomEmail(ctx context.Context, req models.SendUsersEmailRequest) (int, error) {
	roles := req.UserTypes
	if len(roles) == 0 {
		roles = models.AllRoles
	}

	sent := 0
	seen := make(map[models.RoleName]struct{}, len(roles))
	for _, role := range roles {
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}

		users, err := s.users.FindAllByRoleAndStatus(ctx, role, models.StatusActive)
		if err != nil {
			return sent, err
		}
		for i := range users {
			s.sendMail(mail.TemplateCustomEmail, &users[i], map[string]string{
				"subject": req.Subject,
				"data":    req.Content,
			})
			sent++
		}
	}
	s.log.Info("custom email queued", zap.Int("recipients", sent), zap.String("subject", req.Subject))
	return sent, nil
}

func (s *UserService) sendWelcome(user *models.User) {
	s.sendMail(mail.TemplateWelcomeEmail, user, map[string]string{"link": s.cfg.FrontendLoginURL})
}

func (s *UserService) sendRejection(user *models.User) {
	s.sendMail(mail.TemplateAccountRejected, user, map[string]string{"data": user.RejectionDescription})
}

func (s *UserService) sendMail(template string, user *models.User, data map[string]string) {
	if data == nil {
		data = map[string]string{}
	}
	data["firstName"] = user.FirstName
	msg := mail.Message{Template: template, To: user.Email, Data: data}

	s.dispatcher.Dispatch("mail:"+template, func(ctx context.Context) error {
		return s.mailer.Send(ctx, msg)
	})
}

func (s *UserService) clientLink(path, email, code string) string {
	v := url.Values{}
	v.Set("email", email)
	v.Set("code", code)
	return strings.TrimRight(s.cfg.ClientHost, "/") + "/" + path + "?" + v.Encode()
}

func statusText(status models.UserStatus) string {
	return strings.ToLower(string(status))
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"

	"github.com/tripnest/tripnest-backend/internal/accounts"
	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
	"github.com/tripnest/tripnest-backend/pkg/security"
)

// sessionIssuer is the slice of the session manager the auth flows need.
type sessionIssuer interface {
	IssueUserSession(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) (string, error)
	RevokeUserSession(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	UserSession(ctx context.Context, r *http.Request) *models.UserSession
}

// guestLinker runs the claim-my-past-activity sweep after login/registration.
type guestLinker interface {
	LinkGuestMemberships(ctx context.Context, userID uuid.UUID, email string) (int64, error)
}

// Service owns the account plane: registration, login, logout and profile
// maintenance. Both register and login end with the guest-membership link
// sweep so past guest activity follows the account.
type Service struct {
	repo       *accounts.Repository
	memberRepo *members.Repository
	sessions   sessionIssuer
	linker     guestLinker
	pwCfg      config.PasswordConfig
}

// NewService wires the auth service.
func NewService(repo *accounts.Repository, memberRepo *members.Repository, sessions sessionIssuer, linker guestLinker, pwCfg config.PasswordConfig) *Service {
	return &Service{repo: repo, memberRepo: memberRepo, sessions: sessions, linker: linker, pwCfg: pwCfg}
}

// Register creates an account, issues its session and claims matching guest
// memberships across all groups.
func (s *Service) Register(ctx context.Context, w http.ResponseWriter, req RegisterRequest) (*accounts.UserDTO, error) {
	email := normalizeEmail(req.Email)
	hash, err := security.HashPassword(req.Password, s.pwCfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hashing password")
	}

	dto := accounts.CreateUserDTO{Email: email, PasswordHash: hash}
	if username := strings.TrimSpace(req.Username); username != "" {
		dto.Username = &username
	}
	user, err := s.repo.Create(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperrors.New(apperrors.CodeConflict, "email already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating user")
	}

	if _, err := s.sessions.IssueUserSession(ctx, w, user.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "issuing session")
	}
	if _, err := s.linker.LinkGuestMemberships(ctx, user.ID, email); err != nil {
		return nil, err
	}
	return accounts.FromModel(user), nil
}

// Login verifies credentials, issues a fresh session and re-runs the guest
// link sweep; guest rows created since the last login get claimed here.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, req LoginRequest) (*accounts.UserDTO, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up user")
	}
	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	if _, err := s.sessions.IssueUserSession(ctx, w, user.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "issuing session")
	}
	if _, err := s.linker.LinkGuestMemberships(ctx, user.ID, user.Email); err != nil {
		return nil, err
	}
	return accounts.FromModel(user), nil
}

// Logout deletes the presented session and clears its cookie. Other sessions
// of the same account stay valid.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := s.sessions.RevokeUserSession(ctx, w, r); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "revoking session")
	}
	return nil
}

// Me returns the authenticated account, or an unauthorized error.
func (s *Service) Me(ctx context.Context, r *http.Request) (*accounts.UserDTO, error) {
	us, err := s.requireSession(ctx, r)
	if err != nil {
		return nil, err
	}
	return accounts.FromModel(us.User), nil
}

// MyGroups lists every group the account holds a linked membership in.
func (s *Service) MyGroups(ctx context.Context, r *http.Request) ([]members.MembershipWithGroup, error) {
	us, err := s.requireSession(ctx, r)
	if err != nil {
		return nil, err
	}
	rows, err := s.memberRepo.ListForUser(ctx, us.UserID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing memberships")
	}
	out := make([]members.MembershipWithGroup, 0, len(rows))
	for i := range rows {
		entry := members.MembershipWithGroup{Member: *members.FromModel(&rows[i])}
		if rows[i].Group != nil {
			entry.GroupSlug = rows[i].Group.Slug
			entry.GroupName = rows[i].Group.Name
		}
		out = append(out, entry)
	}
	return out, nil
}

// UpdateProfile changes the public username and avatar of the account.
func (s *Service) UpdateProfile(ctx context.Context, r *http.Request, req UpdateProfileRequest) (*accounts.UserDTO, error) {
	us, err := s.requireSession(ctx, r)
	if err != nil {
		return nil, err
	}
	user := us.User
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "username cannot be empty")
		}
		if err := s.repo.UpdateUsername(ctx, user.ID, username); err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, apperrors.New(apperrors.CodeConflict, "username already taken")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating username")
		}
		user.Username = &username
	}
	if req.AvatarURL != nil {
		if err := s.repo.UpdateAvatarURL(ctx, user.ID, req.AvatarURL); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating avatar")
		}
		user.AvatarURL = req.AvatarURL
	}
	return accounts.FromModel(user), nil
}

// ChangePassword swaps the credential after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, r *http.Request, req ChangePasswordRequest) error {
	us, err := s.requireSession(ctx, r)
	if err != nil {
		return err
	}
	ok, err := security.VerifyPassword(req.CurrentPassword, us.User.PasswordHash)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return apperrors.New(apperrors.CodeUnauthorized, "current password is incorrect")
	}
	hash, err := security.HashPassword(req.NewPassword, s.pwCfg)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "hashing password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, us.UserID, hash); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "updating password")
	}
	return nil
}

func (s *Service) requireSession(ctx context.Context, r *http.Request) (*models.UserSession, error) {
	us := s.sessions.UserSession(ctx, r)
	if us == nil || us.User == nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "must be logged in")
	}
	return us, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

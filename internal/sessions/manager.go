package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
	"github.com/tripnest/tripnest-backend/pkg/security"
)

// Cookie names are the only wire-level contract the identity core exposes.
const (
	UserSessionCookie   = "user_session_id"
	MemberSessionCookie = "member_session_id"
)

// Manager owns both session planes: platform-wide user sessions and per-group
// member (guest) sessions. Lookups never surface errors to callers; a missing,
// tampered or expired token is indistinguishable from "no session".
type Manager struct {
	db  *gorm.DB
	cfg config.SessionConfig
	now func() time.Time
}

// NewManager binds the manager to the shared GORM connection.
func NewManager(db *gorm.DB, cfg config.SessionConfig) *Manager {
	return &Manager{db: db, cfg: cfg, now: time.Now}
}

// IssueUserSession creates a platform session row and stamps its cookie.
func (m *Manager) IssueUserSession(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) (string, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return "", err
	}
	row := &models.UserSession{
		ID:        token,
		UserID:    userID,
		ExpiresAt: m.expiry(m.cfg.UserSessionTTL),
	}
	if err := m.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", err
	}
	m.setCookie(w, UserSessionCookie, token)
	return token, nil
}

// UserSession resolves the user session presented by the request, with the
// owning user preloaded. Returns nil when no valid session is present.
func (m *Manager) UserSession(ctx context.Context, r *http.Request) *models.UserSession {
	token := cookieValue(r, UserSessionCookie)
	if token == "" {
		return nil
	}
	var row models.UserSession
	err := m.db.WithContext(ctx).
		Preload("User").
		First(&row, "id = ?", token).Error
	if err != nil || row.User == nil || row.Expired(m.now()) {
		return nil
	}
	return &row
}

// IssueMemberSession creates a guest session scoped to one group. memberID may
// be nil: the caller has passed the password gate but not chosen a name yet.
func (m *Manager) IssueMemberSession(ctx context.Context, w http.ResponseWriter, groupID uuid.UUID, memberID *uuid.UUID) (*models.MemberSession, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return nil, err
	}
	row := &models.MemberSession{
		ID:        token,
		GroupID:   groupID,
		MemberID:  memberID,
		ExpiresAt: m.expiry(m.cfg.MemberSessionTTL),
	}
	if err := m.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	m.setCookie(w, MemberSessionCookie, token)
	return row, nil
}

// MemberSession resolves the guest session presented by the request. When
// groupID is non-nil, a session issued for another group resolves to nil: a
// guest token must never act outside the group it was issued for.
func (m *Manager) MemberSession(ctx context.Context, r *http.Request, groupID *uuid.UUID) *models.MemberSession {
	token := cookieValue(r, MemberSessionCookie)
	if token == "" {
		return nil
	}
	var row models.MemberSession
	if err := m.db.WithContext(ctx).First(&row, "id = ?", token).Error; err != nil {
		return nil
	}
	if row.Expired(m.now()) {
		return nil
	}
	if groupID != nil && row.GroupID != *groupID {
		return nil
	}
	return &row
}

// AttachMember performs the one-time write that binds a freshly established
// membership to its guest session, re-stamping the cookie with the same token.
func (m *Manager) AttachMember(ctx context.Context, w http.ResponseWriter, sessionID string, memberID uuid.UUID) error {
	err := m.db.WithContext(ctx).
		Model(&models.MemberSession{}).
		Where("id = ?", sessionID).
		UpdateColumn("member_id", memberID).Error
	if err != nil {
		return err
	}
	m.setCookie(w, MemberSessionCookie, sessionID)
	return nil
}

// RevokeUserSession deletes the presented session row and clears its cookie.
// Other sessions of the same account are untouched.
func (m *Manager) RevokeUserSession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token := cookieValue(r, UserSessionCookie); token != "" {
		if err := m.db.WithContext(ctx).Delete(&models.UserSession{}, "id = ?", token).Error; err != nil {
			return err
		}
	}
	m.clearCookie(w, UserSessionCookie)
	return nil
}

// DeleteMemberSessions drops every guest session bound to the member. The
// membership row itself is never deleted here.
func (m *Manager) DeleteMemberSessions(ctx context.Context, memberID uuid.UUID) error {
	return m.db.WithContext(ctx).
		Delete(&models.MemberSession{}, "member_id = ?", memberID).Error
}

func (m *Manager) expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	at := m.now().Add(ttl)
	return &at
}

func (m *Manager) setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinPasswordLength    = 6
	MaxDisplayNameLength = 100
)

// AccountService handles sign-up, sign-in, profiles and roles.
type AccountService struct {
	db          *gorm.DB
	notifier    notify.Notifier
	adminEmails []string
}

func NewAccountService(db *gorm.DB, notifier notify.Notifier, adminEmails []string) *AccountService {
	return &AccountService{db: db, notifier: notifier, adminEmails: adminEmails}
}

// Register creates a profile with the user role, plus admin when the email is
// listed in ADMIN_EMAILS.
func (s *AccountService) Register(ctx context.Context, email, password, displayName string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email is not valid")
	}
	if len(password) < MinPasswordLength {
		return nil, invalid("password must be at least 6 characters")
	}
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return nil, invalid("display name is too long")
	}
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, backendErr("hash password", err)
	}

	profile := models.Profile{
		ID:          utils.NewID(),
		Email:       email,
		DisplayName: displayName,
		Password:    hashed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			if isDuplicate(err) {
				return ErrEmailTaken
			}
			return backendErr("create profile", err)
		}
		roles := []models.UserRole{{UserID: profile.ID, Role: models.RoleUser}}
		if s.isAdminEmail(email) {
			roles = append(roles, models.UserRole{UserID: profile.ID, Role: models.RoleAdmin})
		}
		if err := tx.Create(&roles).Error; err != nil {
			return backendErr("assign roles", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", profile.ID)
	notify.PublishTable(s.notifier, notify.TableProfiles)
	return &profile, nil
}

// Login checks the credentials. Unknown email and wrong password look the same.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, notFoundOr("load profile", err, ErrInvalidCredentials)
	}
	if !utils.CheckPasswordHash(password, profile.Password) {
		return nil, ErrInvalidCredentials
	}
	return &profile, nil
}

// Profile loads a profile by id.
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr("load profile", err, ErrNotFound)
	}
	return &profile, nil
}

// UpdateProfile changes the display name.
func (s *AccountService) UpdateProfile(ctx context.Context, userID, displayName string) (*models.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return nil, invalid("display name must be 1-100 characters")
	}

	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Update("display_name", displayName)
	if res.Error != nil {
		return nil, backendErr("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	notify.PublishTable(s.notifier, notify.TableProfiles)
	return s.Profile(ctx, userID)
}

// IsAdmin reports whether the user holds the admin role. Lookup failures deny.
func (s *AccountService) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		slog.Error("admin role lookup failed", "user_id", userID, "error", err)
		return false
	}
	return count > 0
}

// GrantAdminRoles gives the admin role to existing profiles listed in
// ADMIN_EMAILS. Run at startup.
func (s *AccountService) GrantAdminRoles(ctx context.Context) error {
	if len(s.adminEmails) == 0 {
		return nil
	}
	lowered := make([]string, len(s.adminEmails))
	for i, e := range s.adminEmails {
		lowered[i] = strings.ToLower(e)
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Select("id").Where("email IN ?", lowered).Find(&profiles).Error; err != nil {
		return backendErr("load admin profiles", err)
	}
	if len(profiles) == 0 {
		return nil
	}

	roles := make([]models.UserRole, len(profiles))
	for i, p := range profiles {
		roles[i] = models.UserRole{UserID: p.ID, Role: models.RoleAdmin}
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return backendErr("grant admin roles", err)
	}
	slog.Info("admin roles ensured", "count", len(profiles))
	return nil
}

func (s *AccountService) isAdminEmail(email string) bool {
	for _, e := range s.adminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

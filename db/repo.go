package db

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"bookwise/models"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// FindUser returns (nil, nil) when the user does not exist.
func (r *Repo) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchUserLogin uses database time to avoid concurrent overwrites.
func (r *Repo) TouchUserLogin(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at":      gorm.Expr("NOW()"),
			"last_activity_date": gorm.Expr("NOW()"),
			"login_count":        gorm.Expr("COALESCE(login_count, 0) + 1"),
		}).Error
}

func (r *Repo) TouchUserActivity(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_activity_date", gorm.Expr("NOW()")).Error
}

// LastActivity feeds the onboarding workflow's checkpoints.
func (r *Repo) LastActivity(ctx context.Context, email string) (*time.Time, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Select("last_activity_date").
		Where("email = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.LastActivityDate, nil
}

// SetUserStatus returns the updated user, or (nil, nil) when missing.
func (r *Repo) SetUserStatus(ctx context.Context, userID, status string) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindUser(ctx, userID)
}

// DemoteUserByEmail revokes approval; the overdue-cancellation workflow
// step calls this so the user has to be re-approved before borrowing again.
func (r *Repo) DemoteUserByEmail(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", strings.ToLower(email)).
		Update("status", models.UserPending).Error
}

// DeactivateUserByEmail is the onboarding workflow's end-of-life write.
// Conditional so a re-executed goodbye step deactivates exactly once.
func (r *Repo) DeactivateUserByEmail(ctx context.Context, email string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND status <> ?", strings.ToLower(email), models.UserRejected).
		Update("status", models.UserRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("deactivate %s: no row updated (missing or already rejected)", email)
	}
	return nil
}

// List (pagination + keyword matching name/email)
type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q, status string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if status != "" {
		tx = tx.Where("status = ?", status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

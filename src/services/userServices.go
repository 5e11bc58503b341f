package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 12 * time.Hour

type UserService struct {
	db     *gorm.DB
	secret []byte
	log    *zap.Logger
}

// NewUserService creates a new instance of UserService signing tokens with secret
func NewUserService(db *gorm.DB, secret string, log *zap.Logger) *UserService {
	return &UserService{db: db, secret: []byte(secret), log: log}
}

// CreateUser hashes the password and stores the user
func (s *UserService) CreateUser(ctx context.Context, user *models.UserModel) (*models.UserModel, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.Password = string(hashedPassword)

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("username", user.Username))
	return user, nil
}

// EnsureUser creates username with password unless it already exists.
func (s *UserService) EnsureUser(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.CreateUser(ctx, &models.UserModel{Username: username, Password: password})
	return err
}

// AuthenticateUser checks user credentials and returns a JWT token if valid
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (string, error) {
	var user models.UserModel
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", result.Error
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.SignToken(user.ID)
}

// SignToken issues a token for userID valid for twelve hours
func (s *UserService) SignToken(userID int) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

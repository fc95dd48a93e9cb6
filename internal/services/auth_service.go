// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/config"
	"github.com/innovatech/storefront-backend/internal/models"
	"github.com/innovatech/storefront-backend/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrCustomerNotFound   = errors.New("customer not found")
)

type AuthService struct {
	db  *gorm.DB
	jwt config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwt config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwt: jwt}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"max=30"`
	Address  string `json:"address" binding:"max=300"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Customer     *models.Customer `json:"customer"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	customer := models.Customer{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     models.CustomerRoleCustomer,
		Status:   models.CustomerStatusActive,
	}
	if err := customer.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return s.issueTokens(&customer)
}

// Login authenticates by email and password. Suspended accounts are
// rejected even with valid credentials.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var customer models.Customer
	err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	if err := customer.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if customer.Status == models.CustomerStatusSuspended {
		return nil, ErrAccountSuspended
	}

	return s.issueTokens(&customer)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (*AuthResponse, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	customerID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	customer, err := s.GetProfile(customerID)
	if err != nil {
		return nil, err
	}
	if customer.Status == models.CustomerStatusSuspended {
		return nil, ErrAccountSuspended
	}

	return s.issueTokens(customer)
}

func (s *AuthService) GetProfile(customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.First(&customer, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return &customer, nil
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=2,max=150"`
	Phone    string `json:"phone" binding:"max=30"`
	Address  string `json:"address" binding:"max=300"`
}

func (s *AuthService) UpdateProfile(customerID uuid.UUID, req *UpdateProfileRequest) (*models.Customer, error) {
	customer, err := s.GetProfile(customerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"phone":   req.Phone,
		"address": req.Address,
	}
	if req.FullName != "" {
		updates["full_name"] = strings.TrimSpace(req.FullName)
	}

	if err := s.db.Model(customer).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(customerID)
}

func (s *AuthService) issueTokens(customer *models.Customer) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(customer.ID, customer.Email, string(customer.Role), s.jwt.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(customer.ID, s.jwt.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &AuthResponse{
		Customer:     customer,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

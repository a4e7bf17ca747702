package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewClient describes a machine client to register for a staff user
type NewClient struct {
	Name   string
	Domain string
	Scopes string
}

// IssuedClient is a freshly created client together with its plain secret, which is
// never stored and cannot be recovered later.
type IssuedClient struct {
	Client models.OAuthClient
	Secret string
}

type ClientService interface {
	CreateClient(ctx context.Context, userID uint, req NewClient) (IssuedClient, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, req NewClient) (IssuedClient, error) {
	if req.Name == "" {
		return IssuedClient{}, errors.New("client name is required")
	}
	if err := s.db.WithContext(ctx).First(&models.User{}, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return IssuedClient{}, fmt.Errorf("owner %d: %w", userID, ErrNotFound)
		}
		return IssuedClient{}, err
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return IssuedClient{}, fmt.Errorf("hash client secret: %w", err)
	}

	scopes := req.Scopes
	if scopes == "" {
		scopes = "read"
	}
	client := models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashedSecret),
		Name:       req.Name,
		Domain:     req.Domain,
		UserID:     userID,
		Scopes:     scopes,
		GrantTypes: "client_credentials",
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return IssuedClient{}, err
	}
	return IssuedClient{Client: client, Secret: secret}, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophprovider/internal/validx"
	"github.com/google/uuid"
)

// ProviderInput is the writable part of a provider.
type ProviderInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Document string `json:"document" validate:"required,max=14"`
	Active   bool   `json:"active"`
}

type ProviderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProviderService(db *sql.DB, m repomanager.RepositoryManager) *ProviderService {
	return &ProviderService{db: db, repomanager: m}
}

func (s *ProviderService) List(ctx context.Context) ([]models.Provider, error) {
	return s.repomanager.Providers(s.db).List(ctx)
}

// Get returns common.ErrorNotFound for unknown and malformed ids alike.
func (s *ProviderService) Get(ctx context.Context, id string) (*models.Provider, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Providers(s.db).Get(ctx, id)
}

func (s *ProviderService) Create(ctx context.Context, in ProviderInput) (*models.Provider, error) {
	if err := validx.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Providers(s.db).Create(ctx, &models.Provider{
		Name:     in.Name,
		Document: in.Document,
		Active:   in.Active,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating provider: %w", err)
	}
	return p, nil
}

func (s *ProviderService) Update(ctx context.Context, id string, in ProviderInput) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := validx.Struct(in); err != nil {
		return err
	}

	return s.repomanager.Providers(s.db).Update(ctx, &models.Provider{
		ID:       id,
		Name:     in.Name,
		Document: in.Document,
		Active:   in.Active,
	})
}

func (s *ProviderService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Providers(s.db).Delete(ctx, id)
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}

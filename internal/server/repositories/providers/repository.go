package providers

import (
	"context"

	"github.com/dmitrijs2005/gophprovider/internal/server/models"
)

// Repository stores providers. Get, Update and Delete of an unknown id
// return common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context) ([]models.Provider, error)
	Get(ctx context.Context, id string) (*models.Provider, error)
	Create(ctx context.Context, p *models.Provider) (*models.Provider, error)
	Update(ctx context.Context, p *models.Provider) error
	Delete(ctx context.Context, id string) error
}

// Package dishes provides the read-only dishes catalogue kept in SQLite.
package dishes

import (
	"context"

	"github.com/dmitrijs2005/gophprovider/internal/server/models"
)

// Repository reads dishes and their ingredients.
type Repository interface {
	// List returns all dishes, or those whose name contains name when it is
	// not empty (case-insensitive).
	List(ctx context.Context, name string) ([]models.Dish, error)
	GetByID(ctx context.Context, id string) (*models.Dish, error)
	GetByName(ctx context.Context, name string) (*models.Dish, error)
	// Ingredients lists the ingredients of a dish; an unknown dish yields
	// common.ErrorNotFound.
	Ingredients(ctx context.Context, dishID string) ([]models.Ingredient, error)
}

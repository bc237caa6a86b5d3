package services

import (
	"context"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/dishes"
)

// DishService reads the dishes catalogue.
type DishService struct {
	repo dishes.Repository
}

func NewDishService(repo dishes.Repository) *DishService {
	return &DishService{repo: repo}
}

func (s *DishService) List(ctx context.Context, name string) ([]models.Dish, error) {
	return s.repo.List(ctx, name)
}

func (s *DishService) Get(ctx context.Context, id string) (*models.Dish, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *DishService) GetByName(ctx context.Context, name string) (*models.Dish, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *DishService) Ingredients(ctx context.Context, dishID string) ([]models.Ingredient, error) {
	if !validID(dishID) {
		return nil, common.ErrorNotFound
	}
	return s.repo.Ingredients(ctx, dishID)
}

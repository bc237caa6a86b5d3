package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDishes struct {
	dish   *models.Dish
	called string
}

func (s *stubDishes) List(ctx context.Context, name string) ([]models.Dish, error) {
	s.called = "list:" + name
	return []models.Dish{*s.dish}, nil
}

func (s *stubDishes) GetByID(ctx context.Context, id string) (*models.Dish, error) {
	s.called = "id:" + id
	return s.dish, nil
}

func (s *stubDishes) GetByName(ctx context.Context, name string) (*models.Dish, error) {
	s.called = "name:" + name
	return s.dish, nil
}

func (s *stubDishes) Ingredients(ctx context.Context, id string) ([]models.Ingredient, error) {
	s.called = "ingredients:" + id
	return []models.Ingredient{{ID: "i", Name: "Beef"}}, nil
}

func TestDishService(t *testing.T) {
	ctx := context.Background()
	id := "fe462ec7-b30c-4987-8f8e-5f4ed1c4a4d8"
	repo := &stubDishes{dish: &models.Dish{ID: id, Name: "Rendang"}}
	s := NewDishService(repo)

	_, err := s.List(ctx, "ren")
	require.NoError(t, err)
	assert.Equal(t, "list:ren", repo.called)

	_, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "id:"+id, repo.called)

	_, err = s.GetByName(ctx, "Rendang")
	require.NoError(t, err)
	assert.Equal(t, "name:Rendang", repo.called)

	_, err = s.Ingredients(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ingredients:"+id, repo.called)

	repo.called = ""
	_, err = s.Get(ctx, "Rendang")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Ingredients(ctx, "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, repo.called, "malformed ids never reach the store")
}

package models

type Dish struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Ingredient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

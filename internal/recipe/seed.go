// Package recipe holds the pure recipe operations: the built-in seed set,
// serving rescaling, validation, and TOML recipe files.
package recipe

import "github.com/hammamikhairi/recipebook/internal/domain"

// Defaults returns the built-in recipes written to an empty book on first
// load. Each call returns fresh slices.
func Defaults() []domain.Recipe {
	return []domain.Recipe{
		borscht(),
		olivier(),
		blini(),
		caesar(),
		carbonara(),
	}
}

func borscht() domain.Recipe {
	return domain.Recipe{
		ID:   1,
		Name: "Борщ",
		Ingredients: []domain.Ingredient{
			{Name: "Свекла", Amount: 500, Unit: "г"},
			{Name: "Капуста", Amount: 300, Unit: "г"},
			{Name: "Картофель", Amount: 400, Unit: "г"},
			{Name: "Морковь", Amount: 200, Unit: "г"},
			{Name: "Лук", Amount: 150, Unit: "г"},
		},
		Instructions: "1. Нарежьте овощи. 2. Варите бульон. 3. Добавьте овощи...",
		Servings:     4,
	}
}

func olivier() domain.Recipe {
	return domain.Recipe{
		ID:   2,
		Name: "Оливье",
		Ingredients: []domain.Ingredient{
			{Name: "Картофель", Amount: 400, Unit: "г"},
			{Name: "Морковь", Amount: 200, Unit: "г"},
			{Name: "Яйца", Amount: 4, Unit: "шт"},
			{Name: "Колбаса", Amount: 300, Unit: "г"},
			{Name: "Горошек", Amount: 200, Unit: "г"},
		},
		Instructions: "1. Отварите овощи и яйца. 2. Нарежьте ингредиенты...",
		Servings:     6,
	}
}

func blini() domain.Recipe {
	return domain.Recipe{
		ID:   3,
		Name: "Блины",
		Ingredients: []domain.Ingredient{
			{Name: "Мука", Amount: 200, Unit: "г"},
			{Name: "Молоко", Amount: 500, Unit: "мл"},
			{Name: "Яйца", Amount: 2, Unit: "шт"},
			{Name: "Сахар", Amount: 2, Unit: "ст.л."},
			{Name: "Соль", Amount: 0.5, Unit: "ч.л."},
		},
		Instructions: "1. Смешайте ингредиенты. 2. Жарьте на сковороде...",
		Servings:     4,
	}
}

func caesar() domain.Recipe {
	return domain.Recipe{
		ID:   4,
		Name: "Цезарь с курицей",
		Ingredients: []domain.Ingredient{
			{Name: "Куриная грудка", Amount: 300, Unit: "г"},
			{Name: "Салат романо", Amount: 200, Unit: "г"},
			{Name: "Сухарики", Amount: 100, Unit: "г"},
			{Name: "Пармезан", Amount: 50, Unit: "г"},
			{Name: "Соус Цезарь", Amount: 100, Unit: "мл"},
		},
		Instructions: "1. Приготовьте курицу. 2. Нарежьте салат. 3. Смешайте ингредиенты...",
		Servings:     2,
	}
}

func carbonara() domain.Recipe {
	return domain.Recipe{
		ID:   5,
		Name: "Паста Карбонара",
		Ingredients: []domain.Ingredient{
			{Name: "Спагетти", Amount: 400, Unit: "г"},
			{Name: "Бекон", Amount: 200, Unit: "г"},
			{Name: "Яйца", Amount: 4, Unit: "шт"},
			{Name: "Пармезан", Amount: 100, Unit: "г"},
			{Name: "Черный перец", Amount: 1, Unit: "ч.л."},
		},
		Instructions: "1. Отварите пасту. 2. Обжарьте бекон. 3. Смешайте яйца и сыр...",
		Servings:     4,
	}
}

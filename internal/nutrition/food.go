package nutrition

import (
	"errors"
	"math"
)

var ErrFoodNotFound = errors.New("food not found")

// Food holds the reference energy value of a catalog item.
type Food struct {
	Name        string `json:"name"`
	KcalPer100g int    `json:"kcalPer100g"`
}

// DefaultFoods is the built-in food catalog with kcal per 100 g
// reference values.
func DefaultFoods() []Food {
	return []Food{
		{Name: "Chicken Breast (cooked)", KcalPer100g: 165},
		{Name: "White Rice (cooked)", KcalPer100g: 130},
		{Name: "Oatmeal (dry)", KcalPer100g: 370},
		{Name: "Egg", KcalPer100g: 143},
		{Name: "Banana", KcalPer100g: 89},
		{Name: "Apple", KcalPer100g: 52},
		{Name: "Peanut Butter", KcalPer100g: 588},
		{Name: "Broccoli", KcalPer100g: 34},
		{Name: "Greek Yogurt (plain)", KcalPer100g: 59},
		{Name: "Olive Oil", KcalPer100g: 884},
	}
}

// Calories computes the kilocalories of the given amount, rounding
// half away from zero at the integer boundary (150 g of chicken breast
// is 247.5, i.e. 248 kcal).
func (f Food) Calories(grams int) int {
	return int(math.Round(float64(f.KcalPer100g) * float64(grams) / 100))
}

// FindFood looks the food up in the default catalog by exact name.
func FindFood(name string) (Food, error) {
	for _, f := range DefaultFoods() {
		if f.Name == name {
			return f, nil
		}
	}
	return Food{}, ErrFoodNotFound
}

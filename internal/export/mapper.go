package export

import (
	"strconv"
	"strings"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

// TandoorRecipe is the request body of Tandoor's recipe import
// endpoint. There is no recipe-level ingredient list; Tandoor attaches
// ingredients to steps.
type TandoorRecipe struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Steps       []TandoorStep    `json:"steps"`
	Servings    int              `json:"servings"`
	WorkingTime int              `json:"working_time"`
	WaitingTime int              `json:"waiting_time"`
	Keywords    []TandoorKeyword `json:"keywords"`
}

type TandoorStep struct {
	Instruction string              `json:"instruction"`
	Ingredients []TandoorIngredient `json:"ingredients"`
}

type TandoorIngredient struct {
	Amount float64     `json:"amount"`
	Unit   TandoorName `json:"unit"`
	Food   TandoorName `json:"food"`
	Note   string      `json:"note"`
}

type TandoorName struct {
	Name string `json:"name"`
}

type TandoorKeyword struct {
	Name string `json:"name"`
}

// ToTandoorPayload reshapes a recipe into Tandoor's import format. The
// transform is pure and deterministic. The full ingredient list lands
// in the FIRST step's ingredients array, every other step gets an empty
// one; a recipe with zero steps therefore exports with no ingredients
// at all. working_time carries the prep minutes and waiting_time the
// cook minutes.
func ToTandoorPayload(rec recipe.Recipe) TandoorRecipe {
	steps := make([]TandoorStep, 0, len(rec.Steps))
	for i, st := range rec.Steps {
		ts := TandoorStep{
			Instruction: st.Instruction,
			Ingredients: []TandoorIngredient{},
		}
		if i == 0 {
			ts.Ingredients = mapIngredients(rec.Ingredients)
		}
		steps = append(steps, ts)
	}

	keywords := make([]TandoorKeyword, 0, len(rec.Keywords))
	for _, k := range rec.Keywords {
		keywords = append(keywords, TandoorKeyword{Name: k})
	}

	return TandoorRecipe{
		Name:        rec.Name,
		Description: rec.Description,
		Steps:       steps,
		Servings:    rec.Servings,
		WorkingTime: rec.PrepTimeMinutes,
		WaitingTime: rec.CookTimeMinutes,
		Keywords:    keywords,
	}
}

func mapIngredients(ings []recipe.Ingredient) []TandoorIngredient {
	out := make([]TandoorIngredient, 0, len(ings))
	for _, ing := range ings {
		out = append(out, TandoorIngredient{
			Amount: ParseAmount(ing.Amount),
			Unit:   TandoorName{Name: ing.Unit},
			Food:   TandoorName{Name: ing.Name},
			Note:   ing.Note,
		})
	}
	return out
}

// ParseAmount converts a free-text amount to the number Tandoor
// requires. Anything strconv cannot parse, fractions like "1/2"
// included, maps to 0.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

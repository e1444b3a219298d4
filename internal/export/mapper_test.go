package export

import (
	"reflect"
	"testing"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

func sampleRecipe() recipe.Recipe {
	return recipe.Recipe{
		Name:            "Pancakes",
		Description:     "Breakfast classic",
		Servings:        4,
		PrepTimeMinutes: 10,
		CookTimeMinutes: 20,
		Ingredients: []recipe.Ingredient{
			{Amount: "2", Unit: "cups", Name: "flour"},
			{Amount: "1/2", Unit: "tsp", Name: "salt", Note: "fine"},
		},
		Steps: []recipe.Step{
			{Instruction: "Mix."},
			{Instruction: "Bake."},
		},
		Keywords: []string{"breakfast", "sweet"},
	}
}

func TestToTandoorPayloadShape(t *testing.T) {
	got := ToTandoorPayload(sampleRecipe())

	if got.Name != "Pancakes" || got.Description != "Breakfast classic" {
		t.Errorf("header fields = %q / %q", got.Name, got.Description)
	}
	if got.Servings != 4 {
		t.Errorf("Servings = %d", got.Servings)
	}
	if got.WorkingTime != 10 || got.WaitingTime != 20 {
		t.Errorf("times = working %d waiting %d, want prep 10 cook 20", got.WorkingTime, got.WaitingTime)
	}

	if len(got.Steps) != 2 {
		t.Fatalf("steps = %d", len(got.Steps))
	}
	first, second := got.Steps[0], got.Steps[1]
	if len(first.Ingredients) != 2 {
		t.Fatalf("first step must carry the full ingredient list, got %d", len(first.Ingredients))
	}
	if len(second.Ingredients) != 0 || second.Ingredients == nil {
		t.Error("every later step must carry an empty, non-nil ingredient list")
	}

	ing := first.Ingredients[0]
	if ing.Amount != 2 || ing.Unit.Name != "cups" || ing.Food.Name != "flour" {
		t.Errorf("mapped ingredient = %+v", ing)
	}
	if first.Ingredients[1].Amount != 0 {
		t.Errorf(`fraction amount must map to 0, got %v`, first.Ingredients[1].Amount)
	}
	if first.Ingredients[1].Note != "fine" {
		t.Errorf("note lost: %+v", first.Ingredients[1])
	}

	wantKw := []TandoorKeyword{{Name: "breakfast"}, {Name: "sweet"}}
	if !reflect.DeepEqual(got.Keywords, wantKw) {
		t.Errorf("keywords = %+v", got.Keywords)
	}
}

func TestToTandoorPayloadIsDeterministic(t *testing.T) {
	a := ToTandoorPayload(sampleRecipe())
	b := ToTandoorPayload(sampleRecipe())
	if !reflect.DeepEqual(a, b) {
		t.Error("same input must map to an identical payload")
	}
}

func TestToTandoorPayloadZeroSteps(t *testing.T) {
	rec := recipe.Recipe{
		Name:        "Only ingredients",
		Ingredients: []recipe.Ingredient{{Amount: "1", Name: "egg"}},
		Steps:       []recipe.Step{},
	}
	got := ToTandoorPayload(rec)

	// With no first step to attach them to, the ingredients are
	// silently dropped from the payload.
	if got.Steps == nil || len(got.Steps) != 0 {
		t.Errorf("Steps = %#v, want empty non-nil slice", got.Steps)
	}
}

func TestToTandoorPayloadZeroIngredientsOneStep(t *testing.T) {
	rec := recipe.Recipe{
		Name:  "Boil water",
		Steps: []recipe.Step{{Instruction: "Boil."}},
	}
	got := ToTandoorPayload(rec)

	if len(got.Steps) != 1 {
		t.Fatalf("steps = %d", len(got.Steps))
	}
	if got.Steps[0].Ingredients == nil || len(got.Steps[0].Ingredients) != 0 {
		t.Errorf("first step ingredients = %#v, want empty non-nil slice", got.Steps[0].Ingredients)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2", 2},
		{"2.5", 2.5},
		{" 3 ", 3},
		{"1/2", 0},
		{"a pinch", 0},
		{"", 0},
		{"2,5", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

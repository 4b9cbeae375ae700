package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestRecipeValidate(t *testing.T) {
	complete := Recipe{
		Name:         "Tomato Pasta",
		Ingredients:  []string{"Tomatoes", "Pasta"},
		Instructions: []string{"Boil pasta", "Add sauce"},
	}
	if err := complete.Validate(); err != nil {
		t.Fatalf("Validate() on complete recipe failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *Recipe)
		want   error
	}{
		{"blank name", func(r *Recipe) { r.Name = "   " }, ErrEmptyName},
		{"no ingredients", func(r *Recipe) { r.Ingredients = nil }, ErrNoIngredients},
		{"no instructions", func(r *Recipe) { r.Instructions = []string{} }, ErrNoInstructions},
		{"blank ingredient", func(r *Recipe) { r.Ingredients = []string{"Salt", " "} }, ErrBlankListEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := complete.Clone()
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("  Tomatoes \r\n\n Pasta\n   \nBasil  ")
	want := []string{"Tomatoes", "Pasta", "Basil"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines() = %q, want %q", got, want)
	}

	if got := SplitLines(" \n \n"); got == nil || len(got) != 0 {
		t.Errorf("SplitLines(blank) = %#v, want empty non-nil slice", got)
	}
}

func TestEditFieldsRecipe(t *testing.T) {
	f := EditFields{
		Name:             "  Stew ",
		Description:      "Hearty",
		IngredientsText:  "Beef\nCarrots\n",
		InstructionsText: "",
	}
	r := f.Recipe()
	if r.Name != "Stew" {
		t.Errorf("Name = %q, want %q", r.Name, "Stew")
	}
	if len(r.Ingredients) != 2 {
		t.Errorf("Ingredients = %q, want 2 entries", r.Ingredients)
	}
	if len(r.Instructions) != 0 {
		t.Errorf("Instructions = %q, want none", r.Instructions)
	}
}

func TestSameName(t *testing.T) {
	if !SameName("Soup", "sOUP") {
		t.Error("SameName should ignore case")
	}
	if SameName("Soup", "Soups") {
		t.Error("SameName matched different names")
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"": DifficultyEasy, "Easy": DifficultyEasy, "MEDIUM": DifficultyMedium, " hard ": DifficultyHard} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("extreme"); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("ParseDifficulty(extreme) error = %v, want ErrUnknownDifficulty", err)
	}
}

func TestParseTheme(t *testing.T) {
	if th, ok := ParseTheme("Dark"); !ok || th != ThemeDark {
		t.Errorf("ParseTheme(Dark) = %q, %v", th, ok)
	}
	if _, ok := ParseTheme("blue"); ok {
		t.Error("ParseTheme(blue) should fail")
	}
}

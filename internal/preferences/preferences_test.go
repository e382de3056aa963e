package preferences

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()

	assert.Empty(t, p.DietaryRestrictions)
	assert.Empty(t, p.Allergies)
	assert.Empty(t, p.FavoriteCuisines)
	assert.Equal(t, "None", p.ReligiousRestriction)
	assert.Equal(t, "", p.Email)
	for _, m := range Meals {
		assert.True(t, p.MealPreferences[m], "meal %s should default to enabled", m)
	}
}

func TestStore_SetMultiSelect(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.SetDietaryRestrictions([]string{"Vegan", "keto", "Vegan"}))
	require.NoError(t, s.SetAllergies([]string{"Nuts"}))
	require.NoError(t, s.SetFavoriteCuisines([]string{"Japanese", "Italian"}))

	p := s.Get()
	assert.Equal(t, []string{"Vegan", "Keto"}, p.DietaryRestrictions)
	assert.Equal(t, []string{"Nuts"}, p.Allergies)
	assert.Equal(t, []string{"Japanese", "Italian"}, p.FavoriteCuisines)

	require.NoError(t, s.SetAllergies(nil))
	assert.Empty(t, s.Get().Allergies)
}

func TestStore_RejectsUnknownOption(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetFavoriteCuisines([]string{"Mexican"}))

	err := s.SetFavoriteCuisines([]string{"Italian", "Martian"})
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, []string{"Mexican"}, s.Get().FavoriteCuisines)

	require.ErrorIs(t, s.SetReligiousRestriction("Pastafarian"), ErrUnknownOption)
	assert.Equal(t, "None", s.Get().ReligiousRestriction)

	require.ErrorIs(t, s.SetMeal(Meal("brunch"), false), ErrUnknownOption)
}

func TestStore_ApplyIsAllOrNothing(t *testing.T) {
	s := NewStore()
	email := "user@example.com"
	bad := []string{"Gravel"}

	err := s.Apply(Update{Email: &email, Allergies: &bad})
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, "", s.Get().Email)
}

func TestStore_EmailAcceptsAnything(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.SetEmail("not an address"))
	assert.Equal(t, "not an address", s.Get().Email)

	require.NoError(t, s.SetEmail(""))
	assert.Equal(t, "", s.Get().Email)
}

func TestStore_MealToggles(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.SetMeal(Snacks, false))
	require.NoError(t, s.Apply(Update{MealPreferences: map[Meal]bool{"Lunch": false}}))

	assert.Equal(t, []string{"breakfast", "dinner"}, s.Get().EnabledMeals())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetAllergies([]string{"Soy"}))

	p := s.Get()
	p.Allergies[0] = "Fish"
	p.MealPreferences[Dinner] = false

	again := s.Get()
	assert.Equal(t, []string{"Soy"}, again.Allergies)
	assert.True(t, again.MealPreferences[Dinner])
}

func TestStore_EnumFieldsStayWithinOptions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	junk := []string{"", "Martian", "nuts ", "VEGAN", "Sushi", "Kosher"}

	pick := func(options []string) []string {
		pool := append(append([]string{}, options...), junk...)
		n := rng.Intn(4)
		out := make([]string, n)
		for i := range out {
			out[i] = pool[rng.Intn(len(pool))]
		}
		return out
	}

	s := NewStore()
	for i := 0; i < 500; i++ {
		switch rng.Intn(5) {
		case 0:
			_ = s.SetDietaryRestrictions(pick(DietaryOptions))
		case 1:
			_ = s.SetAllergies(pick(AllergyOptions))
		case 2:
			_ = s.SetFavoriteCuisines(pick(CuisineOptions))
		case 3:
			values := pick(ReligiousOptions)
			if len(values) > 0 {
				_ = s.SetReligiousRestriction(values[0])
			}
		case 4:
			_ = s.SetMeal(Meals[rng.Intn(len(Meals))], rng.Intn(2) == 0)
		}

		p := s.Get()
		assert.Subset(t, DietaryOptions, p.DietaryRestrictions)
		assert.Subset(t, AllergyOptions, p.Allergies)
		assert.Subset(t, CuisineOptions, p.FavoriteCuisines)
		assert.Contains(t, ReligiousOptions, p.ReligiousRestriction)
		assert.Len(t, p.MealPreferences, len(Meals))
	}
}

func TestParseMeal(t *testing.T) {
	m, err := ParseMeal(" Dinner ")
	require.NoError(t, err)
	assert.Equal(t, Dinner, m)

	_, err = ParseMeal("elevenses")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

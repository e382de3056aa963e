/*
Package preferences holds the dietary preferences collected for a chat session
and renders them into the system instruction sent to the completion service.
*/
package preferences

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Meal is one of the meal slots a user can switch on or off.
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
	Snacks    Meal = "snacks"
)

// DefaultReligiousRestriction is selected until the user picks something else.
const DefaultReligiousRestriction = "None"

// ErrUnknownOption is returned when a value is not part of its field's option list.
var ErrUnknownOption = errors.New("unknown option")

var (
	// Meals lists every meal slot in display order.
	Meals = []Meal{Breakfast, Lunch, Dinner, Snacks}

	DietaryOptions   = []string{"Vegetarian", "Vegan", "Gluten-Free", "Dairy-Free", "Keto", "Paleo"}
	AllergyOptions   = []string{"Nuts", "Shellfish", "Eggs", "Soy", "Wheat", "Fish"}
	CuisineOptions   = []string{"Italian", "Mexican", "Indian", "Chinese", "Mediterranean", "Japanese", "American"}
	ReligiousOptions = []string{"Halal", "Kosher", "None"}
)

// UserPreferences is the full preference state of one session.
type UserPreferences struct {
	DietaryRestrictions  []string      `json:"dietary_restrictions"`
	Allergies            []string      `json:"allergies"`
	FavoriteCuisines     []string      `json:"favorite_cuisines"`
	ReligiousRestriction string        `json:"religious_restriction"`
	Email                string        `json:"email"`
	MealPreferences      map[Meal]bool `json:"meal_preferences"`
}

// Update is a partial change coming from the preference form. Nil fields are left alone.
type Update struct {
	DietaryRestrictions  *[]string     `json:"dietary_restrictions,omitempty"`
	Allergies            *[]string     `json:"allergies,omitempty"`
	FavoriteCuisines     *[]string     `json:"favorite_cuisines,omitempty"`
	ReligiousRestriction *string       `json:"religious_restriction,omitempty"`
	Email                *string       `json:"email,omitempty"`
	MealPreferences      map[Meal]bool `json:"meal_preferences,omitempty"`
}

// Options is the set of choices offered by the preference form.
type Options struct {
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	FavoriteCuisines    []string `json:"favorite_cuisines"`
	ReligiousOptions    []string `json:"religious_restrictions"`
	Meals               []Meal   `json:"meals"`
}

// AvailableOptions returns a copy of every option list.
func AvailableOptions() Options {
	return Options{
		DietaryRestrictions: append([]string(nil), DietaryOptions...),
		Allergies:           append([]string(nil), AllergyOptions...),
		FavoriteCuisines:    append([]string(nil), CuisineOptions...),
		ReligiousOptions:    append([]string(nil), ReligiousOptions...),
		Meals:               append([]Meal(nil), Meals...),
	}
}

// Defaults returns the preferences a new session starts with.
func Defaults() UserPreferences {
	meals := make(map[Meal]bool, len(Meals))
	for _, m := range Meals {
		meals[m] = true
	}
	return UserPreferences{
		DietaryRestrictions:  []string{},
		Allergies:            []string{},
		FavoriteCuisines:     []string{},
		ReligiousRestriction: DefaultReligiousRestriction,
		MealPreferences:      meals,
	}
}

// Clone returns a deep copy.
func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.DietaryRestrictions = append([]string{}, p.DietaryRestrictions...)
	out.Allergies = append([]string{}, p.Allergies...)
	out.FavoriteCuisines = append([]string{}, p.FavoriteCuisines...)
	out.MealPreferences = make(map[Meal]bool, len(p.MealPreferences))
	for k, v := range p.MealPreferences {
		out.MealPreferences[k] = v
	}
	return out
}

// EnabledMeals returns the switched-on meals in display order.
func (p UserPreferences) EnabledMeals() []string {
	var enabled []string
	for _, m := range Meals {
		if p.MealPreferences[m] {
			enabled = append(enabled, string(m))
		}
	}
	return enabled
}

// ParseMeal resolves a meal name case-insensitively.
func ParseMeal(name string) (Meal, error) {
	for _, m := range Meals {
		if strings.EqualFold(string(m), strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a meal", ErrUnknownOption, name)
}

// Store keeps the live preferences of a session. Every write replaces the
// previous value of the field.
type Store struct {
	mu    sync.RWMutex
	prefs UserPreferences
}

// NewStore returns a store holding Defaults().
func NewStore() *Store {
	return &Store{prefs: Defaults()}
}

// Get returns a snapshot that callers may modify freely.
func (s *Store) Get() UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Clone()
}

func (s *Store) SetDietaryRestrictions(values []string) error {
	return s.Apply(Update{DietaryRestrictions: &values})
}

func (s *Store) SetAllergies(values []string) error {
	return s.Apply(Update{Allergies: &values})
}

func (s *Store) SetFavoriteCuisines(values []string) error {
	return s.Apply(Update{FavoriteCuisines: &values})
}

func (s *Store) SetReligiousRestriction(value string) error {
	return s.Apply(Update{ReligiousRestriction: &value})
}

// SetEmail stores any string, including the empty one.
func (s *Store) SetEmail(email string) error {
	return s.Apply(Update{Email: &email})
}

func (s *Store) SetMeal(meal Meal, enabled bool) error {
	return s.Apply(Update{MealPreferences: map[Meal]bool{meal: enabled}})
}

// Apply validates the whole update first and only then writes it, so a rejected
// update leaves every field untouched.
func (s *Store) Apply(u Update) error {
	var (
		dietary, allergies, cuisines []string
		religious                    string
		err                          error
	)

	if u.DietaryRestrictions != nil {
		if dietary, err = selectFrom("dietary restriction", DietaryOptions, *u.DietaryRestrictions); err != nil {
			return err
		}
	}
	if u.Allergies != nil {
		if allergies, err = selectFrom("allergy", AllergyOptions, *u.Allergies); err != nil {
			return err
		}
	}
	if u.FavoriteCuisines != nil {
		if cuisines, err = selectFrom("cuisine", CuisineOptions, *u.FavoriteCuisines); err != nil {
			return err
		}
	}
	if u.ReligiousRestriction != nil {
		if religious, err = matchOption("religious restriction", ReligiousOptions, *u.ReligiousRestriction); err != nil {
			return err
		}
	}
	for meal := range u.MealPreferences {
		if _, err := ParseMeal(string(meal)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.DietaryRestrictions != nil {
		s.prefs.DietaryRestrictions = dietary
	}
	if u.Allergies != nil {
		s.prefs.Allergies = allergies
	}
	if u.FavoriteCuisines != nil {
		s.prefs.FavoriteCuisines = cuisines
	}
	if u.ReligiousRestriction != nil {
		s.prefs.ReligiousRestriction = religious
	}
	if u.Email != nil {
		s.prefs.Email = *u.Email
	}
	for meal, enabled := range u.MealPreferences {
		m, _ := ParseMeal(string(meal))
		s.prefs.MealPreferences[m] = enabled
	}
	return nil
}

// selectFrom canonicalizes a multi-select value: selection order is kept and
// duplicates are dropped.
func selectFrom(field string, options, values []string) ([]string, error) {
	selected := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		opt, err := matchOption(field, options, v)
		if err != nil {
			return nil, err
		}
		if seen[opt] {
			continue
		}
		seen[opt] = true
		selected = append(selected, opt)
	}
	return selected, nil
}

func matchOption(field string, options []string, value string) (string, error) {
	for _, opt := range options {
		if strings.EqualFold(opt, strings.TrimSpace(value)) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid %s", ErrUnknownOption, value, field)
}

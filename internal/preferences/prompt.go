package preferences

import (
	"fmt"
	"strings"
)

const assistantPersona = "You are a helpful nutritional assistant."

const contextTemplate = `User Preferences:
- Dietary Restrictions: %s
- Allergies: %s
- Favorite Cuisines: %s
- Religious Restrictions: %s
- Meal Preferences: %s
`

// BuildContext renders the preference block injected into the system prompt.
// Empty lists render as empty strings.
func BuildContext(p UserPreferences) string {
	return fmt.Sprintf(contextTemplate,
		strings.Join(p.DietaryRestrictions, ", "),
		strings.Join(p.Allergies, ", "),
		strings.Join(p.FavoriteCuisines, ", "),
		p.ReligiousRestriction,
		strings.Join(p.EnabledMeals(), ", "),
	)
}

// SystemInstruction is the full system message for a completion request.
func SystemInstruction(p UserPreferences) string {
	return fmt.Sprintf("%s Use this context about the user's preferences:\n%s", assistantPersona, BuildContext(p))
}

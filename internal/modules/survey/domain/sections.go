package domain

// Section names a main survey section. Remote documents key answers by it.
type Section string

const (
	SectionDemographics      Section = "demographics"
	SectionGamingPreferences Section = "gaming_preferences"
	SectionGamingHabits      Section = "gaming_habits"
	SectionGamingLifestyle   Section = "gaming_lifestyle"
	SectionGamingFamily      Section = "gaming_family"
	SectionFutureGaming      Section = "future_gaming"
)

// MainOrder is the fixed traversal order of the survey.
var MainOrder = []Section{
	SectionDemographics,
	SectionGamingPreferences,
	SectionGamingHabits,
	SectionGamingLifestyle,
	SectionGamingFamily,
	SectionFutureGaming,
}

// Screen identifies what is rendered: a main section or one of its
// conditional sub-sections.
type Screen string

const (
	ScreenDemographicsUnder18 Screen = "demographics_under_18"
	ScreenDemographics18To24  Screen = "demographics_18_24"
	ScreenDemographics25Plus  Screen = "demographics_25_plus"

	ScreenFamilyUnder18Male   Screen = "family_under_18_male"
	ScreenFamilyUnder18Female Screen = "family_under_18_female"
	ScreenFamily18To24Male    Screen = "family_18_24_male"
	ScreenFamily18To24Female  Screen = "family_18_24_female"
	ScreenFamily25PlusMale    Screen = "family_25_plus_male"
	ScreenFamily25PlusFemale  Screen = "family_25_plus_female"
)

// FamilyScreenKey records which family variant produced the gaming_family answers.
const FamilyScreenKey = "screen"

const GenericLabel = "Survey"

var labels = map[Screen]string{
	Screen(SectionDemographics):      "About You",
	Screen(SectionGamingPreferences): "Gaming Preferences",
	Screen(SectionGamingHabits):      "Gaming Habits",
	Screen(SectionGamingLifestyle):   "Gaming Lifestyle",
	Screen(SectionGamingFamily):      "Gaming & Family",
	Screen(SectionFutureGaming):      "Future of Gaming",
	ScreenDemographicsUnder18:        "About You: Student Life",
	ScreenDemographics18To24:         "About You: Campus & Early Career",
	ScreenDemographics25Plus:         "About You: Work & Home",
	ScreenFamilyUnder18Male:          "Gaming & Family",
	ScreenFamilyUnder18Female:        "Gaming & Family",
	ScreenFamily18To24Male:           "Gaming & Family",
	ScreenFamily18To24Female:         "Gaming & Family",
	ScreenFamily25PlusMale:           "Gaming & Family",
	ScreenFamily25PlusFemale:         "Gaming & Family",
}

// Label returns the display label of a screen, or GenericLabel when unknown.
func Label(screen Screen) string {
	if label, ok := labels[screen]; ok {
		return label
	}
	return GenericLabel
}

func IndexOf(section Section) (int, bool) {
	for i, s := range MainOrder {
		if s == section {
			return i, true
		}
	}
	return 0, false
}

func IsMainSection(name string) bool {
	_, ok := IndexOf(Section(name))
	return ok
}

package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type AgeBand int

const (
	AgeUnknown AgeBand = iota
	AgeUnder18
	Age18To24
	Age25Plus
)

const (
	AnswerAge    = "age"
	AnswerGender = "gender"
)

var leadingNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseAge reads the age answer. Numbers, numeric strings and bracket labels
// such as "18-24", "25+" or "under 18" are accepted.
func ParseAge(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if s == "" {
			return 0, false
		}
		if strings.HasPrefix(s, "under") || strings.HasPrefix(s, "<") || strings.HasPrefix(s, "below") {
			return 17, true
		}
		match := leadingNumber.FindString(s)
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(match, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func BandFor(demographics Answers) AgeBand {
	age, ok := ParseAge(demographics[AnswerAge])
	if !ok || math.IsNaN(age) || math.IsInf(age, 0) {
		return AgeUnknown
	}
	switch {
	case age < 18:
		return AgeUnder18
	case age <= 24:
		return Age18To24
	default:
		return Age25Plus
	}
}

// ResolveDemographicSubsection picks the age-specific demographics screen.
// It reports false while no age has been answered.
func ResolveDemographicSubsection(demographics Answers) (Screen, bool) {
	switch BandFor(demographics) {
	case AgeUnder18:
		return ScreenDemographicsUnder18, true
	case Age18To24:
		return ScreenDemographics18To24, true
	case Age25Plus:
		return ScreenDemographics25Plus, true
	default:
		return "", false
	}
}

var familyScreens = map[AgeBand]map[string]Screen{
	AgeUnder18: {"male": ScreenFamilyUnder18Male, "female": ScreenFamilyUnder18Female},
	Age18To24:  {"male": ScreenFamily18To24Male, "female": ScreenFamily18To24Female},
	Age25Plus:  {"male": ScreenFamily25PlusMale, "female": ScreenFamily25PlusFemale},
}

// ResolveFamilySubsection picks one of the six age × gender family screens.
// Genders other than male and female are unresolved; callers render the
// neutral gaming_family screen instead.
func ResolveFamilySubsection(demographics Answers) (Screen, bool) {
	byGender, ok := familyScreens[BandFor(demographics)]
	if !ok {
		return "", false
	}
	gender, _ := demographics[AnswerGender].(string)
	screen, ok := byGender[strings.ToLower(strings.TrimSpace(gender))]
	return screen, ok
}

// ResolveScreen returns what to render for section given the demographics
// answers. detail selects the demographics sub-screen over its base form.
func ResolveScreen(section Section, demographics Answers, detail bool) Screen {
	switch section {
	case SectionDemographics:
		if detail {
			if screen, ok := ResolveDemographicSubsection(demographics); ok {
				return screen
			}
		}
	case SectionGamingFamily:
		if screen, ok := ResolveFamilySubsection(demographics); ok {
			return screen
		}
	}
	return Screen(section)
}

// ParentOf maps a screen back to its main section.
func ParentOf(screen Screen) (Section, bool) {
	switch {
	case IsMainSection(string(screen)):
		return Section(screen), true
	case strings.HasPrefix(string(screen), "demographics_"):
		return SectionDemographics, true
	case strings.HasPrefix(string(screen), "family_"):
		return SectionGamingFamily, true
	}
	return "", false
}

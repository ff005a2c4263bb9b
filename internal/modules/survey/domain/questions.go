package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	apperrors "kreosurvey/internal/platform/errors"
)

type QuestionKind string

const (
	KindSingle QuestionKind = "single"
	KindMulti  QuestionKind = "multi"
	KindText   QuestionKind = "text"
	KindNumber QuestionKind = "number"
	KindBool   QuestionKind = "bool"
)

type Question struct {
	Key      string
	Prompt   string
	Kind     QuestionKind
	Options  []string
	Required bool
	Min, Max float64
}

var (
	budgetOptions   = []string{"Nothing", "Under ₹1,000", "₹1,000 to ₹5,000", "₹5,000 to ₹15,000", "Over ₹15,000"}
	platformOptions = []string{"PC", "PlayStation", "Xbox", "Nintendo Switch", "Mobile", "Cloud gaming"}
	genreOptions    = []string{"FPS", "Battle royale", "MOBA", "RPG", "Sports", "Racing", "Strategy", "Simulation", "Casual"}
	gearOptions     = []string{"Mouse", "Keyboard", "Headset", "Controller", "Webcam", "Microphone", "Gaming chair"}
)

var catalog = map[Screen][]Question{
	Screen(SectionDemographics): {
		{Key: AnswerAge, Prompt: "How old are you?", Kind: KindNumber, Required: true, Min: 8, Max: 99},
		{Key: AnswerGender, Prompt: "What is your gender?", Kind: KindSingle, Required: true, Options: []string{"Male", "Female", "Non-binary", "Prefer not to say"}},
		{Key: "city", Prompt: "Which city do you live in?", Kind: KindText},
	},
	ScreenDemographicsUnder18: {
		{Key: "school_level", Prompt: "Which school level are you in?", Kind: KindSingle, Required: true, Options: []string{"Middle school", "High school", "Not in school"}},
		{Key: "parental_controls", Prompt: "Do your parents limit your gaming time?", Kind: KindBool},
		{Key: "pocket_money_on_games", Prompt: "How much pocket money goes to games each month?", Kind: KindSingle, Options: budgetOptions},
	},
	ScreenDemographics18To24: {
		{Key: "occupation", Prompt: "What do you do right now?", Kind: KindSingle, Required: true, Options: []string{"College student", "Working", "Both", "Neither"}},
		{Key: "lives_with", Prompt: "Who do you live with?", Kind: KindSingle, Options: []string{"Family", "Roommates", "Alone", "Partner"}},
		{Key: "monthly_gaming_budget", Prompt: "What is your monthly gaming budget?", Kind: KindSingle, Options: budgetOptions},
	},
	ScreenDemographics25Plus: {
		{Key: "occupation", Prompt: "What best describes your work?", Kind: KindSingle, Required: true, Options: []string{"Salaried", "Self-employed", "Freelancer or creator", "Not working"}},
		{Key: "has_children", Prompt: "Do you have children?", Kind: KindBool},
		{Key: "monthly_gaming_budget", Prompt: "What is your monthly gaming budget?", Kind: KindSingle, Options: budgetOptions},
	},
	Screen(SectionGamingPreferences): {
		{Key: "platforms", Prompt: "Which platforms do you play on?", Kind: KindMulti, Required: true, Options: platformOptions},
		{Key: "genres", Prompt: "Which genres do you enjoy?", Kind: KindMulti, Required: true, Options: genreOptions},
		{Key: "favorite_game", Prompt: "What is your favourite game right now?", Kind: KindText},
		{Key: "play_mode", Prompt: "How do you usually play?", Kind: KindSingle, Options: []string{"Solo", "Co-op with friends", "Competitive multiplayer"}},
	},
	Screen(SectionGamingHabits): {
		{Key: "hours_per_week", Prompt: "Roughly how many hours do you game per week?", Kind: KindNumber, Required: true, Min: 0, Max: 168},
		{Key: "peak_time", Prompt: "When do you play the most?", Kind: KindSingle, Options: []string{"Morning", "Afternoon", "Evening", "Late night"}},
		{Key: "creates_content", Prompt: "Do you stream or create gaming content?", Kind: KindBool},
	},
	Screen(SectionGamingLifestyle): {
		{Key: "gear_owned", Prompt: "Which gaming gear do you own?", Kind: KindMulti, Options: gearOptions},
		{Key: "buying_factors", Prompt: "What matters most when buying gear?", Kind: KindMulti, Required: true, Options: []string{"Price", "Build quality", "RGB", "Brand", "Reviews", "Warranty"}},
		{Key: "follows_esports", Prompt: "Do you follow esports?", Kind: KindBool},
	},
	Screen(SectionGamingFamily): {
		{Key: "family_attitude", Prompt: "How does your family feel about gaming?", Kind: KindSingle, Required: true, Options: []string{"Supportive", "Neutral", "Disapproving"}},
		{Key: "plays_with_family", Prompt: "Do you play with family members?", Kind: KindBool},
	},
	Screen(SectionFutureGaming): {
		{Key: "next_purchase", Prompt: "What gear are you planning to buy next?", Kind: KindSingle, Required: true, Options: append(append([]string(nil), gearOptions...), "Nothing planned")},
		{Key: "vr_interest", Prompt: "Are you interested in VR gaming?", Kind: KindBool},
		{Key: "recommend_score", Prompt: "How likely are you to recommend Kreo to a friend (0-10)?", Kind: KindNumber, Min: 0, Max: 10},
		{Key: "wishlist", Prompt: "Anything you wish gaming brands made?", Kind: KindText},
	},
}

func init() {
	for _, variant := range []struct {
		screen Screen
		band   AgeBand
		male   bool
	}{
		{ScreenFamilyUnder18Male, AgeUnder18, true},
		{ScreenFamilyUnder18Female, AgeUnder18, false},
		{ScreenFamily18To24Male, Age18To24, true},
		{ScreenFamily18To24Female, Age18To24, false},
		{ScreenFamily25PlusMale, Age25Plus, true},
		{ScreenFamily25PlusFemale, Age25Plus, false},
	} {
		catalog[variant.screen] = familyQuestions(variant.band, variant.male)
	}
}

func familyQuestions(band AgeBand, male bool) []Question {
	questions := append([]Question(nil), catalog[Screen(SectionGamingFamily)]...)
	switch band {
	case AgeUnder18:
		questions = append(questions, Question{Key: "gaming_rules", Prompt: "Are there house rules about when you can play?", Kind: KindBool})
	case Age18To24:
		questions = append(questions, Question{Key: "gaming_vs_studies", Prompt: "Does your family see gaming as a distraction from studies or work?", Kind: KindSingle, Options: []string{"Yes", "Sometimes", "No"}})
	case Age25Plus:
		questions = append(questions, Question{Key: "plays_with_children", Prompt: "Do you play games with your children or younger relatives?", Kind: KindSingle, Options: []string{"Often", "Sometimes", "Never", "Not applicable"}})
	}
	if male {
		questions = append(questions, Question{Key: "gaming_with_siblings", Prompt: "Do you game with brothers or cousins?", Kind: KindBool})
	} else {
		questions = append(questions, Question{Key: "felt_unwelcome", Prompt: "Have you ever felt unwelcome in gaming spaces?", Kind: KindSingle, Options: []string{"Often", "Sometimes", "Never"}})
	}
	return questions
}

// Questions returns the question set rendered on screen.
func Questions(screen Screen) []Question {
	return append([]Question(nil), catalog[screen]...)
}

// ValidateAnswers checks raw input against the screen's questions and
// normalizes values: numbers become float64 and multi choices []string.
// Keys not asked on the screen are rejected.
func ValidateAnswers(screen Screen, raw Answers) (Answers, error) {
	questions, ok := catalog[screen]
	if !ok {
		return nil, fmt.Errorf("%w: unknown screen %q", apperrors.ErrInvalidInput, screen)
	}
	asked := make(map[string]Question, len(questions))
	for _, q := range questions {
		asked[q.Key] = q
	}
	for key := range raw {
		if _, ok := asked[key]; !ok {
			return nil, fmt.Errorf("%w: %q is not asked on %s", apperrors.ErrInvalidInput, key, screen)
		}
	}

	out := Answers{}
	for _, q := range questions {
		value, present := raw[q.Key]
		if !present || isBlank(value) {
			if q.Required {
				return nil, fmt.Errorf("%w: %q is required", apperrors.ErrInvalidInput, q.Prompt)
			}
			continue
		}
		normalized, err := normalizeAnswer(q, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidInput, q.Key, err)
		}
		out[q.Key] = normalized
	}
	return out, nil
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func normalizeAnswer(q Question, value any) (any, error) {
	switch q.Kind {
	case KindText:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected text")
		}
		return strings.TrimSpace(s), nil
	case KindNumber:
		n, err := toFloat(value)
		if err != nil {
			return nil, err
		}
		if q.Max > q.Min && (n < q.Min || n > q.Max) {
			return nil, fmt.Errorf("must be between %g and %g", q.Min, q.Max)
		}
		return n, nil
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected yes or no")
			}
			return b, nil
		}
		return nil, fmt.Errorf("expected yes or no")
	case KindSingle:
		s, ok := value.(string)
		if !ok || !slices.Contains(q.Options, s) {
			return nil, fmt.Errorf("%v is not an option", value)
		}
		return s, nil
	case KindMulti:
		var picked []string
		switch v := value.(type) {
		case []string:
			picked = v
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%v is not an option", item)
				}
				picked = append(picked, s)
			}
		default:
			return nil, fmt.Errorf("expected a list of options")
		}
		out := make([]string, 0, len(picked))
		for _, s := range picked {
			if !slices.Contains(q.Options, s) {
				return nil, fmt.Errorf("%q is not an option", s)
			}
			if !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported question kind %q", q.Kind)
}

func toFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number")
	}
	return f, nil
}

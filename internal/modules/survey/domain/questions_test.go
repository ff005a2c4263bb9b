package domain_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"kreosurvey/internal/modules/survey/domain"
	apperrors "kreosurvey/internal/platform/errors"
)

func TestEveryScreenHasQuestions(t *testing.T) {
	t.Parallel()
	screens := []domain.Screen{
		domain.ScreenDemographicsUnder18, domain.ScreenDemographics18To24, domain.ScreenDemographics25Plus,
		domain.ScreenFamilyUnder18Male, domain.ScreenFamilyUnder18Female,
		domain.ScreenFamily18To24Male, domain.ScreenFamily18To24Female,
		domain.ScreenFamily25PlusMale, domain.ScreenFamily25PlusFemale,
	}
	for _, s := range domain.MainOrder {
		screens = append(screens, domain.Screen(s))
	}
	for _, screen := range screens {
		if len(domain.Questions(screen)) == 0 {
			t.Fatalf("screen %s has no questions", screen)
		}
		if domain.Label(screen) == domain.GenericLabel {
			t.Fatalf("screen %s has no label", screen)
		}
	}
}

func TestValidateAnswersNormalizes(t *testing.T) {
	t.Parallel()
	got, err := domain.ValidateAnswers(domain.Screen(domain.SectionGamingHabits), domain.Answers{
		"hours_per_week":  "12",
		"peak_time":       "Late night",
		"creates_content": "true",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := domain.Answers{"hours_per_week": float64(12), "peak_time": "Late night", "creates_content": true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestValidateAnswersRejects(t *testing.T) {
	t.Parallel()
	screen := domain.Screen(domain.SectionGamingPreferences)
	cases := []domain.Answers{
		{"genres": []string{"FPS"}},
		{"platforms": []string{"PC"}, "genres": []string{"Chess"}},
		{"platforms": []string{"PC"}, "genres": []string{"FPS"}, "extra": "x"},
		{"platforms": "PC", "genres": []string{"FPS"}},
	}
	for _, answers := range cases {
		if _, err := domain.ValidateAnswers(screen, answers); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %v, got %v", answers, err)
		}
	}
	if _, err := domain.ValidateAnswers(domain.Screen(domain.SectionDemographics), domain.Answers{"age": "200", "gender": "Male"}); err == nil {
		t.Fatalf("expected out of range age to fail")
	}
}

func TestValidateAnswersRejectsNonFiniteNumbers(t *testing.T) {
	t.Parallel()
	demographics := domain.Screen(domain.SectionDemographics)
	for _, age := range []any{"NaN", "Inf", "-Inf", math.NaN(), math.Inf(1)} {
		if _, err := domain.ValidateAnswers(demographics, domain.Answers{"age": age, "gender": "Male"}); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("age %v: expected invalid input, got %v", age, err)
		}
	}
}

func TestDecodeResponsesRoundTrip(t *testing.T) {
	t.Parallel()
	in := domain.Responses{
		domain.SectionGamingPreferences: {"platforms": []string{"PC", "Mobile"}, "favorite_game": "Valorant"},
		domain.SectionGamingHabits:      {"hours_per_week": float64(20), "creates_content": false},
	}
	raw, err := in.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := domain.DecodeResponses(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %v vs %v", in, out)
	}
	if _, err := domain.DecodeResponses("{not json"); err == nil {
		t.Fatalf("expected corrupt payload to fail")
	}
}

package domain_test

import (
	"math/rand"
	"testing"

	"kreosurvey/internal/modules/survey/domain"
)

func TestSequencerStaysInBoundsForAnyWalk(t *testing.T) {
	t.Parallel()
	completed := 0
	seq := domain.NewSequencer(func() { completed++ })
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			seq.Advance()
		} else {
			seq.Retreat()
		}
		if seq.Index() < 0 || seq.Index() > len(domain.MainOrder)-1 {
			t.Fatalf("index %d out of bounds after step %d", seq.Index(), i)
		}
	}
}

func TestSequencerAdvanceAtLastFiresCompletionWithoutMoving(t *testing.T) {
	t.Parallel()
	completed := 0
	seq := domain.NewSequencer(func() { completed++ })
	for i := 0; i < len(domain.MainOrder)-1; i++ {
		seq.Advance()
	}
	if seq.Current() != domain.SectionFutureGaming {
		t.Fatalf("expected future_gaming, got %s", seq.Current())
	}
	if completed != 0 {
		t.Fatalf("completion must not fire before the last advance")
	}
	seq.Advance()
	seq.Advance()
	if seq.Current() != domain.SectionFutureGaming {
		t.Fatalf("advance past the end must not move, got %s", seq.Current())
	}
	if completed != 2 {
		t.Fatalf("expected completion hook on each final advance, got %d", completed)
	}
}

func TestSequencerRetreatClampsAtZero(t *testing.T) {
	t.Parallel()
	seq := domain.NewSequencer(nil)
	seq.Retreat()
	if seq.Index() != 0 {
		t.Fatalf("expected index 0, got %d", seq.Index())
	}
}

func TestSequencerJumpToIgnoresUnknownNames(t *testing.T) {
	t.Parallel()
	seq := domain.NewSequencer(nil)
	seq.JumpTo("gaming_habits")
	if seq.Current() != domain.SectionGamingHabits {
		t.Fatalf("expected gaming_habits, got %s", seq.Current())
	}
	seq.JumpTo("family_18_24_male")
	seq.JumpTo("nope")
	if seq.Current() != domain.SectionGamingHabits {
		t.Fatalf("invalid jump must be ignored, got %s", seq.Current())
	}
	seq.Reset()
	if seq.Index() != 0 {
		t.Fatalf("expected reset to first section")
	}
}

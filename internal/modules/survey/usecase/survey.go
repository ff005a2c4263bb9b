package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"kreosurvey/internal/modules/survey/domain"
	surveydto "kreosurvey/internal/modules/survey/dto"
	surveyin "kreosurvey/internal/modules/survey/port/in"
	"kreosurvey/internal/modules/survey/service"
	apperrors "kreosurvey/internal/platform/errors"
)

// Interactor is the respondent's survey session: the sequencer position,
// whether the demographics detail screen is showing, and the synchronizer
// that persists every answer.
type Interactor struct {
	mu        sync.Mutex
	sync      *service.Synchronizer
	seq       *domain.Sequencer
	detail    bool
	completed bool
	logger    *slog.Logger
}

func NewInteractor(sync *service.Synchronizer, logger *slog.Logger) surveyin.Usecase {
	i := &Interactor{sync: sync, logger: logger}
	i.seq = domain.NewSequencer(i.complete)
	return i
}

func (i *Interactor) Start(ctx context.Context) (surveydto.StartOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	snap, err := i.sync.Hydrate(ctx)
	if err != nil {
		return surveydto.StartOutput{}, err
	}
	i.seq.Reset()
	i.seq.JumpTo(string(snap.CurrentSection))
	i.detail = false
	i.completed = snap.Completed
	return surveydto.StartOutput{
		Screen:           i.screenLocked(),
		ShowResumePrompt: snap.NavigatedAway && !snap.Completed && len(snap.Responses) > 0,
	}, nil
}

func (i *Interactor) Resume(ctx context.Context) (surveydto.ScreenOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.sync.SetNavigatedAway(ctx, false); err != nil {
		return surveydto.ScreenOutput{}, err
	}
	return i.screenLocked(), nil
}

func (i *Interactor) StartOver(ctx context.Context) (surveydto.ScreenOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.sync.Reset(ctx); err != nil {
		return surveydto.ScreenOutput{}, err
	}
	i.seq.Reset()
	i.detail = false
	i.completed = false
	return i.screenLocked(), nil
}

func (i *Interactor) Screen(_ context.Context) (surveydto.ScreenOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.screenLocked(), nil
}

// Submit stores the answers of the current screen and moves on. The
// demographics section shows its age-specific detail screen before
// advancing.
func (i *Interactor) Submit(ctx context.Context, input surveydto.SubmitInput) (surveydto.ScreenOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.completed {
		return surveydto.ScreenOutput{}, fmt.Errorf("%w: survey already completed", apperrors.ErrInvalidInput)
	}
	section := i.seq.Current()
	responses := i.sync.Responses()
	screen := domain.ResolveScreen(section, responses[domain.SectionDemographics], i.detail)
	if input.Screen != "" && input.Screen != string(screen) {
		return surveydto.ScreenOutput{}, fmt.Errorf("%w: screen %s is no longer active", apperrors.ErrInvalidInput, input.Screen)
	}
	answers, err := domain.ValidateAnswers(screen, domain.Answers(input.Answers))
	if err != nil {
		return surveydto.ScreenOutput{}, err
	}

	data := mergeForScreen(section, screen, responses[section], answers)
	if err := i.sync.UpdateResponses(ctx, section, data); err != nil {
		return surveydto.ScreenOutput{}, err
	}

	if section == domain.SectionDemographics && !i.detail {
		if _, ok := domain.ResolveDemographicSubsection(data); ok {
			i.detail = true
			return i.screenLocked(), nil
		}
	}
	i.detail = false
	if err := i.moveLocked(ctx, i.seq.Advance); err != nil {
		return surveydto.ScreenOutput{}, err
	}
	return i.screenLocked(), nil
}

func (i *Interactor) Back(ctx context.Context) (surveydto.ScreenOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.seq.Current() == domain.SectionDemographics && i.detail {
		i.detail = false
		return i.screenLocked(), nil
	}
	if err := i.moveLocked(ctx, i.seq.Retreat); err != nil {
		return surveydto.ScreenOutput{}, err
	}
	if i.seq.Current() == domain.SectionDemographics {
		_, i.detail = domain.ResolveDemographicSubsection(i.sync.Responses()[domain.SectionDemographics])
	}
	return i.screenLocked(), nil
}

func (i *Interactor) JumpTo(ctx context.Context, section string) (surveydto.ScreenOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	before := i.seq.Index()
	i.seq.JumpTo(section)
	if i.seq.Index() != before {
		i.detail = false
		if err := i.checkpointLocked(ctx); err != nil {
			return surveydto.ScreenOutput{}, err
		}
	}
	return i.screenLocked(), nil
}

func (i *Interactor) SaveStatus(_ context.Context) surveydto.SaveStatusOutput {
	st := i.sync.Status()
	out := surveydto.SaveStatusOutput{IsSaving: st.IsSaving, LastSaved: st.LastSaved, SessionID: st.SessionID}
	if st.LastError != nil {
		out.LastError = st.LastError.Error()
	}
	return out
}

func (i *Interactor) Status(ctx context.Context) (surveydto.StatusOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	snap, err := i.sync.Hydrate(ctx)
	if err != nil {
		return surveydto.StatusOutput{}, err
	}
	out := surveydto.StatusOutput{
		SessionID:            snap.SessionID,
		CurrentSection:       string(snap.CurrentSection),
		CompletionPercentage: domain.CompletionPercentage(snap.Responses),
		NavigatedAway:        snap.NavigatedAway,
		Completed:            snap.Completed,
	}
	for _, section := range domain.MainOrder {
		if _, ok := snap.Responses[section]; ok {
			out.AnsweredSections = append(out.AnsweredSections, string(section))
		}
	}
	remote, ok, err := i.sync.Remote(ctx)
	if err != nil {
		i.logger.Warn("remote status unavailable", "error", err)
	} else if ok {
		out.Remote = &surveydto.RemoteStatusOutput{
			CompletionStatus:     remote.CompletionStatus,
			CompletionPercentage: remote.CompletionPercentage,
			CurrentSection:       remote.CurrentSection,
			LastUpdated:          remote.LastUpdated,
		}
	}
	return out, nil
}

// Leave flags an unfinished survey for the resume prompt and tears down the
// synchronizer.
func (i *Interactor) Leave(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	var err error
	if !i.completed && len(i.sync.Responses()) > 0 {
		err = i.sync.SetNavigatedAway(ctx, true)
	}
	i.sync.Close()
	return err
}

// complete runs from Sequencer.Advance on the last section, under i.mu.
func (i *Interactor) complete() {
	i.completed = true
	if err := i.sync.MarkCompleted(context.Background()); err != nil {
		i.logger.Warn("record completion locally", "error", err)
	}
}

func (i *Interactor) moveLocked(ctx context.Context, move func()) error {
	before := i.seq.Index()
	move()
	if i.seq.Index() == before {
		return nil
	}
	return i.checkpointLocked(ctx)
}

// checkpointLocked mirrors the new section and pushes in the background.
func (i *Interactor) checkpointLocked(ctx context.Context) error {
	if err := i.sync.SetCurrentSection(ctx, i.seq.Current()); err != nil {
		return err
	}
	i.sync.PushAsync()
	return nil
}

func (i *Interactor) screenLocked() surveydto.ScreenOutput {
	responses := i.sync.Responses()
	section := i.seq.Current()
	screen := domain.ResolveScreen(section, responses[domain.SectionDemographics], i.detail)
	progress := i.seq.Progress(screen)

	questions := domain.Questions(screen)
	qs := make([]surveydto.QuestionOutput, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, surveydto.QuestionOutput{Key: q.Key, Prompt: q.Prompt, Kind: string(q.Kind), Options: q.Options, Required: q.Required})
	}

	sections := make([]surveydto.SectionOutput, 0, len(domain.MainOrder))
	for _, s := range domain.MainOrder {
		_, answered := responses[s]
		sections = append(sections, surveydto.SectionOutput{Name: string(s), Label: domain.Label(domain.Screen(s)), Answered: answered})
	}

	answers := map[string]any{}
	for k, v := range responses[section] {
		answers[k] = v
	}
	return surveydto.ScreenOutput{
		Section:   string(section),
		Screen:    string(screen),
		Title:     progress.Label,
		Questions: qs,
		Answers:   answers,
		Progress: surveydto.ProgressOutput{
			Step:     progress.Step,
			Total:    progress.Total,
			Label:    progress.Label,
			Fraction: progress.Fraction(),
		},
		Sections:             sections,
		CompletionPercentage: domain.CompletionPercentage(responses),
		Completed:            i.completed,
	}
}

// mergeForScreen builds the replacement answer map for section.
func mergeForScreen(section domain.Section, screen domain.Screen, existing, answers domain.Answers) domain.Answers {
	switch section {
	case domain.SectionDemographics:
		out := domain.Answers{}
		if screen == domain.Screen(domain.SectionDemographics) {
			for k, v := range answers {
				out[k] = v
			}
			// Keep detail answers only while they still match the age band.
			if sub, ok := domain.ResolveDemographicSubsection(answers); ok {
				for _, q := range domain.Questions(sub) {
					if v, ok := existing[q.Key]; ok {
						out[q.Key] = v
					}
				}
			}
			return out
		}
		for k, v := range existing {
			out[k] = v
		}
		for k, v := range answers {
			out[k] = v
		}
		return out
	case domain.SectionGamingFamily:
		out := answers.Clone()
		out[domain.FamilyScreenKey] = string(screen)
		return out
	default:
		return answers.Clone()
	}
}

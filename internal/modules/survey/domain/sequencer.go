package domain

// Sequencer walks MainOrder. Its only state is the current index, which
// always stays within bounds.
type Sequencer struct {
	index      int
	onComplete func()
}

// NewSequencer returns a sequencer at the first section. onComplete fires
// when Advance is called on the last section.
func NewSequencer(onComplete func()) *Sequencer {
	return &Sequencer{onComplete: onComplete}
}

func (s *Sequencer) Index() int {
	return s.index
}

func (s *Sequencer) Current() Section {
	return MainOrder[s.index]
}

func (s *Sequencer) IsLast() bool {
	return s.index == len(MainOrder)-1
}

// Advance moves to the next section. On the last section it stays put and
// fires the completion hook instead.
func (s *Sequencer) Advance() {
	if s.IsLast() {
		if s.onComplete != nil {
			s.onComplete()
		}
		return
	}
	s.index++
}

func (s *Sequencer) Retreat() {
	if s.index > 0 {
		s.index--
	}
}

// JumpTo moves to the named main section. Unknown names are ignored.
func (s *Sequencer) JumpTo(name string) {
	if i, ok := IndexOf(Section(name)); ok {
		s.index = i
	}
}

func (s *Sequencer) Reset() {
	s.index = 0
}

// Progress reports the step for screen, which may be a conditional
// sub-section of the current main section.
func (s *Sequencer) Progress(screen Screen) Progress {
	return ComputeProgress(s.index, screen)
}

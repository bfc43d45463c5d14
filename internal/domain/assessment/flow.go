package assessment

import (
	"errors"
	"fmt"
)

// Stage is where a user is in the intake flow.
type Stage int

const (
	StageIntro Stage = iota
	StageForm
	StageSubmitting
	StageResults
)

var stageNames = [...]string{"intro", "form", "submitting", "results"}

func (s Stage) String() string {
	if s < StageIntro || s > StageResults {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Event drives a Stage transition.
type Event int

const (
	EventStart Event = iota
	EventSubmit
	EventSucceed
	EventFail
	EventReset
)

var eventNames = [...]string{"start", "submit", "succeed", "fail", "reset"}

func (e Event) String() string {
	if e < EventStart || e > EventReset {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

var ErrInvalidTransition = errors.New("invalid stage transition")

// transitions lists every allowed move. A failed prediction returns to the
// form; a reset from results starts a new assessment on the form.
var transitions = map[Stage]map[Event]Stage{
	StageIntro:      {EventStart: StageForm},
	StageForm:       {EventSubmit: StageSubmitting},
	StageSubmitting: {EventSucceed: StageResults, EventFail: StageForm},
	StageResults:    {EventReset: StageForm},
}

// Next returns the stage reached from s on e. The stage is unchanged when the
// transition is not allowed.
func (s Stage) Next(e Event) (Stage, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// Flow tracks a single pass through the stages and keeps the last score.
type Flow struct {
	stage Stage
	score float64
	err   error
}

func NewFlow() *Flow {
	return &Flow{stage: StageIntro}
}

func (f *Flow) Stage() Stage { return f.stage }

// Score is the last successful score. Zero before the first result.
func (f *Flow) Score() float64 { return f.score }

// Err is the failure of the last submission, cleared on the next one.
func (f *Flow) Err() error { return f.err }

func (f *Flow) Fire(e Event) error {
	next, err := f.stage.Next(e)
	if err != nil {
		return err
	}
	f.stage = next
	return nil
}

func (f *Flow) Start() error { return f.Fire(EventStart) }

func (f *Flow) Submit() error {
	if err := f.Fire(EventSubmit); err != nil {
		return err
	}
	f.err = nil
	return nil
}

func (f *Flow) Succeed(score float64) error {
	if err := f.Fire(EventSucceed); err != nil {
		return err
	}
	f.score = score
	return nil
}

func (f *Flow) Fail(cause error) error {
	if err := f.Fire(EventFail); err != nil {
		return err
	}
	f.err = cause
	return nil
}

func (f *Flow) Reset() error { return f.Fire(EventReset) }

package weather

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Stage is the state a run has reached.
type Stage string

const (
	StagePending     Stage = "pending"
	StageFetched     Stage = "fetched"
	StageTransformed Stage = "transformed"
	StageLoaded      Stage = "loaded"
	StageFailed      Stage = "failed"
)

// Step names the part of a run that failed.
type Step string

const (
	StepExtract   Step = "extract"
	StepTransform Step = "transform"
	StepLoad      Step = "load"
)

// Run describes one execution of the pipeline.
type Run struct {
	ID         string         `json:"id"`
	Stage      Stage          `json:"stage"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Record     *WeatherRecord `json:"record,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Pipeline runs extract, transform and load in sequence for one location.
type Pipeline struct {
	source   Getter
	dest     Destination
	location Location
	log      logrus.FieldLogger
}

// NewPipeline creates a new Pipeline.
func NewPipeline(source Getter, dest Destination, location Location, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		source:   source,
		dest:     dest,
		location: location,
		log:      log.WithField("component", "pipeline"),
	}
}

// Location returns the location this pipeline observes.
func (p *Pipeline) Location() Location {
	return p.location
}

// Run executes a full run. Any failure stops the run at that step and is
// returned as a *StageError; nothing is written unless every step before
// the insert succeeded.
func (p *Pipeline) Run(ctx context.Context) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Stage:     StagePending,
		StartedAt: time.Now().UTC(),
	}
	entry := p.log.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"location": p.location.Key(),
	})

	fail := func(step Step, err error) (Run, error) {
		stageErr := &StageError{Step: step, Err: err}
		run.Stage = StageFailed
		run.FinishedAt = time.Now().UTC()
		run.Error = stageErr.Error()
		entry.WithFields(logrus.Fields{
			"stage": run.Stage,
			"step":  step,
		}).WithError(err).Error("run failed")
		return run, stageErr
	}

	raw, err := Fetch(ctx, p.source, p.location)
	if err != nil {
		return fail(StepExtract, err)
	}
	run.Stage = StageFetched
	entry.WithField("stage", run.Stage).Debug("observation fetched")

	record, err := Transform(raw, p.location)
	if err != nil {
		return fail(StepTransform, err)
	}
	run.Stage = StageTransformed
	entry.WithField("stage", run.Stage).Debugf("observation transformed: %+v", record)

	if err := p.load(ctx, record); err != nil {
		return fail(StepLoad, err)
	}
	run.Stage = StageLoaded
	run.Record = &record
	run.FinishedAt = time.Now().UTC()
	entry.WithField("stage", run.Stage).Info("run completed")

	return run, nil
}

func (p *Pipeline) load(ctx context.Context, record WeatherRecord) error {
	loader, err := p.dest.Acquire(ctx)
	if err != nil {
		return asPersistenceError("acquire connection", err)
	}
	defer loader.Release()

	if err := loader.EnsureSchema(ctx); err != nil {
		return asPersistenceError("ensure schema", err)
	}
	if err := loader.Load(ctx, record); err != nil {
		return asPersistenceError("insert", err)
	}
	return nil
}

func asPersistenceError(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

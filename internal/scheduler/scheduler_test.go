package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-predictor/internal/config"
	"github.com/yourusername/keiba-predictor/internal/datasource"
	"github.com/yourusername/keiba-predictor/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeSource struct {
	cards []datasource.RaceCard
	err   error
}

func (f *fakeSource) FetchRaceCards(ctx context.Context, date time.Time) ([]datasource.RaceCard, error) {
	return f.cards, f.err
}

func (f *fakeSource) FetchRaceCard(ctx context.Context, sourceID string) (*datasource.RaceCard, error) {
	return nil, datasource.ErrNotFound
}

func (f *fakeSource) Name() string    { return "fake" }
func (f *fakeSource) IsEnabled() bool { return true }

type fakePredictor struct {
	calls   int
	failFor uuid.UUID
}

func (f *fakePredictor) Predict(ctx context.Context, entries []models.EntryView, race models.RaceContext) (*models.PredictionResult, error) {
	f.calls++
	if race.RaceID == f.failFor {
		return nil, errors.New("prediction failed")
	}
	return &models.PredictionResult{ID: uuid.New(), RaceID: race.RaceID}, nil
}

func testCard(name string) datasource.RaceCard {
	return datasource.RaceCard{
		SourceID: name,
		Race: models.RaceContext{
			RaceID:     uuid.New(),
			Name:       name,
			Venue:      "中山",
			CourseType: models.CourseTurf,
			Distance:   2000,
		},
		Entries: []models.EntryView{
			{HorseID: uuid.New(), HorseName: "テスト", HorseNumber: 1, RunningStyle: models.StyleFront},
		},
	}
}

func TestRefreshJobRun(t *testing.T) {
	source := &fakeSource{cards: []datasource.RaceCard{testCard("9R"), testCard("10R")}}
	pred := &fakePredictor{}

	job := NewRefreshJob(source, pred, nil, nil, quietLogger())

	err := job.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, pred.calls)
}

func TestRefreshJobSkipsFailedRace(t *testing.T) {
	bad := testCard("9R")
	source := &fakeSource{cards: []datasource.RaceCard{bad, testCard("10R")}}
	pred := &fakePredictor{failFor: bad.Race.RaceID}

	job := NewRefreshJob(source, pred, nil, nil, quietLogger())

	// One failure out of two is not fatal for the pass.
	err := job.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, pred.calls)
}

func TestRefreshJobAllFailed(t *testing.T) {
	bad := testCard("9R")
	source := &fakeSource{cards: []datasource.RaceCard{bad}}
	pred := &fakePredictor{failFor: bad.Race.RaceID}

	job := NewRefreshJob(source, pred, nil, nil, quietLogger())

	err := job.Run(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestRefreshJobFetchError(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream down")}
	job := NewRefreshJob(source, &fakePredictor{}, nil, nil, quietLogger())

	err := job.Run(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestSchedulerLifecycle(t *testing.T) {
	job := NewRefreshJob(&fakeSource{}, &fakePredictor{}, nil, nil, quietLogger())

	sched, err := NewScheduler(config.SchedulerConfig{Timezone: "Asia/Tokyo"}, job, quietLogger())
	require.NoError(t, err)

	// Cannot start with nothing scheduled.
	assert.Error(t, sched.Start())

	require.NoError(t, sched.ScheduleRefresh("*/15 9-17 * * 6,0"))
	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.False(t, sched.GetNextRun().IsZero())
	assert.Len(t, sched.Entries(), 1)

	// Double start and scheduling while running are rejected.
	assert.Error(t, sched.Start())
	assert.Error(t, sched.ScheduleRefresh("@hourly"))

	require.NoError(t, sched.Stop())
	assert.False(t, sched.IsRunning())
}

func TestSchedulerInvalidCron(t *testing.T) {
	job := NewRefreshJob(&fakeSource{}, &fakePredictor{}, nil, nil, quietLogger())

	sched, err := NewScheduler(config.SchedulerConfig{}, job, quietLogger())
	require.NoError(t, err)

	assert.Error(t, sched.ScheduleRefresh("not a cron"))
}

func TestSchedulerInvalidTimezone(t *testing.T) {
	_, err := NewScheduler(config.SchedulerConfig{Timezone: "Mars/Olympus"}, nil, quietLogger())
	assert.Error(t, err)
}

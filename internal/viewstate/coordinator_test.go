package viewstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiology-portal/internal/models"
)

type listerFunc func(ctx context.Context) ([]*models.Exam, error)

func (f listerFunc) ListExams(ctx context.Context) ([]*models.Exam, error) {
	return f(ctx)
}

func fixture() []*models.Exam {
	day := func(d int) time.Time { return time.Date(2025, 9, d, 9, 0, 0, 0, time.UTC) }
	return []*models.Exam{
		{ID: "1", PatientName: "Jean Dupont", ExamID: "25091200872_01", Date: day(12), Category: models.CategoryInbox},
		{ID: "2", PatientName: "Marie Curie", ExamID: "25091200456_03", Date: day(11), Category: models.CategoryInbox},
		{ID: "3", PatientName: "Sophie Martin", ExamID: "25091200234_04", Date: day(10), Category: models.CategoryPending},
	}
}

func newTestCoordinator() *Coordinator {
	exams := fixture()
	return NewCoordinator(listerFunc(func(ctx context.Context) ([]*models.Exam, error) {
		return exams, nil
	}), zerolog.Nop())
}

func ids(exams []*models.Exam) []string {
	out := []string{}
	for _, e := range exams {
		out = append(out, e.ID)
	}
	return out
}

func TestCoordinator_DispatchPublishes(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()

	var got []Snapshot
	cancel := c.Subscribe(func(s Snapshot) { got = append(got, s) })

	snap, err := c.Dispatch(ctx, Event{Field: FieldQuery, Value: "curie"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(snap.Exams))
	assert.Equal(t, 2, snap.Counts[models.CategoryInbox])
	assert.Equal(t, 0, snap.Counts[models.CategoryCompleted])

	_, err = c.Dispatch(ctx, Event{Field: FieldCategory, Value: "pending"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"3"}, ids(got[1].Exams))
	assert.Equal(t, "", got[1].State.Criteria().Query)

	cancel()
	cancel()
	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCoordinator_InvalidEventKeepsState(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()

	published := 0
	c.Subscribe(func(Snapshot) { published++ })

	_, err := c.Dispatch(ctx, Event{Field: FieldQuery, Value: "dupont"}, Event{Field: FieldCategory, Value: "archive"})
	assert.Error(t, err)
	assert.Equal(t, Initial(), c.State())
	assert.Equal(t, 0, published)
}

func TestCoordinator_SourceError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCoordinator(listerFunc(func(ctx context.Context) ([]*models.Exam, error) {
		return nil, boom
	}), zerolog.Nop())

	_, err := c.Dispatch(context.Background(), Event{Field: FieldQuery, Value: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Initial(), c.State())
}

func TestCoordinator_SubscribeChanKeepsLatest(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()

	ch, cancel := c.SubscribeChan(1)
	for _, q := range []string{"dupont", "curie", "martin"} {
		_, err := c.Dispatch(ctx, Event{Field: FieldQuery, Value: q})
		require.NoError(t, err)
	}

	snap := <-ch
	assert.Equal(t, "martin", snap.State.Criteria().Query)

	cancel()
	_, open := <-ch
	assert.False(t, open)

	_, err := c.Dispatch(ctx, Event{Field: FieldQuery, Value: "after"})
	assert.NoError(t, err)
}

func TestCoordinator_ConcurrentDispatch(t *testing.T) {
	c := newTestCoordinator()
	ctx := context.Background()

	var mu sync.Mutex
	var seen []string
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s.State.Criteria().Query)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for _, q := range []string{"a", "b", "c", "d", "e", "f"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Dispatch(ctx, Event{Field: FieldQuery, Value: q})
		}()
	}
	wg.Wait()

	require.Len(t, seen, 6)
	// Last writer wins: the stored state is the last one published.
	assert.Equal(t, seen[len(seen)-1], c.State().Criteria().Query)
	assert.Equal(t, c.State(), c.Last().State)
}

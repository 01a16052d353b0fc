package board

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
)

func f64(v float64) *float64 { return &v }
func boolp(v bool) *bool { return &v }
func strp(v string) *string { return &v }

type upstreamErr struct{ msg string }

func (e upstreamErr) Error() string { return "upstream: " + e.msg }
func (e upstreamErr) UpstreamMessage() string { return e.msg }

func names(cs []entity.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func loadedBoard(t *testing.T) *Board {
	t.Helper()
	b := New()
	b.Load([]byte(`{"result": [
		{"name": "Ada", "score": 9, "experience": 5, "email": "xxx"},
		{"name": "Bo", "score": 3, "experience": 12, "email": "bo@x.com"}
	]}`))
	return b
}

func TestVisible_ExampleScenario(t *testing.T) {
	b := loadedBoard(t)
	b.SetFilter(FilterPatch{
		ScoreRange:      &RangePatch{Lo: f64(5), Hi: f64(10)},
		ExperienceRange: &RangePatch{Lo: f64(0), Hi: f64(35)},
		RequireEmail:    boolp(false),
	})

	visible := b.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Ada", visible[0].Name)
	assert.Equal(t, entity.NoEmail, visible[0].Email)

	b.SetFilter(FilterPatch{RequireEmail: boolp(true)})
	assert.Empty(t, b.Visible())
}

func TestVisible_DefaultsExcludeUnscored(t *testing.T) {
	b := New()
	b.Load([]byte(`[{"name": "NoScore"}, {"name": "Scored", "score": 1}]`))

	assert.Equal(t, []string{"Scored"}, names(b.Visible()))
}

func TestVisible_StableSubset(t *testing.T) {
	b := New()
	b.Load([]byte(`[
		{"name": "A", "score": 8, "experience": 1, "justification": "go backend"},
		{"name": "B", "score": 2, "experience": 4},
		{"name": "C", "score": 10, "experience": 30, "email": "c@corp.io", "phone": "1"},
		{"name": "D", "score": 6, "experience": 7, "justification": "GO and rust"},
		{"name": "E", "score": 9, "experience": 40}
	]`))

	all := b.Candidates()
	criteria := []FilterPatch{
		{},
		{SearchText: strp("go")},
		{ScoreRange: &RangePatch{Lo: f64(6)}},
		{ExperienceRange: &RangePatch{Hi: f64(10)}},
		{RequirePhone: boolp(true)},
	}

	for _, p := range criteria {
		b.SetFilter(p)
		visible := b.Visible()

		// подмножество в исходном порядке
		pos := 0
		for _, v := range visible {
			for pos < len(all) && all[pos].CandidateID != v.CandidateID {
				pos++
			}
			require.Less(t, pos, len(all), "видимый кандидат %s не найден в исходном порядке", v.Name)
			pos++
		}
	}
}

func TestVisible_SearchIsCaseInsensitiveOr(t *testing.T) {
	b := New()
	b.Load([]byte(`[
		{"name": "Go Gopher", "score": 5},
		{"name": "X", "email": "golang@corp.io", "score": 5},
		{"name": "Y", "justification": "Knows GO", "score": 5},
		{"name": "Z", "score": 5}
	]`))

	b.SetFilter(FilterPatch{SearchText: strp("gO")})
	assert.Equal(t, []string{"Go Gopher", "X", "Y"}, names(b.Visible()))
}

func TestVisible_RequireContacts(t *testing.T) {
	b := New()
	b.Load([]byte(`[
		{"name": "Both", "score": 5, "email": "a@b.c", "phone": "1"},
		{"name": "MailOnly", "score": 5, "email": "a@b.c", "phone": "xxx"},
		{"name": "PhoneOnly", "score": 5, "phone": "2"},
		{"name": "None", "score": 5}
	]`))

	b.SetFilter(FilterPatch{RequireEmail: boolp(true)})
	assert.Equal(t, []string{"Both", "MailOnly"}, names(b.Visible()))

	b.SetFilter(FilterPatch{RequireEmail: boolp(false), RequirePhone: boolp(true)})
	assert.Equal(t, []string{"Both", "PhoneOnly"}, names(b.Visible()))
}

func TestSetFilter_Idempotent(t *testing.T) {
	b := loadedBoard(t)
	p := FilterPatch{SearchText: strp("a"), ScoreRange: &RangePatch{Lo: f64(2), Hi: f64(9)}}

	b.SetFilter(p)
	once := b.Visible()
	b.SetFilter(p)
	assert.Equal(t, once, b.Visible())
}

func TestSetFilter_ClampsRanges(t *testing.T) {
	b := New()
	got := b.SetFilter(FilterPatch{
		ScoreRange:      &RangePatch{Lo: f64(-5), Hi: f64(99)},
		ExperienceRange: &RangePatch{Lo: f64(50)},
	})

	assert.Equal(t, valueobject.Range{Lo: 1, Hi: 10}, got.ScoreRange)
	assert.Equal(t, valueobject.Range{Lo: 35, Hi: 35}, got.ExperienceRange)
	assert.Equal(t, got, b.Filter())
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	b := loadedBoard(t)
	_, err := b.Shortlist(context.Background(), "1", func(context.Context, entity.Candidate) error { return nil })
	require.NoError(t, err)

	b.Load([]byte(`[{"name": "Fresh", "score": 5}]`))

	all := b.Candidates()
	require.Len(t, all, 1)
	assert.Equal(t, "Fresh", all[0].Name)
	assert.Equal(t, valueobject.ShortlistNotSubmitted, all[0].ShortlistStatus)
	assert.Empty(t, b.CaseID())
}

func TestShortlist_Success(t *testing.T) {
	b := loadedBoard(t)
	var calls int32

	res, err := b.Shortlist(context.Background(), "1", func(_ context.Context, c entity.Candidate) error {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, valueobject.ShortlistSubmitting, c.ShortlistStatus)
		return nil
	})

	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, valueobject.ShortlistSubmitted, res.Candidate.ShortlistStatus)

	again, err := b.Shortlist(context.Background(), "1", func(context.Context, entity.Candidate) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Equal(t, SkipAlreadySubmitted, again.Reason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestShortlist_FailureThenRetry(t *testing.T) {
	b := loadedBoard(t)

	_, err := b.Shortlist(context.Background(), "2", func(context.Context, entity.Candidate) error {
		return upstreamErr{msg: "Invalid source"}
	})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "Invalid source", subErr.Message)

	c, err := b.Candidate("2")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ShortlistFailed, c.ShortlistStatus)
	assert.Equal(t, "Invalid source", c.LastError)

	other, _ := b.Candidate("1")
	assert.Equal(t, valueobject.ShortlistNotSubmitted, other.ShortlistStatus)

	res, err := b.Shortlist(context.Background(), "2", func(context.Context, entity.Candidate) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, valueobject.ShortlistSubmitted, res.Candidate.ShortlistStatus)
}

func TestShortlist_GenericMessage(t *testing.T) {
	b := loadedBoard(t)

	_, err := b.Shortlist(context.Background(), "1", func(context.Context, entity.Candidate) error {
		return errors.New("dial tcp: connection refused")
	})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, GenericShortlistFailure, subErr.Message)
}

func TestShortlist_PanicBecomesFailure(t *testing.T) {
	b := loadedBoard(t)

	_, err := b.Shortlist(context.Background(), "1", func(context.Context, entity.Candidate) error {
		panic("boom")
	})

	require.Error(t, err)
	c, _ := b.Candidate("1")
	assert.Equal(t, valueobject.ShortlistFailed, c.ShortlistStatus)
}

func TestShortlist_UnknownCandidate(t *testing.T) {
	b := loadedBoard(t)
	_, err := b.Shortlist(context.Background(), "404", func(context.Context, entity.Candidate) error { return nil })
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestShortlist_NoDuplicateSubmission(t *testing.T) {
	b := loadedBoard(t)
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32

	submit := func(context.Context, entity.Candidate) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := b.Shortlist(context.Background(), "1", submit)
		assert.NoError(t, err)
	}()

	<-started
	res, err := b.Shortlist(context.Background(), "1", submit)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, SkipInFlight, res.Reason)

	// пока идёт отправка, доска отвечает на чтение и фильтрацию
	b.SetFilter(FilterPatch{SearchText: strp("bo")})
	assert.Len(t, b.Visible(), 0)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	c, _ := b.Candidate("1")
	assert.Equal(t, valueobject.ShortlistSubmitted, c.ShortlistStatus)
}

func TestShortlist_DifferentCandidatesAreIndependent(t *testing.T) {
	b := loadedBoard(t)
	release := make(chan struct{})
	inFlight := make(chan struct{}, 2)

	submit := func(context.Context, entity.Candidate) error {
		inFlight <- struct{}{}
		<-release
		return nil
	}

	var wg sync.WaitGroup
	for _, id := range []string{"1", "2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := b.Shortlist(context.Background(), id, submit)
			assert.NoError(t, err)
		}(id)
	}

	// обе отправки должны оказаться в полёте одновременно
	for i := 0; i < 2; i++ {
		select {
		case <-inFlight:
		case <-time.After(2 * time.Second):
			t.Fatal("отправки не идут параллельно")
		}
	}
	close(release)
	wg.Wait()

	for _, c := range b.Candidates() {
		assert.Equal(t, valueobject.ShortlistSubmitted, c.ShortlistStatus)
	}
}

func TestShortlist_ObserverSeesTransitions(t *testing.T) {
	b := loadedBoard(t)
	var mu sync.Mutex
	var seen []valueobject.ShortlistStatus
	b.OnStatusChange(func(c entity.Candidate) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c.ShortlistStatus)
	})

	_, err := b.Shortlist(context.Background(), "1", func(context.Context, entity.Candidate) error {
		return upstreamErr{msg: "nope"}
	})
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []valueobject.ShortlistStatus{valueobject.ShortlistSubmitting, valueobject.ShortlistFailed}, seen)
}

func TestShortlist_ReloadDuringSubmission(t *testing.T) {
	b := loadedBoard(t)
	release := make(chan struct{})
	started := make(chan struct{})

	done := make(chan ShortlistResult, 1)
	go func() {
		res, _ := b.Shortlist(context.Background(), "1", func(context.Context, entity.Candidate) error {
			close(started)
			<-release
			return nil
		})
		done <- res
	}()

	<-started
	b.Load([]byte(`[{"name": "Next", "score": 5}]`))
	close(release)
	res := <-done

	assert.Equal(t, valueobject.ShortlistSubmitted, res.Candidate.ShortlistStatus)
	c, err := b.Candidate("1")
	require.NoError(t, err)
	assert.Equal(t, "Next", c.Name)
	assert.Equal(t, valueobject.ShortlistNotSubmitted, c.ShortlistStatus)
}

func TestSnapshot_Counts(t *testing.T) {
	b := loadedBoard(t)
	b.SetFilter(FilterPatch{ScoreRange: &RangePatch{Lo: f64(5)}})

	view := b.Snapshot()
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Shown)
	assert.Equal(t, []string{"Ada"}, names(view.Candidates))
}

func TestRegistry_PerSession(t *testing.T) {
	r := NewRegistry()
	var created []string
	r.OnCreate(func(id string, _ *Board) { created = append(created, id) })

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))

	r.Reset("a")
	assert.NotSame(t, a, r.Get("a"))
	assert.Equal(t, []string{"a", "b", "a"}, created)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_EvictsIdleBoards(t *testing.T) {
	r := NewRegistry()
	idle := r.Get("idle")
	r.Get("active")

	now := time.Now()
	assert.Zero(t, r.evictIdle(now.Add(30*time.Minute), time.Hour))
	assert.Equal(t, 2, r.Len())

	// к доске "idle" не обращались два часа
	r.mu.Lock()
	r.boards["idle"].lastSeen = now.Add(-2 * time.Hour)
	r.mu.Unlock()

	assert.Equal(t, 1, r.evictIdle(now, time.Hour))
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, idle, r.Get("idle"))
}

func TestRegistry_RunEvictionStopsWithContext(t *testing.T) {
	r := NewRegistry()
	r.Get("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunEviction(ctx, time.Nanosecond, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEviction did not stop after cancel")
	}
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/http/middleware"
	"github.com/ignatzorin/talent-sift/internal/service"
	"github.com/ignatzorin/talent-sift/internal/session"
	"github.com/ignatzorin/talent-sift/internal/shortlist"
)

const testSessionID = "s-1"

const rankingPayload = `{"id":"CS1","exe_name":"Go","result":[
	{"candidateId":"1","name":"Ada","score":9,"experience":6,"email":"ada@x.io","phone":"555"},
	{"candidateId":"2","name":"Bob","score":3,"experience":1,"email":"xxx"}
]}`

type stubTarget struct {
	mu  sync.Mutex
	got []entity.Submission
	err error
}

func (s *stubTarget) Submit(_ context.Context, sub entity.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, sub)
	return s.err
}

func (s *stubTarget) submissions() []entity.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Submission(nil), s.got...)
}

// withSession подставляет сессию вместо SessionMiddleware.
func withSession(sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextSessionIDKey, sessionID)
		c.Next()
	}
}

func newMemoryStore(t *testing.T) *session.MemoryStore {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return session.NewMemoryStore(ctx, time.Hour)
}

func newShortlists(t *testing.T, boards *board.Registry, store session.Store, targets map[string]shortlist.Target) *service.ShortlistService {
	t.Helper()
	return service.NewShortlistService(boards, store, shortlist.NewDispatcher(targets, nil))
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

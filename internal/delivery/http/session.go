package http

import (
	"context"
	"sync"
	"time"

	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/store"
	"github.com/forkandfind/client/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCookie names the cookie carrying the browser session id
const SessionCookie = "forkandfind_session"

// DefaultSessionTTL is how long an idle browser session is kept
const DefaultSessionTTL = 24 * time.Hour

// HomepageFactory builds the homepage of a new browser session
type HomepageFactory func(prefs domain.PreferenceStore, sentinel usecase.ViewportSentinel) *usecase.Homepage

// session is the homepage state of one browser
type session struct {
	id       string
	home     *usecase.Homepage
	sentinel *usecase.Sentinel
	started  sync.Once
}

// start runs fn once per session, before anything else touches the list
func (s *session) start(fn func()) {
	s.started.Do(fn)
}

// SessionManager maps session cookies to homepages kept in the TTL cache.
// Preferences are scoped per session id, so a sqlite store restores the last
// category even after the in-memory session expired.
type SessionManager struct {
	cache   domain.CacheRepository
	prefs   domain.PreferenceStore
	newHome HomepageFactory
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSessionManager creates a session manager
func NewSessionManager(
	cache domain.CacheRepository,
	prefs domain.PreferenceStore,
	newHome HomepageFactory,
	ttl time.Duration,
	logger *zap.Logger,
) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		cache:   cache,
		prefs:   prefs,
		newHome: newHome,
		ttl:     ttl,
		logger:  logger.Named("session"),
	}
}

// resolve returns the session of the request, creating one and setting the
// cookie when the request has none or it expired.
func (m *SessionManager) resolve(c *gin.Context) *session {
	ctx := c.Request.Context()

	id, err := c.Cookie(SessionCookie)
	if err == nil {
		_, err = uuid.Parse(id)
	}
	if err != nil {
		id = uuid.NewString()
	} else if s, ok := m.lookup(ctx, id); ok {
		m.touch(ctx, s)
		return s
	}

	sentinel := &usecase.Sentinel{}
	s := &session{
		id:       id,
		home:     m.newHome(store.WithPrefix(m.prefs, "session:"+id), sentinel),
		sentinel: sentinel,
	}
	m.touch(ctx, s)
	c.SetCookie(SessionCookie, id, int(m.ttl.Seconds()), "/", "", false, true)

	m.logger.Debug("session created", zap.String("session", id))
	return s
}

func (m *SessionManager) lookup(ctx context.Context, id string) (*session, bool) {
	v, err := m.cache.Get(ctx, m.cacheKey(id))
	if err != nil {
		return nil, false
	}
	s, ok := v.(*session)
	return s, ok
}

// touch stores the session again so its TTL restarts
func (m *SessionManager) touch(ctx context.Context, s *session) {
	if err := m.cache.Set(ctx, m.cacheKey(s.id), s, m.ttl); err != nil {
		m.logger.Warn("failed to store session", zap.String("session", s.id), zap.Error(err))
	}
}

func (m *SessionManager) cacheKey(id string) string {
	return "session:" + id
}

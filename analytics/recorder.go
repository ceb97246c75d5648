package analytics

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionName is the cookie session holding the visitor's session ID.
const SessionName = "visitor"

const sessionKey = "sid"

// Recorder turns successful page responses into stored visits.
type Recorder struct {
	store    *Store
	salt     string
	siteHost string
	logger   *zap.Logger
	now      func() time.Time
}

// NewRecorder loads the store's salt and returns a Recorder. siteHost is used
// to drop internal referrers.
func NewRecorder(store *Store, siteHost string, logger *zap.Logger) (*Recorder, error) {
	salt, err := store.Salt()
	if err != nil {
		return nil, err
	}
	return &Recorder{
		store:    store,
		salt:     salt,
		siteHost: siteHost,
		logger:   logger.Named("analytics"),
		now:      time.Now,
	}, nil
}

// Middleware records GET requests that produced a 200 HTML page. It expects
// the echo-contrib session middleware to run before it.
func (r *Recorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet || !trackable(req.URL.Path) {
				return next(c)
			}

			ua := req.UserAgent()
			bot := BotName(ua)

			// the cookie must be written before the handler commits the response
			var sid string
			if bot == "" {
				sid = r.sessionID(c)
			}

			err := next(c)

			res := c.Response()
			if err != nil || res.Status != http.StatusOK ||
				!strings.HasPrefix(res.Header().Get(echo.HeaderContentType), echo.MIMETextHTML) {
				return err
			}

			if bot != "" {
				r.recordBot(c, bot, ua)
			} else {
				r.recordVisit(c, sid, ua)
			}
			return nil
		}
	}
}

func trackable(path string) bool {
	return !strings.HasPrefix(path, "/public/") &&
		!strings.HasPrefix(path, "/api/") &&
		path != "/favicon.ico" && path != "/favicon.svg"
}

func (r *Recorder) sessionID(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		r.logger.Debug("visitor session unreadable", zap.Error(err))
		return uuid.NewString()
	}
	if sid, ok := sess.Values[sessionKey].(string); ok && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	sess.Values[sessionKey] = sid
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.logger.Warn("save visitor session", zap.Error(err))
	}
	return sid
}

func (r *Recorder) recordVisit(c echo.Context, sid, ua string) {
	ip := c.RealIP()
	browser, os, device := ParseUserAgent(ua)
	v := &Visit{
		VisitorID: VisitorID(r.salt, ip, ua),
		SessionID: sid,
		IPHash:    HashIP(r.salt, ip),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Path:      c.Request().URL.Path,
		Referrer:  CleanReferrer(c.Request().Referer(), r.siteHost),
		Timestamp: r.now(),
	}
	if err := r.store.SaveVisit(c.Request().Context(), v); err != nil {
		r.logger.Error("record visit", zap.String("path", v.Path), zap.Error(err))
	}
}

func (r *Recorder) recordBot(c echo.Context, bot, ua string) {
	bv := &BotVisit{
		BotName:   bot,
		IPHash:    HashIP(r.salt, c.RealIP()),
		UserAgent: ua,
		Path:      c.Request().URL.Path,
		Timestamp: r.now(),
	}
	if err := r.store.SaveBotVisit(c.Request().Context(), bv); err != nil {
		r.logger.Error("record bot visit", zap.String("bot", bot), zap.Error(err))
	}
}

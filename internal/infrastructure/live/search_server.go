package live

import (
	"encoding/json"
	"time"

	"classhub/internal/core/ports"
	"classhub/internal/infrastructure/monitoring"
	"classhub/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SearchFrame is one inbound directory query. An empty filter means
// the whole directory; "my" and "access" narrow it to the caller's
// owned or joined channels.
type SearchFrame struct {
	Filter       string `json:"filter"`
	SearchString string `json:"search_string"`
	UserEmail    string `json:"user_email"`
}

// SearchServer serves the live channel-directory stream. Each query
// frame is answered on the same connection only; results never fan out
// to other subscribers.
type SearchServer struct {
	search   ports.SearchService
	registry ports.ConnectionRegistry

	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	collector *monitoring.Collector
	logger    *zap.SugaredLogger
}

func NewSearchServer(
	search ports.SearchService,
	registry ports.ConnectionRegistry,
	cfg *config.Config,
	collector *monitoring.Collector,
	logger *zap.SugaredLogger,
) *SearchServer {
	return &SearchServer{
		search:       search,
		registry:     registry,
		pingInterval: cfg.Live.PingInterval,
		readTimeout:  cfg.Live.ReadTimeout,
		writeTimeout: cfg.Live.WriteTimeout,
		collector:    collector,
		logger:       logger,
	}
}

// HandleSearch serves GET /ws/search.
func (s *SearchServer) HandleSearch(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Writes are serialized: result frames and pings share the conn.
	wc := newWSConn(conn, s.writeTimeout)

	s.registry.RegisterSearch(wc)
	defer s.registry.UnregisterSearch(wc)

	s.logger.Infow("search connection opened", "subscribers", s.registry.SearchSubscribers())

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	frameChan := make(chan []byte, 10)
	errorChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go readFrames(conn, s.readTimeout, frameChan, errorChan, done)

	for {
		select {
		case raw := <-frameChan:
			var frame SearchFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				s.logger.Warnw("dropping malformed search frame", "error", err)
				s.collector.RecordMalformedFrame("search")
				continue
			}
			s.answer(c, wc, frame)

		case <-pingTicker.C:
			if err := wc.Ping(); err != nil {
				s.logger.Infow("search ping failed", "error", err)
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("search connection read error", "error", err)
			} else {
				s.logger.Infow("search connection closed")
			}
			return
		}
	}
}

func (s *SearchServer) answer(c *gin.Context, conn *wsConn, frame SearchFrame) {
	started := time.Now()
	results, err := s.search.Query(c.Request.Context(), frame.SearchString, frame.Filter, frame.UserEmail)
	s.collector.RecordSearchQuery(time.Since(started))
	if err != nil {
		s.logger.Infow("search query rejected",
			"filter", frame.Filter,
			"error", err,
		)
		conn.WriteJSON(map[string]interface{}{
			"type":    "error",
			"message": err.Error(),
		})
		return
	}
	if results == nil {
		results = []ports.SearchResult{}
	}

	if err := conn.WriteJSON(map[string]interface{}{
		"type":    "search_results",
		"results": results,
	}); err != nil {
		s.logger.Infow("search result delivery failed", "error", err)
	}
}

package live

import (
	"encoding/json"
	"net/http"
	"time"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	"classhub/internal/infrastructure/monitoring"
	"classhub/pkg/config"
	apperrors "classhub/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ChatFrame is one inbound chat frame. The sender's identity travels
// in the frame itself; the first well-formed frame pins it for the
// rest of the connection.
type ChatFrame struct {
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Message  string `json:"message"`
}

// ChatServer upgrades HTTP requests to live chat connections and feeds
// inbound frames into the chat service. Fan-out back to subscribers
// goes through the registry, never through this server directly.
type ChatServer struct {
	chat     ports.ChatService
	users    ports.UserRepository
	channels ports.ChannelRepository
	registry ports.ConnectionRegistry

	pingInterval time.Duration
	pongTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	limitEnabled bool
	limitRate    rate.Limit
	limitBurst   int
	maxFrameSize int64

	collector *monitoring.Collector
	logger    *zap.SugaredLogger
}

func NewChatServer(
	chat ports.ChatService,
	users ports.UserRepository,
	channels ports.ChannelRepository,
	registry ports.ConnectionRegistry,
	cfg *config.Config,
	collector *monitoring.Collector,
	logger *zap.SugaredLogger,
) *ChatServer {
	return &ChatServer{
		chat:         chat,
		users:        users,
		channels:     channels,
		registry:     registry,
		pingInterval: cfg.Live.PingInterval,
		pongTimeout:  cfg.Live.PongTimeout,
		readTimeout:  cfg.Live.ReadTimeout,
		writeTimeout: cfg.Live.WriteTimeout,
		limitEnabled: cfg.RateLimiting.Enabled,
		limitRate:    rate.Limit(cfg.RateLimiting.WebSocket.MessagesPerSecond),
		limitBurst:   cfg.RateLimiting.WebSocket.Burst,
		maxFrameSize: cfg.RateLimiting.WebSocket.MaxMessageSizeBytes,
		collector:    collector,
		logger:       logger,
	}
}

// HandleChat serves GET /ws/chat/:channel_id.
func (s *ChatServer) HandleChat(c *gin.Context) {
	channelID := domain.ChannelID(c.Param("channel_id"))
	if channelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id is required"})
		return
	}
	if _, err := s.channels.GetByID(c.Request.Context(), channelID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "channel_id", channelID, "error", err)
		return
	}
	defer conn.Close()

	// All writes go through the serialized wrapper: broadcasts reach
	// this connection from other posters' goroutines while this loop
	// writes pings, and gorilla allows only one writer at a time.
	wc := newWSConn(conn, s.writeTimeout)

	s.registry.RegisterChat(channelID, wc)
	defer s.registry.UnregisterChat(channelID, wc)

	s.logger.Infow("chat connection opened",
		"channel_id", channelID,
		"subscribers", s.registry.ChatSubscribers(channelID),
	)

	if s.maxFrameSize > 0 {
		conn.SetReadLimit(s.maxFrameSize)
	}
	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	var limiter *rate.Limiter
	if s.limitEnabled {
		limiter = rate.NewLimiter(s.limitRate, s.limitBurst)
	}

	frameChan := make(chan []byte, 10)
	errorChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go readFrames(conn, s.readTimeout, frameChan, errorChan, done)

	var sender domain.UserID
	for {
		select {
		case raw := <-frameChan:
			var frame ChatFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				// An undecodable frame is the sender's problem, not
				// the connection's: report once and keep reading.
				s.logger.Warnw("dropping malformed chat frame",
					"channel_id", channelID,
					"error", err,
				)
				s.collector.RecordMalformedFrame("chat")
				s.sendError(wc, "malformed frame")
				continue
			}

			if limiter != nil && !limiter.Allow() {
				s.sendError(wc, "message rate limit exceeded")
				continue
			}

			userID, err := s.resolveSender(c, sender, frame)
			if err != nil {
				s.sendError(wc, err.Error())
				continue
			}
			sender = userID

			if err := s.chat.PostMessage(c.Request.Context(), userID, channelID, frame.Message); err != nil {
				s.logger.Infow("chat message rejected",
					"channel_id", channelID,
					"user_id", userID,
					"error", err,
				)
				if appErr := apperrors.GetAppError(err); appErr != nil {
					if appErr.Code == apperrors.ErrCodeNotAuthorized {
						s.collector.RecordAuthDenial("chat_post")
					}
					s.sendError(wc, appErr.Message)
				} else {
					s.sendError(wc, "message could not be delivered")
				}
			} else {
				s.collector.RecordMessagePosted()
			}

		case <-pingTicker.C:
			if err := wc.Ping(); err != nil {
				s.logger.Infow("chat ping failed", "channel_id", channelID, "error", err)
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("chat connection read error", "channel_id", channelID, "error", err)
			} else {
				s.logger.Infow("chat connection closed", "channel_id", channelID)
			}
			return
		}
	}
}

// resolveSender pins the sender's identity for the connection. The
// user_id field wins when present; otherwise the email is looked up.
func (s *ChatServer) resolveSender(c *gin.Context, pinned domain.UserID, frame ChatFrame) (domain.UserID, error) {
	if pinned != "" {
		return pinned, nil
	}
	if frame.UserID != "" {
		return domain.UserID(frame.UserID), nil
	}
	if frame.Email == "" {
		return "", domain.ErrNotAuthenticated
	}
	user, err := s.users.GetByEmail(c.Request.Context(), frame.Email)
	if err != nil {
		return "", domain.ErrNotAuthenticated
	}
	return user.ID, nil
}

func (s *ChatServer) sendError(conn *wsConn, message string) {
	conn.WriteJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

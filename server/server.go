package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wandworld/game"
)

// Server 把 HTTP / WebSocket 接入到唯一的 Game
type Server struct {
	cfg      Config
	game     *game.Game
	hub      *Hub
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewServer(cfg Config, g *game.Game, hub *Hub, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		cfg:  cfg,
		game: g,
		hub:  hub,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 允许所有来源（生产环境需严格限制）
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes 注册所有路由
func (s *Server) Routes() http.Handler {
	p := s.cfg.PathPrefix
	mux := http.NewServeMux()
	mux.HandleFunc(p+"/ws", s.HandleWS)
	mux.HandleFunc(p+"/admin/rules", s.HandleAdminRules)
	mux.HandleFunc(p+"/metrics", s.HandleMetrics)
	mux.HandleFunc(p+"/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if s.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return mux
}

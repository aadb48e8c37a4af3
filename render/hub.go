package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "render")

// writeWait 单个客户端写入一帧的最长时间，超时的客户端被移除
var writeWait = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub WebSocket实时画面
// 功能：接受WebSocket连接，每步将帧以JSON广播给所有客户端
// 说明：写入失败的客户端会被关闭并移除
type Hub struct {
	clients map[*websocket.Conn]struct{}
	mu      sync.Mutex
}

// NewHub 创建WebSocket广播器
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP 将HTTP请求升级为WebSocket连接并加入广播列表
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("upgrade websocket: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Infof("websocket client %s connected, %d clients", conn.RemoteAddr(), n)
	go h.readLoop(conn)
}

// readLoop 丢弃客户端消息，直到连接关闭
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnf("websocket client %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Clients 当前连接数
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Draw 广播一帧
// 说明：每次写入设置截止时间，停止读取的客户端不会阻塞仿真主循环
func (h *Hub) Draw(f *Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame %d: %w", f.Step, err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warnf("websocket client %s: %v", conn.RemoteAddr(), err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}

// Close 关闭所有连接
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

package events

import (
	"encoding/json"
	"sync"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/sirupsen/logrus"
)

// DocumentEvent 文档状态变更事件
type DocumentEvent struct {
	Event  string `json:"event"` // document.changed
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Hub 管理所有 WebSocket 连接
// 看板订阅后无需轮询存储, 每次生命周期变更都会广播
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 广播消息到所有客户端
	Broadcast chan []byte

	// 注册新客户端
	Register chan *Client

	// 注销客户端
	Unregister chan *Client

	// 互斥锁，保护 clients map
	mu sync.RWMutex

	logger *logrus.Logger
}

// NewHub 创建新的 Hub
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run 运行 Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyDocumentChanged 广播文档状态变更
// 非阻塞: 没有消费者时直接丢弃, 生命周期操作不等待广播
func (h *Hub) NotifyDocumentChanged(id string, status model.DocumentStatus) {
	event := DocumentEvent{
		Event:  "document.changed",
		ID:     id,
		Status: string(status),
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Warn("failed to marshal document event")
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		h.logger.Debug("event broadcast buffer full, dropping document event")
	}
}

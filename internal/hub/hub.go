package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	redisstate "cordi-chat/internal/infra/state/redis"
)

// WebSocket 常量，hub 和 client 共用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// 收件箱连接只接收推送，客户端发来的消息只用于保活
	maxMessageSize = 512
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "deliver"
	UserID  uint    // 目标或来源账号
	Client  *Client // 仅用于 register/unregister
	Payload []byte  // 仅用于 deliver
}

// Hub 维护每个账号的活跃连接，并把 Redis 收件箱频道上的事件转发给它们。
// 多实例部署时每个实例各自订阅，消息经 Redis 扇出。
type Hub struct {
	messageChan chan HubMessage

	// map[userID]map[*Client]bool
	users   map[uint]map[*Client]bool
	usersMu sync.RWMutex

	redis     *redis.Client
	keyPrefix string

	subMu  sync.Mutex
	pubsub *redis.PubSub

	stopOnce sync.Once
	done     chan struct{}
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(redisClient *redis.Client, keyPrefix string) *Hub {
	if redisClient == nil {
		panic("Redis client cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		users:       make(map[uint]map[*Client]bool),
		redis:       redisClient,
		keyPrefix:   keyPrefix,
		done:        make(chan struct{}),
	}
}

// Run 启动 Hub 的主事件处理循环，应在单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "deliver":
				h.deliver(msg.UserID, msg.Payload)
			default:
				log.Warnf("Hub: Received unknown message type: %s for user %d", msg.Type, msg.UserID)
			}
		case <-h.done:
			h.closeAllClients()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// StartSubscription 订阅所有收件箱频道，并在后台把事件转发给本地连接。
func (h *Hub) StartSubscription(ctx context.Context) error {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if h.pubsub != nil {
		return errors.New("hub: subscription already started")
	}

	pattern := redisstate.InboxPattern(h.keyPrefix)
	ps := h.redis.PSubscribe(ctx, pattern)
	// 等待订阅确认，确保之后发布的消息不会丢失
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("hub: psubscribe %s: %w", pattern, err)
	}
	h.pubsub = ps
	go h.forward(ps.Channel())

	logrus.WithField("pattern", pattern).Info("Hub subscribed to inbox channels")
	return nil
}

// forward 把 Redis 消息转换为 deliver 事件
func (h *Hub) forward(ch <-chan *redis.Message) {
	for msg := range ch {
		userID, err := redisstate.ParseInboxChannel(h.keyPrefix, msg.Channel)
		if err != nil {
			logrus.WithError(err).Warn("Hub: ignoring message on unexpected channel")
			continue
		}
		h.QueueMessage(HubMessage{Type: "deliver", UserID: userID, Payload: []byte(msg.Payload)})
	}
	logrus.Debug("Hub: inbox subscription channel closed")
}

// StopAllSubscriptions 取消 Redis 订阅
func (h *Hub) StopAllSubscriptions() {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if h.pubsub == nil {
		return
	}
	if err := h.pubsub.Close(); err != nil {
		logrus.WithError(err).Warn("Hub: error closing inbox subscription")
	}
	h.pubsub = nil
	logrus.Info("Hub unsubscribed from inbox channels")
}

// Stop 停止主循环并关闭所有连接
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// registerClient 处理客户端注册逻辑
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	userID := client.UserID()

	h.usersMu.Lock()
	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[*Client]bool)
	}
	h.users[userID][client] = true
	count := len(h.users[userID])
	h.usersMu.Unlock()

	logrus.WithFields(logrus.Fields{"user_id": userID, "connections": count}).Info("Client registered to Hub")
}

// unregisterClient 处理客户端注销逻辑
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	userID := client.UserID()
	logCtx := logrus.WithField("user_id", userID)

	h.usersMu.Lock()
	defer h.usersMu.Unlock()

	conns, ok := h.users[userID]
	if !ok {
		logCtx.Warn("User not found during client unregister")
		return
	}
	if _, exists := conns[client]; !exists {
		logCtx.Warn("Client not found during unregister")
		return
	}
	delete(conns, client)
	// send 只由 Hub 关闭，WritePump 随之退出
	close(client.send)
	if len(conns) == 0 {
		delete(h.users, userID)
	}
	logCtx.Info("Client unregistered from Hub")
}

// deliver 把负载发送给某个账号的全部本地连接
func (h *Hub) deliver(userID uint, payload []byte) {
	h.usersMu.RLock()
	targets := make([]*Client, 0, len(h.users[userID]))
	for client := range h.users[userID] {
		targets = append(targets, client)
	}
	h.usersMu.RUnlock()

	for _, client := range targets {
		// 非阻塞发送，慢客户端不影响其他连接
		select {
		case client.send <- payload:
		default:
			logrus.WithField("user_id", userID).Warn("Client send channel full, dropping inbox event")
		}
	}
}

func (h *Hub) closeAllClients() {
	h.usersMu.Lock()
	defer h.usersMu.Unlock()
	for userID, conns := range h.users {
		for client := range conns {
			close(client.send)
		}
		delete(h.users, userID)
	}
}

// --- 公共方法 ---

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。队列已满时返回 false。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"user_id":      msg.UserID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// ConnectionCount 返回某个账号当前的本地连接数
func (h *Hub) ConnectionCount(userID uint) int {
	h.usersMu.RLock()
	defer h.usersMu.RUnlock()
	return len(h.users[userID])
}

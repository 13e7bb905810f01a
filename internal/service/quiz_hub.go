package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/view"
	"vocab_quiz_backend/pkg/logger"
	"vocab_quiz_backend/pkg/monitoring"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// 推送消息类型
const (
	MessagePage   = "PAGE"
	MessageAction = "ACTION"
	MessageError  = "ERROR"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ActionMessage 客户端经 WebSocket 发送的操作
type ActionMessage struct {
	Kind       quiz.ActionKind `json:"kind"`
	QuestionID int             `json:"questionId"`
	Value      string          `json:"value"`
	Index      int             `json:"index"`
}

type ErrorMessage struct {
	Message string        `json:"message"`
	Page    view.QuizPage `json:"page"`
}

// PageListener 接收会话变化后的页面，实现方不得阻塞
type PageListener interface {
	Publish(setKey string, page view.QuizPage)
}

type Client struct {
	Hub     *QuizHub
	Conn    *websocket.Conn
	Send    chan []byte
	SetKey  string
	Limiter *rate.Limiter
}

func encodeMessage(typ string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: typ, Data: raw})
}

// push 发送队列已满时丢弃，客户端会在下一次变化时拿到完整页面
func (c *Client) push(msg []byte) {
	select {
	case c.Send <- msg:
	default:
	}
}

// recoverPump 连接协程 panic 时只断开该连接
func (c *Client) recoverPump(pump string) {
	if r := recover(); r != nil {
		logger.Log.Error("WebSocket pump panic",
			zap.String("pump", pump),
			zap.String("set", c.SetKey),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()
	defer c.recoverPump("read")
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.String("set", c.SetKey))
			}
			break
		}

		// 限流校验 (每秒最多 10 个操作，允许突发 20 个)
		if !c.Limiter.Allow() {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type != MessageAction {
			continue
		}
		var action ActionMessage
		if err := json.Unmarshal(msg.Data, &action); err != nil {
			continue
		}
		c.Hub.handleAction(c, action)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	defer c.recoverPump("write")
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// QuizHub 把会话变化（包括定时器触发的自动跳题）推送给该题集的页面连接。
// 每个题集只保留一个连接，新连接会顶替旧连接。
type QuizHub struct {
	quiz *QuizService

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewQuizHub 创建推送中心并注册为 quizSvc 的页面监听者
func NewQuizHub(quizSvc *QuizService) *QuizHub {
	h := &QuizHub{
		quiz:    quizSvc,
		clients: make(map[string]*Client),
	}
	quizSvc.SetListener(h)
	return h
}

func (h *QuizHub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.SetKey]; ok {
		close(old.Send)
		monitoring.LiveSubscribers.Dec()
		logger.Log.Info("Live connection replaced", zap.String("set", c.SetKey))
	}
	h.clients[c.SetKey] = c
	monitoring.LiveSubscribers.Inc()
}

// unregister 连接已被顶替时什么也不做
func (h *QuizHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.SetKey] != c {
		return
	}
	delete(h.clients, c.SetKey)
	close(c.Send)
	monitoring.LiveSubscribers.Dec()
}

// Connected 题集当前是否有页面连接
func (h *QuizHub) Connected(setKey string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[setKey]
	return ok
}

func (h *QuizHub) Publish(setKey string, page view.QuizPage) {
	msg, err := encodeMessage(MessagePage, page)
	if err != nil {
		logger.Log.Error("Failed to encode page", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[setKey]; ok {
		c.push(msg)
	}
}

// handleAction 成功的操作经 Publish 推送，失败时回送 ERROR 消息
func (h *QuizHub) handleAction(c *Client, a ActionMessage) {
	page, err := h.quiz.Dispatch(context.Background(), c.SetKey, quiz.Action{
		Kind:       a.Kind,
		QuestionID: a.QuestionID,
		Value:      a.Value,
		Index:      a.Index,
	})
	if err == nil {
		return
	}
	if !errors.Is(err, quiz.ErrControlDisabled) && !errors.Is(err, quiz.ErrUnknownAction) {
		logger.Log.Warn("WebSocket action failed", zap.String("set", c.SetKey), zap.Error(err))
	}
	msg, encErr := encodeMessage(MessageError, ErrorMessage{Message: err.Error(), Page: page})
	if encErr != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[c.SetKey] == c {
		c.push(msg)
	}
}

// Stop 关闭所有连接
func (h *QuizHub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.clients)
	for key, c := range h.clients {
		close(c.Send)
		delete(h.clients, key)
	}
	monitoring.LiveSubscribers.Set(0)
	logger.Log.Info("QuizHub stopped", zap.Int("closedConnections", n))
}

// ServeWs 升级连接，先推送当前页面再开始转发。订阅的是回退后的实际题集。
func ServeWs(hub *QuizHub, w http.ResponseWriter, r *http.Request, setKey string) {
	page, err := hub.quiz.Open(r.Context(), setKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	msg, err := encodeMessage(MessagePage, page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.String("set", setKey))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		SetKey:  page.Set,
		Limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
	client.Send <- msg
	hub.register(client)

	go client.writePump()
	go client.readPump()
}

package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"turbojet/calculator"
	"turbojet/deque"
	"turbojet/model"
)

// 待发送消息的上限，客户端读得慢时丢弃最早的进度消息
const pendingSize = 256

// Hub 一个 websocket 连接上的请求处理与结果推送
type Hub struct {
	s       *Server
	conn    *websocket.Conn
	calcHub *calculator.CalcHub

	// request
	msg chan model.Msg
	// response
	mu      sync.Mutex
	pending *deque.ListDeque[model.Msg]
	notify  chan struct{}
}

func NewHub(s *Server, conn *websocket.Conn) *Hub {
	return &Hub{
		s:       s,
		conn:    conn,
		calcHub: calculator.NewCalcHub(),
		msg:     make(chan model.Msg, 10),
		pending: deque.NewListDeque[model.Msg](pendingSize),
		notify:  make(chan struct{}, 1),
	}
}

// Run 读循环在当前 goroutine，连接断开后停止扫描并返回
func (h *Hub) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer h.conn.Close()
	defer h.calcHub.StopSignal()

	go h.handleRequest(ctx)
	go h.handleResponse(ctx)
	go h.forwardProgress(ctx)

	for {
		var msg model.Msg
		if err := h.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket 读取失败")
			}
			return
		}
		select {
		case h.msg <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) reply(msgType string, v interface{}) {
	content, ok := v.(string)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			msgType, content = model.MsgError, err.Error()
		} else {
			content = string(data)
		}
	}
	h.mu.Lock()
	deque.PushBounded[model.Msg](h.pending, model.Msg{Type: msgType, Content: content})
	h.mu.Unlock()
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Hub) replyError(err error) {
	h.reply(model.MsgError, errorOf(err))
}

func (h *Hub) handleResponse(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.notify:
		}
		for {
			h.mu.Lock()
			msg, ok := h.pending.RemoveFirst()
			h.mu.Unlock()
			if !ok {
				break
			}
			if err := h.conn.WriteJSON(&msg); err != nil {
				log.WithError(err).Warn("websocket 写入失败")
				return
			}
		}
	}
}

func (h *Hub) forwardProgress(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-h.calcHub.Progress:
			h.reply(model.MsgSweepPoint, p)
		}
	}
}

func (h *Hub) handleRequest(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.msg:
			switch msg.Type {
			case model.MsgDesign:
				h.design(msg)
			case model.MsgOffDesign:
				h.offDesign(msg)
			case model.MsgSweep:
				h.sweep(ctx, msg)
			case model.MsgStop:
				if h.calcHub.StopSignal() {
					h.reply(model.MsgStopped, "stopped")
				} else {
					h.reply(model.MsgStopped, "no sweep running")
				}
			default:
				h.reply(model.MsgError, "no such type: "+msg.Type)
			}
		}
	}
}

func unmarshalContent(content string, v interface{}) error {
	if content == "" {
		return nil
	}
	return decodeString(content, v)
}

func (h *Hub) design(msg model.Msg) {
	in := h.s.calc.Config().Design
	if err := unmarshalContent(msg.Content, &in); err != nil {
		h.replyError(err)
		return
	}
	dp, err := h.s.calc.Design(in)
	if err != nil {
		h.replyError(err)
		return
	}
	h.reply(model.MsgDesignDone, dp)
}

func (h *Hub) offDesign(msg model.Msg) {
	req := h.s.defaultOffDesignReq()
	if err := unmarshalContent(msg.Content, &req); err != nil {
		h.replyError(err)
		return
	}
	in, err := h.s.offDesignInput(req)
	if err != nil {
		h.replyError(err)
		return
	}
	p, err := h.s.calc.OffDesign(in)
	if err != nil {
		h.replyError(err)
		return
	}
	h.reply(model.MsgOffDesignRes, p)
}

// sweep 在后台运行，逐点推送，结束后发送 sweepDone
func (h *Hub) sweep(ctx context.Context, msg model.Msg) {
	var req model.SweepReq
	if err := unmarshalContent(msg.Content, &req); err != nil {
		h.replyError(err)
		return
	}
	if err := h.s.checkSweep(req); err != nil {
		h.replyError(err)
		return
	}
	g, err := h.s.calc.Geometry()
	if err != nil {
		h.replyError(err)
		return
	}
	sweepCtx, err := h.calcHub.StartSignal(ctx)
	if err != nil {
		h.replyError(err)
		return
	}
	go func() {
		defer h.calcHub.Done()
		pts, err := h.s.calc.Sweep(sweepCtx, g, req, func(p model.SweepPoint) {
			h.calcHub.PushSignal(sweepCtx, p)
		})
		if err != nil && sweepCtx.Err() == nil {
			h.replyError(err)
			return
		}
		converged := 0
		for _, p := range pts {
			if p.Converged {
				converged++
			}
		}
		h.reply(model.MsgSweepDone, map[string]int{"points": len(req.Throttles), "converged": converged})
	}()
}

// Package server HTTP 接口与 websocket 推送
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"turbojet/calculator"
	"turbojet/cycle"
	"turbojet/engine"
	"turbojet/metrics"
	"turbojet/model"
	"turbojet/report"
	"turbojet/solver"
	"turbojet/thermo"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	calc     *calculator.Calculator
	limiter  *IPRateLimiter
}

func NewServer(calc *calculator.Calculator, upgrader websocket.Upgrader) *Server {
	cfg := calc.Config().Server
	return &Server{
		addr:     cfg.Addr,
		upgrader: upgrader,
		calc:     calc,
		limiter:  NewIPRateLimiter(rate.Limit(cfg.Rate), cfg.Burst),
	}
}

// OffDesignReq 非设计点请求，geometry 为空时使用配置中的设计点
type OffDesignReq struct {
	AltitudeFt float64                `json:"altitude_ft"`
	Mach       float64                `json:"mach"`
	Throttle   float64                `json:"throttle"`
	Geometry   *cycle.DerivedGeometry `json:"geometry,omitempty"`
	Guess      *cycle.Unknowns        `json:"guess,omitempty"`
}

type errorBody struct {
	Error  string                      `json:"error"`
	Report *solver.NonConvergenceError `json:"report,omitempty"`
	Fields []cycle.FieldError          `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("写响应失败")
	}
}

// statusOf 错误分类对应的状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, cycle.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, solver.ErrNonConvergence),
		errors.Is(err, engine.ErrInfeasible),
		errors.Is(err, thermo.ErrOutOfDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorOf(err error) errorBody {
	body := errorBody{Error: err.Error()}
	var nc *solver.NonConvergenceError
	if errors.As(err, &nc) {
		body.Report = nc
	}
	var ve *cycle.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	return body
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorOf(err))
}

// decodeJSON 空输入不算错误，v 保持调用方给的默认值
func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", cycle.ErrInvalidInput, err)
	}
	return nil
}

func decode(r *http.Request, v interface{}) error {
	return decodeJSON(r.Body, v)
}

func decodeString(s string, v interface{}) error {
	return decodeJSON(strings.NewReader(s), v)
}

func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	in := s.calc.Config().Design
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	dp, err := s.calc.Design(in)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=\"design.pdf\"")
		if err := report.DesignPDF(w, dp); err != nil {
			log.WithError(err).Warn("PDF 生成失败")
		}
		return
	}
	writeJSON(w, http.StatusOK, dp)
}

func (s *Server) offDesignInput(req OffDesignReq) (cycle.OffDesignInput, error) {
	var g cycle.DerivedGeometry
	if req.Geometry != nil {
		g = *req.Geometry
	} else {
		var err error
		if g, err = s.calc.Geometry(); err != nil {
			return cycle.OffDesignInput{}, err
		}
	}
	in := cycle.Throttle(g, req.AltitudeFt, req.Mach, req.Throttle)
	in.Guess = req.Guess
	return in, nil
}

func (s *Server) defaultOffDesignReq() OffDesignReq {
	o := s.calc.Config().OffDesign
	return OffDesignReq{AltitudeFt: o.AltitudeFt, Mach: o.Mach, Throttle: o.Throttle}
}

func (s *Server) handleOffDesign(w http.ResponseWriter, r *http.Request) {
	req := s.defaultOffDesignReq()
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := s.offDesignInput(req)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.calc.OffDesign(in)
	if err != nil {
		writeError(w, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		if err := report.OffDesignPDF(w, p); err != nil {
			log.WithError(err).Warn("PDF 生成失败")
		}
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteConvergenceHTML(w, "Off-design convergence", p.History); err != nil {
			log.WithError(err).Warn("收敛曲线生成失败")
		}
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) checkSweep(req model.SweepReq) error {
	if max := s.calc.Config().Server.MaxPoints; max > 0 && len(req.Throttles) > max {
		return fmt.Errorf("%w: %d throttle settings exceed the limit of %d", cycle.ErrInvalidInput, len(req.Throttles), max)
	}
	return nil
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req model.SweepReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.checkSweep(req); err != nil {
		writeError(w, err)
		return
	}
	g, err := s.calc.Geometry()
	if err != nil {
		writeError(w, err)
		return
	}
	pts, err := s.calc.Sweep(r.Context(), g, req, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pts)
}

// serveWs 每个连接一个 Hub
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket 升级失败")
		return
	}
	hub := NewHub(s, conn)
	hub.Run(r.Context())
}

// Router 路由表，API 经过限流
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.LimitMiddleware)
	api.HandleFunc("/design", s.handleDesign).Methods("POST")
	api.HandleFunc("/offdesign", s.handleOffDesign).Methods("POST")
	api.HandleFunc("/sweep", s.handleSweep).Methods("POST")
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	router.HandleFunc("/ws", s.serveWs)
	return router
}

// Serve 阻塞到 ctx 结束，然后优雅关闭
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("服务启动")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("收到停止信号，关闭连接")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("服务已停止")
	return nil
}

package httpsrv

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/hashmap-kz/quantd/internal/boot"
	"github.com/hashmap-kz/quantd/internal/metrics"
	"github.com/hashmap-kz/quantd/internal/paper"
)

type DashboardController struct {
	Service *DashboardService
	// scanLock serializes on-demand scans; a second request gets 409
	scanLock chan struct{}
}

func NewController(s *DashboardService) *DashboardController {
	return &DashboardController{
		Service:  s,
		scanLock: make(chan struct{}, 1),
	}
}

// DashboardHandler is the root page. A failed script load renders the
// diagnostic (message plus trace) instead of crashing or serving a blank
// page; a successful load renders the script's panel when it installed one.
func (c *DashboardController) DashboardHandler(w http.ResponseWriter, _ *http.Request) {
	status := c.Service.LoaderStatus()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch status.State {
	case boot.StateFailed:
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "<h1>dashboard script failed to load</h1>\n")
		fmt.Fprintf(w, "<p>%s</p>\n", html.EscapeString(status.Error))
		fmt.Fprintf(w, "<pre>%s</pre>\n", html.EscapeString(status.Trace))

	case boot.StateRunning:
		if body, ok := c.Service.DashboardBody(); ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprintf(w, "<h1>quantd</h1>\n<p>script %s loaded</p>\n", html.EscapeString(status.Script))

	default:
		fmt.Fprint(w, "<h1>quantd</h1>\n<p>loading</p>\n")
	}
}

func (c *DashboardController) LoaderStatusHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, c.Service.LoaderStatus())
}

func (c *DashboardController) StrategiesHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, c.Service.Strategies())
}

func (c *DashboardController) SectorsHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, c.Service.Sectors())
}

func (c *DashboardController) BacktestHandler(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := c.Service.Backtest(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (c *DashboardController) RankingsHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := c.Service.Rankings(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (c *DashboardController) ScanHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case c.scanLock <- struct{}{}:
		defer func() { <-c.scanLock }()
	default:
		WriteJSON(w, http.StatusConflict, map[string]string{
			"error": "scan already in progress",
		})
		return
	}

	snap, err := c.Service.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// ---- pipeline control ----

func (c *DashboardController) PipelineStatusHandler(w http.ResponseWriter, _ *http.Request) {
	p, err := c.Service.Pipeline()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"running": p.IsRunning()})
}

func (c *DashboardController) PipelinePauseHandler(w http.ResponseWriter, _ *http.Request) {
	p, err := c.Service.Pipeline()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	p.Pause()
	w.WriteHeader(http.StatusAccepted)
}

func (c *DashboardController) PipelineResumeHandler(w http.ResponseWriter, _ *http.Request) {
	p, err := c.Service.Pipeline()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	p.Resume()
	w.WriteHeader(http.StatusAccepted)
}

// ---- paper trading ----

type accountRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type orderRequest struct {
	accountRequest
	Ticker string  `json:"ticker"`
	Side   string  `json:"side"`
	Shares float64 `json:"shares"`
}

func (c *DashboardController) RegisterAccountHandler(w http.ResponseWriter, r *http.Request) {
	eng, err := c.Service.Trading()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	var req accountRequest
	if err := ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := eng.Register(r.Context(), req.Account, req.Password)
	if err != nil {
		if errors.Is(err, paper.ErrAccountExists) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	WriteJSON(w, http.StatusCreated, a)
}

func (c *DashboardController) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	eng, err := c.Service.Trading()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	var req orderRequest
	if err := ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := eng.Authenticate(r.Context(), req.Account, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	var order *paper.Order
	switch req.Side {
	case paper.SideBuy:
		order, err = eng.Buy(r.Context(), req.Account, req.Ticker, req.Shares)
	case paper.SideSell:
		order, err = eng.Sell(r.Context(), req.Account, req.Ticker, req.Shares)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("side must be %q or %q", paper.SideBuy, paper.SideSell))
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	metrics.OrdersPlaced.WithLabelValues(order.Side).Inc()
	WriteJSON(w, http.StatusCreated, order)
}

func (c *DashboardController) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	eng, err := c.Service.Trading()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	p, err := eng.Portfolio(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		if errors.Is(err, paper.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (c *DashboardController) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	eng, err := c.Service.Trading()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := eng.Orders(r.Context(), r.URL.Query().Get("account"), limit)
	if err != nil {
		if errors.Is(err, paper.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	WriteJSON(w, http.StatusOK, orders)
}

func (c *DashboardController) ResetAccountHandler(w http.ResponseWriter, r *http.Request) {
	eng, err := c.Service.Trading()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	var req accountRequest
	if err := ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := eng.Authenticate(r.Context(), req.Account, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err := eng.Reset(r.Context(), req.Account); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

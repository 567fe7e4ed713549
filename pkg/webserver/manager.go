package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/model"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const DefaultAddress = ":8080"

type Comparer interface {
	Run(ctx context.Context, req model.Request) (model.Comparison, error)
}

type Manager struct {
	r         *mux.Router
	addr      string
	comparer  Comparer
	chartOpts chart.Options
}

func NewManager(addr string, comparer Comparer, chartOpts chart.Options) *Manager {
	if addr == "" {
		addr = DefaultAddress
	}
	m := &Manager{
		r:         mux.NewRouter(),
		addr:      addr,
		comparer:  comparer,
		chartOpts: chartOpts,
	}

	m.rootHandlers()
	return m
}

func (m *Manager) router() *mux.Router {
	return m.r
}

// Handler exposes the routes, mainly for tests.
func (m *Manager) Handler() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.HandleFunc("/", m.handleIndex).Methods(http.MethodGet)
	m.r.HandleFunc("/compare", m.handleComparePage).Methods(http.MethodGet)
	m.r.HandleFunc("/api/compare", m.handleCompareJSON).Methods(http.MethodGet)
	m.r.HandleFunc("/chart.svg", m.handleChartSVG).Methods(http.MethodGet)
	m.r.HandleFunc("/chart.png", m.handleChartPNG).Methods(http.MethodGet)
	m.r.HandleFunc("/compare.xlsx", m.handleWorkbook).Methods(http.MethodGet)
	m.r.Use(logRequests)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request served")
	})
}

func (m *Manager) Debug() {
	_ = m.router().Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			fmt.Println("ROUTE:", pathTemplate)
		}
		methods, err := route.GetMethods()
		if err == nil {
			fmt.Println("Methods:", strings.Join(methods, ","))
		}
		fmt.Println()
		return nil
	})
}

// Serve listens until ctx is cancelled, then shuts the server down gracefully.
func (m *Manager) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr: m.addr,
		// fetching a session from the provider can take a while on a cold cache
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.router(),
	}

	errChan := make(chan error, 1)
	go func() {
		logrus.Infof("webserver listening on %s", m.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logrus.Info("webserver shutting down")
	return srv.Shutdown(shutdownCtx)
}

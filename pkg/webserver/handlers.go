package webserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/export"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/provider"

	"github.com/sirupsen/logrus"
)

// parseRequest reads the comparison inputs from the query string. Missing fields take the
// default request values.
func parseRequest(q url.Values) (model.Request, error) {
	req := model.DefaultRequest()
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: %q", model.ErrInvalidYear, v)
		}
		req.Year = year
	}
	if q.Has("gp") {
		req.GrandPrix = q.Get("gp")
	}
	if v := q.Get("session"); v != "" {
		kind, err := model.ParseSessionKind(v)
		if err != nil {
			return req, err
		}
		req.Session = kind
	}
	if q.Has("driver1") {
		req.Driver1 = q.Get("driver1")
	}
	if q.Has("driver2") {
		req.Driver2 = q.Get("driver2")
	}
	req = req.Normalize()
	return req, req.Validate()
}

func queryOf(req model.Request) url.Values {
	q := url.Values{}
	q.Set("year", strconv.Itoa(req.Year))
	q.Set("gp", req.GrandPrix)
	q.Set("session", string(req.Session))
	q.Set("driver1", req.Driver1)
	q.Set("driver2", req.Driver2)
	return q
}

// statusOf maps an error to the HTTP status shown to the user.
func statusOf(err error) int {
	var sessionNotFound *provider.SessionNotFoundError
	var driverNotFound *provider.DriverNotFoundError
	switch {
	case errors.Is(err, model.ErrInvalidYear),
		errors.Is(err, model.ErrEmptyGrandPrix),
		errors.Is(err, model.ErrEmptyDriver),
		errors.Is(err, model.ErrInvalidSession):
		return http.StatusBadRequest
	case errors.As(err, &sessionNotFound), errors.As(err, &driverNotFound):
		return http.StatusNotFound
	case compare.IsKernelError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("comparison failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// run parses the request and runs the comparison.
func (m *Manager) run(r *http.Request) (model.Comparison, error) {
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		return model.Comparison{}, err
	}
	return m.comparer.Run(r.Context(), req)
}

func (m *Manager) newPage(req model.Request) pageData {
	return pageData{
		Request:  req,
		Sessions: model.SessionKinds(),
		MinYear:  model.MinYear,
		MaxYear:  time.Now().Year(),
	}
}

func (m *Manager) renderPage(w http.ResponseWriter, status int, data pageData) {
	var b bytes.Buffer
	if err := pages.Execute(&b, data); err != nil {
		logrus.WithError(err).Error("rendering page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b.Bytes())
}

func (m *Manager) handleIndex(w http.ResponseWriter, r *http.Request) {
	m.renderPage(w, http.StatusOK, m.newPage(model.DefaultRequest()))
}

func (m *Manager) handleComparePage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query())
	data := m.newPage(req)
	if err != nil {
		data.Error = err.Error()
		m.renderPage(w, statusOf(err), data)
		return
	}

	cmp, err := m.comparer.Run(r.Context(), req)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			logrus.WithError(err).Error("comparison failed")
		}
		data.Error = err.Error()
		m.renderPage(w, status, data)
		return
	}

	svg, err := chart.SVG(cmp, m.chartOpts)
	if err != nil {
		logrus.WithError(err).Error("rendering chart")
	}
	data.Comparison = &cmp
	data.Chart = template.HTML(svg)
	data.Query = template.URL(queryOf(cmp.Request).Encode())
	m.renderPage(w, http.StatusOK, data)
}

func (m *Manager) handleCompareJSON(w http.ResponseWriter, r *http.Request) {
	cmp, err := m.run(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cmp)
}

func (m *Manager) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	cmp, err := m.run(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var b bytes.Buffer
	if err := chart.RenderSVG(&b, cmp, m.chartOpts); err != nil {
		writeJSONError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(b.Bytes())
}

func (m *Manager) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	cmp, err := m.run(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var b bytes.Buffer
	if err := chart.RenderPNG(&b, cmp, m.chartOpts); err != nil {
		writeJSONError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(b.Bytes())
}

func (m *Manager) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	cmp, err := m.run(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var b bytes.Buffer
	if err := export.WriteXLSX(&b, cmp); err != nil {
		writeJSONError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(cmp.Request)))
	_, _ = w.Write(b.Bytes())
}

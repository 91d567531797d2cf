package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"liftcast/app"
	"liftcast/domain/core"
	"liftcast/domain/typicality"
	"liftcast/internal/api"
	"liftcast/internal/errors"
)

// indexView is the data behind index.html
type indexView struct {
	Simulation  bool
	Hour        int
	Minute      int
	Clock       string
	Location    string
	InputError  string
	Found       bool
	Prediction  *app.Prediction
	Advice      template.HTML
	Chart       template.HTML
	Records     []typicality.SummaryRecord
	Current     typicality.Key
	Gaps        int
	Snapshot    *app.Snapshot
	Fingerprint string
	Hours       []int
	Minutes     []int
}

// handleIndex renders the dashboard for the current time, or for the time
// given by hour and minute query parameters (simulation mode).
func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := s.model.Model(ctx)
	if err != nil {
		s.logger.Error("model unavailable: %v", err)
		c.String(http.StatusServiceUnavailable, "Model unavailable: %v", err)
		return
	}

	now := s.model.Now()
	view := &indexView{
		Hour:        now.Hour(),
		Minute:      now.Minute(),
		Location:    s.model.Location().String(),
		Records:     snap.Table.Records(),
		Gaps:        len(snap.Table.Gaps()),
		Snapshot:    snap,
		Fingerprint: snap.Table.Fingerprint().Short(),
		Hours:       sequence(0, typicality.HoursPerDay-1),
		Minutes:     sequence(0, 59),
	}

	status := http.StatusOK
	if hour, minute, simulated, err := simulationTime(c); err != nil {
		view.InputError = err.Error()
		status = api.StatusFor(errors.CodeFor(err))
	} else if simulated {
		view.Simulation = true
		view.Hour, view.Minute = hour, minute
	}
	view.Clock = fmt.Sprintf("%d:%02d", view.Hour, view.Minute)
	view.Current = typicality.Key{Hour: view.Hour, Minute: typicality.Bucketize(view.Minute)}

	pred, err := s.model.Predict(ctx, view.Hour, view.Minute)
	switch {
	case err == nil:
		view.Found = true
		view.Prediction = pred
		view.Advice = renderMarkdown(pred.Advice)
	case core.IsMissingKeyError(err):
		view.Advice = renderMarkdown(s.model.Advisor().NoData())
	default:
		s.logger.Error("prediction for %s failed: %v", view.Clock, err)
		c.String(http.StatusInternalServerError, "Prediction failed: %v", err)
		return
	}

	view.Chart = StepChart(view.Records, view.Current)
	s.renderTemplate(c, status, "index.html", view)
}

// simulationTime reads hour and minute from the query. Either one alone
// enables simulation; the other keeps its slider default (9:15).
func simulationTime(c *gin.Context) (hour, minute int, ok bool, err error) {
	rawHour := strings.TrimSpace(c.Query("hour"))
	rawMinute := strings.TrimSpace(c.Query("minute"))
	if rawHour == "" && rawMinute == "" {
		return 0, 0, false, nil
	}

	hour, minute = 9, 15
	if rawHour != "" {
		if hour, err = strconv.Atoi(rawHour); err != nil || !typicality.ValidHour(hour) {
			return 0, 0, false, errors.ValidationError(fmt.Sprintf("hour must be an integer between 0 and 23, got %q", rawHour))
		}
	}
	if rawMinute != "" {
		if minute, err = strconv.Atoi(rawMinute); err != nil || minute < 0 || minute > 59 {
			return 0, 0, false, errors.ValidationError(fmt.Sprintf("minute must be an integer between 0 and 59, got %q", rawMinute))
		}
	}
	return hour, minute, true, nil
}

func sequence(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcast/app"
	"liftcast/domain/typicality"
	"liftcast/internal"
	"liftcast/internal/api"
	"liftcast/internal/errors"
	"liftcast/internal/observability"
	"liftcast/internal/testkit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, obs []typicality.Observation) *Server {
	t.Helper()
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError)
	metrics := observability.NewMetrics()
	svc := app.NewModelService(&testkit.StaticSource{Observations: obs}, app.ModelServiceOptions{
		Clock:   func() time.Time { return time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC) },
		Logger:  logger,
		Metrics: metrics,
	})
	// the module root holds ui/templates and ui/static
	s, err := NewServer(svc, api.NewHandler(svc, metrics, logger), os.DirFS(".."), logger)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex_Simulation(t *testing.T) {
	s := newTestServer(t, testkit.MorningScenario())

	rec := get(t, s, "/?hour=9&minute=17")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Floor 1")
	assert.Contains(t, body, "83.3%")
	assert.Contains(t, body, "0.65 bits")
	assert.Contains(t, body, "<strong>Live Advice:</strong> At 9:17, the elevator is moving frequently.")
	assert.Contains(t, body, "Simulation mode: 9:17")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `class="point current"`)
}

func TestIndex_LiveUsesClock(t *testing.T) {
	s := newTestServer(t, testkit.MorningScenario())

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Live: 9:15 (UTC)")
	assert.Contains(t, rec.Body.String(), "Floor 1")
}

func TestIndex_MissingKeyRendersNoData(t *testing.T) {
	s := newTestServer(t, testkit.MorningScenario())

	rec := get(t, s, "/?hour=10&minute=0")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No data for this time")
	assert.Contains(t, body, "No historical data for this time.")
	assert.NotContains(t, body, "Predicted Floor")
}

func TestIndex_InvalidInput(t *testing.T) {
	s := newTestServer(t, testkit.MorningScenario())

	rec := get(t, s, "/?hour=25&minute=3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "hour must be an integer between 0 and 23")

	rec = get(t, s, "/?minute=sixty")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "minute must be an integer between 0 and 59")
}

func TestSimulationTimeIsValidationError(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?hour=-1", nil)

	_, _, ok, err := simulationTime(c)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, errors.CodeValidationError, errors.CodeFor(err))
}

func TestIndex_IdleAdvice(t *testing.T) {
	s := newTestServer(t, testkit.Slot(3, 30, 0, 30, 1))

	rec := get(t, s, "/?hour=3&minute=28")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "likely idling. You should probably walk.")
	assert.Contains(t, rec.Body.String(), `class="advice idle"`)
}

func TestAPIMountedOnDashboard(t *testing.T) {
	s := newTestServer(t, testkit.MorningScenario())

	rec := get(t, s, "/api/predict?hour=9&minute=15")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"typical_floor":1`)

	rec = get(t, s, "/api/predict?hour=10&minute=5")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `liftcast_http_requests_total{route="/api/predict",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `liftcast_predictions_total{result="missing_key"} 1`)
}

func TestStaticCSS(t *testing.T) {
	s := newTestServer(t, testkit.MorningScenario())

	rec := get(t, s, "/static/css/liftcast.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".step-chart")
}

func TestStepChart(t *testing.T) {
	table, err := typicality.Aggregate(testkit.NewElevatorDataGenerator(testkit.DefaultElevatorConfig()).GenerateObservations())
	require.NoError(t, err)

	svg := string(StepChart(table.Records(), typicality.Key{Hour: 9, Minute: 15}))
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, typicality.SlotsPerDay, strings.Count(svg, "<circle"))
	assert.Equal(t, 1, strings.Count(svg, "point current"))
	assert.Contains(t, svg, "<title>09:15 floor")

	empty := string(StepChart(nil, typicality.Key{}))
	assert.NotContains(t, empty, "<path")
}

func TestRenderMarkdown(t *testing.T) {
	out := string(renderMarkdown("**Live Advice:** <script>x</script>"))
	assert.Contains(t, out, "<strong>Live Advice:</strong>")
	assert.NotContains(t, out, "<script>")
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

func TestStatsElapsedTimerMiddleware(t *testing.T) {
	require := require.New(t)

	stats := tally.NewTestScope("testing", nil)

	r := chi.NewRouter()

	r.Use(ElapsedTimer(stats.SubScope("files")))
	r.Get("/files/{hash}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	})
	r.Group(func(r chi.Router) {
		r.Use(ElapsedTimer(stats.SubScope("exec")))
		r.Post("/exec/{id}", func(w http.ResponseWriter, r *http.Request) {})
	})

	s := httptest.NewServer(r)
	defer s.Close()

	require.Nil(stats.Snapshot().Timers()["testing.files.GET.request_time+"])

	_, err := http.Get(s.URL + "/files/abc123")
	require.NoError(err)

	values := stats.Snapshot().Timers()["testing.files.GET.request_time+"].Values()
	require.Len(values, 1)
	require.True(values[0] >= 50*time.Millisecond)

	_, err = http.Post(s.URL+"/exec/run1", "", nil)
	require.NoError(err)

	values = stats.Snapshot().Timers()["testing.exec.POST.request_time+"].Values()
	require.Len(values, 1)
	require.True(values[0] < time.Second)
}

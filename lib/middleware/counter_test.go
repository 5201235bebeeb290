package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

func TestStatsCounterMiddleware(t *testing.T) {
	require := require.New(t)

	stats := tally.NewTestScope("testing", nil)

	r := chi.NewRouter()

	r.Use(Counter(stats.SubScope("files")))
	r.Get("/files/{hash}", func(w http.ResponseWriter, r *http.Request) {})

	r.Group(func(r chi.Router) {
		r.Use(Counter(stats.SubScope("exec")))
		r.Post("/exec/{id}", func(w http.ResponseWriter, r *http.Request) {})
	})

	s := httptest.NewServer(r)
	defer s.Close()

	require.Nil(stats.Snapshot().Counters()["testing.files.GET.requests+"])

	_, err := http.Get(s.URL + "/files/abc123")
	require.NoError(err)

	_, err = http.Post(s.URL+"/exec/run1", "", nil)
	require.NoError(err)

	require.Equal(int64(1), stats.Snapshot().Counters()["testing.files.GET.requests+"].Value())
	require.Equal(int64(1), stats.Snapshot().Counters()["testing.exec.POST.requests+"].Value())

	_, err = http.Get(s.URL + "/files/abc123")
	require.NoError(err)
	require.Equal(int64(2), stats.Snapshot().Counters()["testing.files.GET.requests+"].Value())
}

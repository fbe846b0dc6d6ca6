package restyutil

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-test", "1")
		w.Write([]byte("done"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRedirects(t *testing.T) {
	srv := newServer(t)

	res, err := resty.New().R().Get(srv.URL + "/start")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/end", FinalURL(res))

	client := resty.New().SetRedirectPolicy(NoRedirects())
	res, err = client.R().Get(srv.URL + "/start")
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, res.StatusCode())
	require.Equal(t, "/end", res.Header().Get("location"))
	require.Equal(t, srv.URL+"/start", FinalURL(res))
}

func TestInstrumentClient(t *testing.T) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	srv := newServer(t)
	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, output)

	res, err := client.R().SetBody(map[string]string{"hello": "world"}).Post(srv.URL + "/end")
	require.NoError(t, err)
	require.Equal(t, "done", res.String())

	require.Len(t, output.messages, 1)
	dump := output.messages["1"]
	require.Contains(t, dump, "POST")
	require.Contains(t, dump, `"hello":"world"`)
	require.Contains(t, dump, "X-Test: 1")
	require.Contains(t, dump, "done")
}

func TestFilesystemOutput(t *testing.T) {
	dir := t.TempDir()
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "contents")

	contents, err := os.ReadFile(dir + "/1")
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}

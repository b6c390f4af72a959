package dashboard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpps-dados/carteira/internal/export"
)

func TestNewServer(t *testing.T) {
	srv := NewServer("8050", testReport(), export.FormatPlain)
	if srv.Addr != ":8050" {
		t.Errorf("Addr = %q, want :8050", srv.Addr)
	}
	if srv.ReadTimeout == 0 || srv.WriteTimeout == 0 {
		t.Error("server timeouts must be set")
	}

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("got %d %q", resp.StatusCode, body)
	}

	resp2, err := http.Get(ts.URL + "/download/segments.csv")
	if err != nil {
		t.Fatalf("GET download: %v", err)
	}
	defer resp2.Body.Close()
	csvBody, _ := io.ReadAll(resp2.Body)
	want := "no_segmento,montante_total\nRenda Fixa,1000.00\nRenda Variável,500.00\n"
	if string(csvBody) != want {
		t.Errorf("plain download = %q, want %q", csvBody, want)
	}
}

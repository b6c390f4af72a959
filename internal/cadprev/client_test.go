package cadprev

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpps-dados/carteira/internal/domain"
)

var testQuery = domain.Query{CNPJ: "29131075000193", UF: "RJ", Year: 2025}

func TestFetchPortfolioSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("nr_cnpj_entidade") != "29131075000193" || q.Get("sg_uf") != "RJ" || q.Get("dt_ano") != "2025" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"no_segmento": "Renda Fixa", "dt_mes_bimestre": 1, "vl_total_atual": 1500.25, "id_ativo": "A1", "no_fundo": "FI X"},
			{"no_segmento": "Renda Variável", "dt_mes_bimestre": "2", "vl_total_atual": "300.10", "id_ativo": 77}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	records, err := client.FetchPortfolio(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	r0 := records[0]
	if r0.Segment != "Renda Fixa" || r0.Period != 1 || r0.AssetID != "A1" {
		t.Errorf("records[0] = %+v", r0)
	}
	if !r0.CurrentValue.Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("records[0].CurrentValue = %s, want 1500.25", r0.CurrentValue)
	}
	if string(r0.Attributes["no_fundo"]) != `"FI X"` {
		t.Errorf("records[0] extra attribute = %s, want \"FI X\"", r0.Attributes["no_fundo"])
	}

	r1 := records[1]
	if r1.Period != 2 || r1.AssetID != "77" {
		t.Errorf("records[1] = %+v, want period 2 asset 77", r1)
	}
	if !r1.CurrentValue.Equal(decimal.RequireFromString("300.10")) {
		t.Errorf("records[1].CurrentValue = %s, want 300.10", r1.CurrentValue)
	}
}

func TestFetchPortfolioKeepsBaseQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("formato") != "json" {
			t.Errorf("base query parameter lost: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/DAIR_CARTEIRA?formato=json", time.Second)
	records, err := client.FetchPortfolio(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestFetchPortfolioNullValueCountsAsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"no_segmento": null, "dt_mes_bimestre": 3, "vl_total_atual": null}]}`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, time.Second).FetchPortfolio(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !records[0].CurrentValue.IsZero() {
		t.Errorf("CurrentValue = %s, want 0", records[0].CurrentValue)
	}
	if records[0].Segment != "" {
		t.Errorf("Segment = %q, want empty", records[0].Segment)
	}
}

func TestFetchPortfolioErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    Kind
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`internal failure`))
			},
			want: KindHTTPStatus,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: KindHTTPStatus,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>maintenance</html>`))
			},
			want: KindMalformedResponse,
		},
		{
			name: "missing data key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items": []}`))
			},
			want: KindMalformedResponse,
		},
		{
			name: "missing value key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data": [{"no_segmento": "A", "dt_mes_bimestre": 1}]}`))
			},
			want: KindMalformedResponse,
		},
		{
			name: "non numeric value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data": [{"no_segmento": "A", "dt_mes_bimestre": 1, "vl_total_atual": "n/a"}]}`))
			},
			want: KindMalformedResponse,
		},
		{
			name: "fractional period",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data": [{"no_segmento": "A", "dt_mes_bimestre": 1.5, "vl_total_atual": 1}]}`))
			},
			want: KindMalformedResponse,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
				w.Write([]byte(`{"data": []}`))
			},
			want: KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, 50*time.Millisecond)
			_, err := client.FetchPortfolio(context.Background(), testQuery)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			kind, ok := KindOf(err)
			if !ok {
				t.Fatalf("err = %T (%v), want *FetchError", err, err)
			}
			if kind != tt.want {
				t.Errorf("kind = %s, want %s (err: %v)", kind, tt.want, err)
			}
		})
	}
}

func TestFetchPortfolioStatusErrorDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).FetchPortfolio(context.Background(), testQuery)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", fe.StatusCode)
	}
	if len(fe.Body) != bodyExcerptLen+3 {
		t.Errorf("body excerpt length = %d, want %d", len(fe.Body), bodyExcerptLen+3)
	}
}

func TestFetchPortfolioConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).FetchPortfolio(context.Background(), testQuery)
	if kind, _ := KindOf(err); kind != KindConnection {
		t.Errorf("kind = %s, want %s (err: %v)", kind, KindConnection, err)
	}
}

func TestFetchPortfolioContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL, 5*time.Second).FetchPortfolio(ctx, testQuery)
	if kind, _ := KindOf(err); kind != KindTimeout {
		t.Errorf("kind = %s, want %s (err: %v)", kind, KindTimeout, err)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindTimeout:           "timeout",
		KindConnection:        "connection_failure",
		KindHTTPStatus:        "http_status",
		KindMalformedResponse: "malformed_response",
		KindCanceled:          "canceled",
		Kind(0):               "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestFetchPortfolioCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := NewClient(server.URL, 5*time.Second).FetchPortfolio(ctx, testQuery)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kind, _ := KindOf(err); kind != KindCanceled {
		t.Errorf("kind = %s, want %s (err: %v)", kind, KindCanceled, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want it to wrap context.Canceled", err)
	}
}

func TestFetchPortfolioWarnsOnRedirectedHost(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"no_segmento": "A", "dt_mes_bimestre": 1, "vl_total_atual": 10, "id_ativo": "X"}]}`))
	}))
	defer target.Close()

	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+r.URL.RequestURI(), http.StatusFound)
	}))
	defer front.Close()

	records, err := NewClient(front.URL, time.Second).FetchPortfolio(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}

	out := logs.String()
	if !strings.Contains(out, "cadprev: unexpected response host") {
		t.Fatalf("missing host warning in logs: %q", out)
	}
	if !strings.Contains(out, strings.TrimPrefix(target.URL, "http://")) {
		t.Errorf("warning does not name the redirected host: %q", out)
	}
}

func TestFetchPortfolioNoHostWarningWithoutRedirect(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, time.Second).FetchPortfolio(context.Background(), testQuery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(logs.String(), "unexpected response host") {
		t.Errorf("unexpected host warning: %q", logs.String())
	}
}

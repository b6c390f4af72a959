package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rpps-dados/carteira/internal/cadprev"
	"github.com/rpps-dados/carteira/internal/config"
	"github.com/rpps-dados/carteira/internal/dashboard"
	"github.com/rpps-dados/carteira/internal/domain"
	"github.com/rpps-dados/carteira/internal/export"
	"github.com/rpps-dados/carteira/internal/logging"
	"github.com/rpps-dados/carteira/internal/portfolio"
)

const shutdownTimeout = 10 * time.Second

func newApp() *cli.App {
	return &cli.App{
		Name:  "carteira",
		Usage: "consolida a carteira de investimentos de um RPPS a partir do CADPREV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cnpj", Usage: "CNPJ da entidade (sobrepõe CNPJ_ENTIDADE)"},
			&cli.StringFlag{Name: "uf", Usage: "UF da entidade (sobrepõe UF_ENTIDADE)"},
			&cli.IntFlag{Name: "ano", Usage: "ano de referência (sobrepõe ANO_CONSULTA)"},
			&cli.StringFlag{Name: "output-dir", Usage: "diretório de saída (sobrepõe OUTPUT_DIR)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "report",
				Usage:  "busca a carteira, agrega e grava os arquivos de saída",
				Action: runReport,
			},
			{
				Name:  "dashboard",
				Usage: "gera os arquivos e serve o painel até SIGINT/SIGTERM",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "porta HTTP (sobrepõe HTTP_PORT)"},
				},
				Action: runDashboard,
			},
		},
	}
}

// loadConfig merges environment configuration with command-line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Load()
	if c.IsSet("cnpj") {
		cfg.CNPJ = config.NormalizeCNPJ(c.String("cnpj"))
	}
	if c.IsSet("uf") {
		cfg.UF = config.NormalizeUF(c.String("uf"))
	}
	if c.IsSet("ano") {
		cfg.SetYear(c.Int("ano"))
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("port") {
		cfg.HTTPPort = c.String("port")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// pipeline holds everything one run needs once configuration is settled.
type pipeline struct {
	cfg       config.Config
	format    export.CSVFormat
	portfolio *portfolio.Service
	logCloser io.Closer
}

func newPipeline(c *cli.Context) (*pipeline, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	scheme, err := domain.ParsePeriodScheme(cfg.PeriodScheme)
	if err != nil {
		closer.Close()
		return nil, err
	}
	format, err := export.ParseCSVFormat(cfg.CSVFormat)
	if err != nil {
		closer.Close()
		return nil, err
	}

	client := cadprev.NewClient(cfg.APIURL, cfg.RequestTimeout)
	svc := portfolio.NewService(client, portfolio.Options{
		Scheme:         scheme,
		RejectNegative: cfg.RejectNegative,
	})

	return &pipeline{cfg: cfg, format: format, portfolio: svc, logCloser: closer}, nil
}

func (p *pipeline) Close() error {
	return p.logCloser.Close()
}

// run fetches, aggregates and exports one report.
func (p *pipeline) run(ctx context.Context) (domain.Report, error) {
	q := p.cfg.Query()
	slog.Info("starting run", "cnpj", q.CNPJ, "uf", q.UF, "year", q.Year, "url", p.cfg.APIURL)

	report, err := p.portfolio.Build(ctx, q)
	if err != nil {
		return domain.Report{}, err
	}

	writers := []export.Writer{export.NewFileWriter(p.cfg.OutputDir, p.format, p.cfg.XLSXEnabled)}
	if p.cfg.SheetsSpreadsheetID != "" {
		sw, err := export.NewSheetsWriter(ctx, p.cfg.SheetsSpreadsheetID, p.cfg.GoogleCredentialsJSON)
		if err != nil {
			return domain.Report{}, err
		}
		writers = append(writers, sw)
	}

	if err := export.NewService(writers...).Export(ctx, report); err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

func runReport(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	_, err = p.run(c.Context)
	return err
}

func runDashboard(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := p.run(c.Context)
	if err != nil {
		return err
	}

	srv := dashboard.NewServer(p.cfg.HTTPPort, report, p.format)
	return serve(c.Context, srv)
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hepkit/jetcorr/internal/adapters/report"
	"github.com/hepkit/jetcorr/internal/adapters/sink"
	"github.com/hepkit/jetcorr/internal/app"
	"github.com/hepkit/jetcorr/internal/config"
	"github.com/hepkit/jetcorr/internal/domain/acceptance"
	"github.com/hepkit/jetcorr/internal/domain/correlation"
	"github.com/hepkit/jetcorr/internal/domain/mixing"
	"github.com/hepkit/jetcorr/internal/toygen"
	"github.com/hepkit/jetcorr/pkg/logger"
	"github.com/hepkit/jetcorr/pkg/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	svc, mem := buildService(cfg)

	gen := toygen.NewGenerator(
		toygen.WithSeed(cfg.Seed),
		toygen.WithEvents(cfg.Events),
	)

	log.Info(ctx, "running analysis",
		logger.Int("events", cfg.Events),
		logger.Float64("selected_radius", cfg.SelectedRadius))

	svc.Run(ctx, gen.Sample())
	svc.RunTruth(ctx, gen.TruthSample())

	for _, hname := range []string{"jeth_corr", "jeth_corr_inclusive", "mixjeth_corr"} {
		log.Info(ctx, "fill summary",
			logger.String("name", hname),
			logger.Int("entries", mem.Entries(hname)))
	}

	if cfg.ReportPath != "" {
		if err := report.RenderFile(cfg.ReportPath, mem, "jetcorr run"); err != nil {
			log.Error(ctx, "report failed", logger.Error(err))
			return
		}
		log.Info(ctx, "report written", logger.String("path", cfg.ReportPath))
	}
}

// buildService assembles the selection, mixing and correlation layers from
// a validated config, returning the service and the sink it fills.
func buildService(cfg *config.Config) (*app.Service, *sink.Memory) {
	// Mappings were validated at load time.
	est, _ := cfg.Estimator()
	splitMode, _ := cfg.Split()
	mixPolicy, _ := cfg.Mixing()
	eventBits, _ := cfg.EventBits()
	trackBits, _ := cfg.TrackBits()

	mem := sink.NewMemory()
	registerHistograms(mem)

	jets := acceptance.NewJetSelector(
		acceptance.WithAreaFraction(cfg.AreaFractionMin),
		acceptance.WithLeadConstituentPtWindow(cfg.LeadConstituentPtMin, cfg.LeadConstituentPtMax),
		acceptance.WithLeadConstituentCheckForTruth(cfg.CheckLeadConstituentTruth),
		acceptance.WithJetEtaWindow(cfg.JetEtaMin, cfg.JetEtaMax),
		acceptance.WithTrackEtaWindow(cfg.TrackEtaMin, cfg.TrackEtaMax),
	)
	events := acceptance.NewEventSelector(
		acceptance.WithVertexZCut(cfg.VertexZCut),
		acceptance.WithCentralityWindow(cfg.CentralityMin, cfg.CentralityMax, est),
		acceptance.WithOccupancyWindow(cfg.OccupancyMin, cfg.OccupancyMax),
		acceptance.WithRequiredBits(eventBits),
		acceptance.WithSkipMBGap(cfg.SkipMBGap),
	)
	acc := correlation.NewAccumulator(mem, jets,
		correlation.WithSelectedRadius(cfg.SelectedRadius),
		correlation.WithTrackSelection(trackBits),
		correlation.WithDijetPtThresholds(cfg.LeadingJetPtMin, cfg.SubleadingJetPtMin),
		correlation.WithPtHat(cfg.PtHatExponent, cfg.PtHatMaxDetector, cfg.PtHatMaxParticle, cfg.PtHatAbsoluteMin),
		correlation.WithEtaGaps(cfg.EtaGapLow, cfg.EtaGapHigh),
		correlation.WithCorrTrackPtMax(cfg.CorrTrackPtMax),
		correlation.WithMixPolicy(mixPolicy),
	)

	poolOpts := []mixing.Option{
		mixing.WithZVertexEdges(cfg.ZVtxBins),
		mixing.WithMultiplicityEdges(cfg.MultiplicityBins),
		mixing.WithDepth(cfg.MixingDepth),
	}
	svc := app.NewService(acc,
		app.WithEventSelector(events),
		app.WithPools(mixing.NewPool(poolOpts...), mixing.NewPool(poolOpts...)),
		app.WithCentralityEstimator(est),
		app.WithSplitMode(splitMode),
	)
	return svc, mem
}

// registerHistograms declares binned axes for the monitoring spectra the
// report renders; everything else stays in raw series form.
func registerHistograms(mem *sink.Memory) {
	for _, hname := range []string{"jet_pt", "jet_pt_truth", "leadjet_pt", "subleadjet_pt", "track_pt", "track_pt_truth"} {
		mem.Register(hname, sink.UniformAxis(100, 0, 100))
	}
	for _, hname := range []string{"inclusivejet_corrpt", "jet_corrpt_areasub", "leadjet_corrpt", "subleadjet_corrpt"} {
		mem.Register(hname, sink.UniformAxis(120, -20, 100))
	}
	mem.Register("event_posz", sink.UniformAxis(40, -10, 10))
	mem.Register("event_mult", sink.UniformAxis(50, 0, 50))
	mem.Register("event_centrality", sink.UniformAxis(100, 0, 100))
}

func serveMetrics(ctx context.Context, addr string) {
	log := logger.Named("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}

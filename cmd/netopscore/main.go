// Command netopscore runs the network-operations document, device-parse
// and LLM-analysis platform. main.go stays thin and delegates to run(),
// with dependency construction kept in one place rather than scattered
// across service constructors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"netopscore/internal/analysis"
	"netopscore/internal/auth"
	"netopscore/internal/blobstore"
	"netopscore/internal/config"
	"netopscore/internal/database"
	"netopscore/internal/deviceparser"
	"netopscore/internal/documents"
	"netopscore/internal/events"
	"netopscore/internal/foldertree"
	"netopscore/internal/httpapi"
	"netopscore/internal/llmadapter"
	"netopscore/internal/logging"
	custommw "netopscore/internal/middleware"
	"netopscore/internal/projects"
	"netopscore/internal/summary"
	"netopscore/internal/topology"
)

func main() {
	healthCheck := flag.Bool("healthcheck", false, "perform a health check against a running instance and exit")
	configPath := flag.String("config", os.Getenv("NETOPS_CONFIG_PATH"), "path to a YAML config file (optional)")
	flag.Parse()

	if *healthCheck {
		performHealthCheck()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("netopscore: load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("netopscore: invalid config: %v", err)
	}

	run(cfg)
}

func run(cfg config.Config) {
	ctx := context.Background()

	logCfg := logging.Config{Level: cfg.LogLevel, Development: cfg.Development}
	reqLog := logging.NewRequestLogger(logCfg)
	workerLog, err := logging.NewWorkerLogger(logCfg)
	if err != nil {
		log.Fatalf("netopscore: build worker logger: %v", err)
	}
	defer workerLog.Sync()

	dbManager, err := database.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("netopscore: open database: %v", err)
	}
	defer dbManager.Close()
	db := dbManager.DB()

	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		log.Fatalf("netopscore: create storage root: %v", err)
	}
	blobs, err := blobstore.New(db, cfg.StorageRoot)
	if err != nil {
		log.Fatalf("netopscore: open blob store: %v", err)
	}

	bus := events.New()
	defer bus.Close()

	folders := foldertree.New(db)
	docs := documents.New(db, blobs, folders)
	deviceSvc := deviceparser.New(db)
	summarySvc := summary.New(db, blobs)
	docs.OnConfigIngest = func(ctx context.Context, projectID, documentID, deviceName string, content []byte, sourceVersion int) error {
		if err := deviceSvc.Ingest(ctx, projectID, documentID, deviceName, content, sourceVersion); err != nil {
			return err
		}
		summarySvc.Invalidate(projectID)
		return bus.PublishConfigIngested(ctx, events.ConfigIngested{ProjectID: projectID, DeviceName: deviceName})
	}

	if err := bus.Subscribe(ctx, events.TopicConfigIngested, func(ctx context.Context, payload []byte) error {
		var ev events.ConfigIngested
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		workerLog.Infow("config ingested", "project_id", ev.ProjectID, "device_name", ev.DeviceName)
		return nil
	}); err != nil {
		log.Fatalf("netopscore: subscribe config-ingested: %v", err)
	}
	if err := bus.Subscribe(ctx, events.TopicAnalysisCompleted, func(ctx context.Context, payload []byte) error {
		var ev events.AnalysisCompleted
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		workerLog.Infow("analysis completed", "project_id", ev.ProjectID, "kind", ev.Kind, "device_name", ev.DeviceName, "succeeded", ev.Succeeded)
		return nil
	}); err != nil {
		log.Fatalf("netopscore: subscribe analysis-completed: %v", err)
	}

	var adapter analysis.Adapter
	if cfg.LLMEndpointURL == "" {
		reqLog.Warn().Msg("llm_endpoint_url is unset; analysis submissions will fail until configured")
		adapter = analysis.AdapterFunc(func(ctx context.Context, in analysis.AdapterInput) (analysis.AdapterOutput, error) {
			return analysis.AdapterOutput{}, http.ErrNotSupported
		})
	} else {
		adapter = llmadapter.New(cfg.LLMEndpointURL, cfg.LLMAdapterTimeout)
	}
	topo := topology.New(db)
	analysisCfg := analysis.DefaultConfig()
	analysisCfg.AdapterTimeout = cfg.LLMAdapterTimeout
	analysisCtl := analysis.New(db, blobs, bus, adapter, topo, workerLog, analysisCfg)

	projectSvc := projects.New(db)

	jwtCfg := auth.DefaultJWTConfig()
	secret, err := auth.LoadOrGenerateSecret(cfg.JWTSigningKeyPath)
	if err != nil {
		log.Fatalf("netopscore: load signing secret: %v", err)
	}
	jwtCfg.Secret = secret
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		log.Fatalf("netopscore: build jwt service: %v", err)
	}
	passwordSvc := auth.NewPasswordService(cfg.BcryptCost)
	loginLimiter := custommw.NewLoginRateLimiter(1, 5)

	deps := httpapi.Deps{
		DB:                  db,
		Blobs:               blobs,
		JWT:                 jwtSvc,
		Passwords:           passwordSvc,
		LoginLimiter:        loginLimiter,
		Projects:            projectSvc,
		Folders:             folders,
		Documents:           docs,
		Analysis:            analysisCtl,
		Topology:            topo,
		Summary:             summarySvc,
		MaxDeviceImageBytes: cfg.MaxDeviceImageBytes,
		Development:         cfg.Development,
		Log:                 reqLog,
	}

	gcCtx, gcCancel := context.WithCancel(ctx)
	defer gcCancel()
	go runBlobGC(gcCtx, blobs, workerLog)

	serverCfg := httpapi.DefaultConfig()
	serverCfg.Port = cfg.Port
	serverCfg.Development = cfg.Development

	srv := httpapi.New(serverCfg, deps)

	reqLog.Info().Str("port", cfg.Port).Msg("netopscore: starting")
	srv.Start(func(shutdownCtx context.Context) {
		bus.Close()
	})
}

// runBlobGC sweeps zero-refcount blob bytes off disk once an hour.
// Unref never deletes bytes itself, so without this sweep deleted
// projects and dropped versions would leak disk forever.
func runBlobGC(ctx context.Context, blobs *blobstore.Store, log *zap.SugaredLogger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := blobs.GC(ctx)
			if err != nil {
				log.Errorw("blob gc sweep failed", "err", err)
				continue
			}
			if removed > 0 {
				log.Infow("blob gc sweep", "removed", removed)
			}
		}
	}
}

// performHealthCheck hits the configured port's /health endpoint and
// exits non-zero on failure, for use as a container health probe.
func performHealthCheck() {
	port := os.Getenv("NETOPS_PORT")
	if port == "" {
		port = "8080"
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://127.0.0.1:" + port + "/health")
	if err != nil {
		log.Fatalf("netopscore: health check failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("netopscore: health check returned status %d", resp.StatusCode)
	}
}

// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the NeuroTranslate gateway. The
// gateway fronts the neural backends (detection, translation, OCR, speech,
// chat) with a single HTTP API, keeps the translation history and renders
// downloadable export documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/api"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/buildinfo"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/chat"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/config"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/detect"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/export"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/extract"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/history"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/hooks"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/logging"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/normalize"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/ocr"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/pipeline"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/speech"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/translate"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/util"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("neurotranslate %s (%s, built %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	// Environment overrides from a local .env, when present.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	cfg, err := config.LoadConfigOptional(*configPath, true)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	util.SetLogLevel(cfg.Debug)
	if err := logging.ConfigureLogOutput(util.WritablePath(), cfg.LoggingToFile, cfg.LogsMaxTotalSizeMB); err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}

	log.Infof("starting neurotranslate %s (%s)", buildinfo.Version, buildinfo.Commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("gateway exited with error: %v", err)
	}
	log.Info("gateway stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	langs := cfg.LangTable()
	log.Infof("supported languages: %v", langs.Codes())

	// Language detection.
	detector, closeDetector, err := buildDetector(cfg)
	if err != nil {
		return err
	}
	defer closeDetector()

	// Translation backend.
	translator, err := translate.NewNLLBTranslator(
		cfg.Translator.BaseURL, cfg.Translator.Model, cfg.Translator.MaxLength,
		langs, config.Timeout(cfg.Translator.TimeoutSeconds))
	if err != nil {
		return fmt.Errorf("failed to build translator: %w", err)
	}

	// Input adapters.
	recognizer := ocr.NewHTTPRecognizer(ocr.Config{
		BaseURL:        cfg.OCR.BaseURL,
		LatinReader:    cfg.OCR.LatinReader,
		ArabicReader:   cfg.OCR.ArabicReader,
		SelectBySource: cfg.OCR.SelectBySource,
		Timeout:        config.Timeout(cfg.OCR.TimeoutSeconds),
	})
	transcriber, err := buildTranscriber(ctx, cfg)
	if err != nil {
		return err
	}
	normalizer := normalize.New(extract.NewRegistry(), recognizer, transcriber,
		"", lang.Code(cfg.DefaultSourceLang))

	// Speech synthesis is optional.
	var synthesizer speech.Synthesizer
	if cfg.TTS.BaseURL != "" {
		synthesizer = speech.NewHTTPSynthesizer(cfg.TTS.BaseURL, config.Timeout(cfg.TTS.TimeoutSeconds))
	}

	// History store.
	store, err := buildHistoryStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warnf("failed to close history store: %v", err)
		}
	}()

	// Automation hooks.
	bus := hooks.NewEventBus()
	defer bus.Shutdown()
	if cfg.Hooks.Enabled {
		manager, err := hooks.NewManager(cfg.Hooks.Dir, bus)
		if err != nil {
			return fmt.Errorf("failed to create hook manager: %w", err)
		}
		if err := manager.LoadHooks(); err != nil {
			return fmt.Errorf("failed to load hooks: %w", err)
		}
		manager.SubscribeToAllEvents()
		if err := manager.StartWatcher(); err != nil {
			log.Warnf("hook hot-reload disabled: %v", err)
		} else {
			defer manager.StopWatcher()
		}
	}

	// Export renderers, with optional object-storage mirroring.
	exports := export.NewRegistry(cfg.Export.FontPath)
	var artifacts *export.ArtifactStore
	if cfg.ArtifactStore.Endpoint != "" {
		artifacts, err = export.NewArtifactStore(ctx, export.ArtifactStoreConfig{
			Endpoint:    cfg.ArtifactStore.Endpoint,
			Bucket:      cfg.ArtifactStore.Bucket,
			AccessKey:   cfg.ArtifactStore.AccessKey,
			SecretKey:   cfg.ArtifactStore.SecretKey,
			UseSSL:      cfg.ArtifactStore.UseSSL,
			Compression: cfg.ArtifactStore.Compression,
		})
		if err != nil {
			return fmt.Errorf("failed to connect artifact store: %w", err)
		}
		log.Infof("mirroring export artifacts to %s/%s", cfg.ArtifactStore.Endpoint, cfg.ArtifactStore.Bucket)
	}

	// Conversational assistant is optional.
	var assistant chat.Assistant
	if cfg.Chat.BaseURL != "" {
		assistant = chat.NewHTTPAssistant(cfg.Chat.BaseURL, cfg.Chat.Model,
			config.Timeout(cfg.Chat.TimeoutSeconds))
	}

	orchestrator, err := pipeline.New(pipeline.Config{
		Normalizer:    normalizer,
		Detector:      detector,
		Translator:    translator,
		Synthesizer:   synthesizer,
		Store:         store,
		Bus:           bus,
		Langs:         langs,
		AudioDir:      cfg.TTS.AudioDir,
		DefaultSource: lang.Code(cfg.DefaultSourceLang),
		Timeouts: pipeline.Timeouts{
			Normalize:  config.Timeout(cfg.OCR.TimeoutSeconds),
			Detect:     config.Timeout(cfg.Detector.TimeoutSeconds),
			Translate:  config.Timeout(cfg.Translator.TimeoutSeconds),
			Synthesize: config.Timeout(cfg.TTS.TimeoutSeconds),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	server := api.NewServer(cfg, api.Deps{
		Pipeline:  orchestrator,
		Store:     store,
		Exports:   exports,
		Artifacts: artifacts,
		Assistant: assistant,
		Langs:     langs,
		Bus:       bus,
		AudioDir:  cfg.TTS.AudioDir,
	})

	if cfg.OpenPanel {
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		url := fmt.Sprintf("http://%s:%d/healthz", host, cfg.Port)
		go func() {
			if err := open.Run(url); err != nil {
				log.Warnf("failed to open panel: %v", err)
			}
		}()
	}

	return server.Start(ctx)
}

// buildDetector selects the detection backend. The second return value shuts
// it down; it is a no-op for the HTTP backend.
func buildDetector(cfg *config.Config) (detect.Detector, func(), error) {
	switch cfg.Detector.Backend {
	case "", "http":
		d := detect.NewHTTPDetector(cfg.Detector.BaseURL, cfg.Detector.Model,
			config.Timeout(cfg.Detector.TimeoutSeconds))
		return d, func() {}, nil
	case "onnx":
		d, err := detect.NewONNXDetector(detect.ONNXConfig{
			ModelPath:         cfg.Detector.ModelPath,
			VocabPath:         cfg.Detector.VocabPath,
			LabelsPath:        cfg.Detector.LabelsPath,
			SharedLibraryPath: cfg.Detector.SharedLibraryPath,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load onnx detector: %w", err)
		}
		return d, func() {
			if err := d.Close(); err != nil {
				log.Warnf("failed to close onnx detector: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown detector backend %q", cfg.Detector.Backend)
	}
}

// buildTranscriber prepares the local Vosk models, fetching missing ones when
// a download base URL is configured.
func buildTranscriber(ctx context.Context, cfg *config.Config) (speech.Transcriber, error) {
	dirs := make(map[lang.Code]string, len(cfg.STT.Models))
	for code, dir := range cfg.STT.Models {
		dirs[lang.Code(code)] = dir
	}
	if len(dirs) == 0 {
		log.Warn("no speech models configured, audio input disabled")
	}

	if cfg.STT.DownloadBaseURL != "" && len(dirs) > 0 {
		if err := speech.DownloadModels(ctx, cfg.STT.DownloadBaseURL, cfg.STT.ModelDir, dirs); err != nil {
			log.Warnf("speech model download incomplete: %v", err)
		}
	}

	manager := speech.GetModelManager(cfg.STT.ModelDir, dirs)
	return speech.NewVoskTranscriber(manager), nil
}

// buildHistoryStore picks the history backend. SQL stores are selected
// through environment variables carrying their DSNs; the JSONL file store is
// the default.
func buildHistoryStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	if dsn := os.Getenv("HISTORY_PG_DSN"); dsn != "" {
		store, err := history.NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres history store: %w", err)
		}
		log.Info("history store: postgres")
		return store, nil
	}
	if path := os.Getenv("HISTORY_SQLITE_PATH"); path != "" {
		store, err := history.NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite history store: %w", err)
		}
		log.Infof("history store: sqlite at %s", path)
		return store, nil
	}

	store, err := history.NewFileStore(cfg.History.Path, cfg.History.ArchiveMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	log.Infof("history store: file at %s", cfg.History.Path)
	return store, nil
}

// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the NeuroTranslate
// gateway. It handles loading and parsing the YAML configuration file and
// gives structured access to server settings, backend adapter endpoints,
// the language table, history store selection, and export options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/util"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the API server will bind.
	// Default is empty ("") to bind all interfaces. Use "127.0.0.1" for
	// local-only access.
	Host string `yaml:"host"`
	// Port is the network port on which the API server will listen.
	Port int `yaml:"port"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile controls whether logs go to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file"`

	// LogsMaxTotalSizeMB limits the total size (in MB) of the logs directory.
	// When exceeded, the oldest rotated files are deleted. 0 disables the cap.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb"`

	// ManagementKey protects mutating API routes. Plaintext values are hashed
	// with bcrypt on first load and written back. Empty disables auth.
	ManagementKey string `yaml:"management-key"`

	// OpenPanel opens the gateway URL in the default browser on startup.
	OpenPanel bool `yaml:"open-panel"`

	// DefaultSourceLang is the fallback when detection cannot resolve a
	// supported language.
	DefaultSourceLang string `yaml:"default-source-lang"`

	// Languages extends or overrides the built-in language table.
	Languages []lang.Language `yaml:"languages"`

	// Detector configures the language detection backend.
	Detector DetectorConfig `yaml:"detector"`

	// Translator configures the neural translation backend.
	Translator TranslatorConfig `yaml:"translator"`

	// OCR configures the optical character recognition backend.
	OCR OCRConfig `yaml:"ocr"`

	// TTS configures the speech synthesis backend.
	TTS TTSConfig `yaml:"tts"`

	// STT configures the local speech transcription models.
	STT STTConfig `yaml:"stt"`

	// Chat configures the conversational assistant backend.
	Chat ChatConfig `yaml:"chat"`

	// History configures the translation history store.
	History HistoryConfig `yaml:"history"`

	// Export configures the artifact renderers.
	Export ExportConfig `yaml:"export"`

	// ArtifactStore configures optional object-storage mirroring of
	// generated artifacts.
	ArtifactStore ArtifactStoreConfig `yaml:"artifact-store"`

	// Hooks configures the automation hook system.
	Hooks HooksConfig `yaml:"hooks"`
}

// DetectorConfig selects and configures the language detection adapter.
type DetectorConfig struct {
	// Backend is "http" (remote classification endpoint) or "onnx" (local
	// model via the ONNX runtime).
	Backend string `yaml:"backend"`
	// BaseURL is the remote classification endpoint for the http backend.
	BaseURL string `yaml:"base-url"`
	// Model names the remote classification model.
	Model string `yaml:"model"`
	// ModelPath is the local ONNX classifier path for the onnx backend.
	ModelPath string `yaml:"model-path"`
	// VocabPath is the tokenizer vocabulary for the onnx backend.
	VocabPath string `yaml:"vocab-path"`
	// LabelsPath maps classifier output indexes to language labels.
	LabelsPath string `yaml:"labels-path"`
	// SharedLibraryPath locates the ONNX runtime shared library.
	SharedLibraryPath string `yaml:"shared-library-path"`
	// TimeoutSeconds bounds one detection call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// TranslatorConfig configures the seq2seq translation backend.
type TranslatorConfig struct {
	// BaseURL is the inference server endpoint.
	BaseURL string `yaml:"base-url"`
	// Model names the translation model served at BaseURL.
	Model string `yaml:"model"`
	// MaxLength bounds input truncation and generated output, in tokens.
	MaxLength int `yaml:"max-length"`
	// TimeoutSeconds bounds one translation call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// OCRConfig configures the OCR backend and its reader profiles.
type OCRConfig struct {
	// BaseURL is the OCR service endpoint.
	BaseURL string `yaml:"base-url"`
	// LatinReader and ArabicReader name the recognizer profiles exposed by
	// the OCR service for the two script families.
	LatinReader  string `yaml:"latin-reader"`
	ArabicReader string `yaml:"arabic-reader"`
	// SelectBySource switches reader selection from the target language to
	// the detected source script.
	SelectBySource bool `yaml:"select-by-source"`
	// TimeoutSeconds bounds one OCR call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// TTSConfig configures the speech synthesis backend.
type TTSConfig struct {
	// BaseURL is the synthesis service endpoint.
	BaseURL string `yaml:"base-url"`
	// AudioDir is where synthesized artifacts are written.
	AudioDir string `yaml:"audio-dir"`
	// TimeoutSeconds bounds one synthesis call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// STTConfig configures local Vosk speech transcription.
type STTConfig struct {
	// ModelDir is the directory containing per-language Vosk models.
	ModelDir string `yaml:"model-dir"`
	// Models maps a language code to its model subdirectory.
	Models map[string]string `yaml:"models"`
	// DownloadBaseURL, when set, enables fetching missing models.
	DownloadBaseURL string `yaml:"download-base-url"`
	// SampleRate is the expected PCM sample rate.
	SampleRate float64 `yaml:"sample-rate"`
	// TimeoutSeconds bounds one transcription call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// ChatConfig configures the conversational assistant backend.
type ChatConfig struct {
	// BaseURL is the chat completion endpoint.
	BaseURL string `yaml:"base-url"`
	// Model names the conversational model.
	Model string `yaml:"model"`
	// MaxTurns caps the per-session transcript length sent to the backend.
	MaxTurns int `yaml:"max-turns"`
	// TimeoutSeconds bounds one response generation call.
	TimeoutSeconds int `yaml:"timeout-seconds"`
}

// HistoryConfig selects the history store backend. The file backend is the
// default; SQL backends are selected through environment variables the same
// way the DSN is normally provisioned (HISTORY_PG_DSN, HISTORY_SQLITE_PATH).
type HistoryConfig struct {
	// Path is the JSONL history file for the file backend.
	Path string `yaml:"path"`
	// ArchiveMaxBytes rolls the JSONL file into a gzip archive when it grows
	// past this size. 0 disables archival.
	ArchiveMaxBytes int64 `yaml:"archive-max-bytes"`
}

// ExportConfig configures the artifact renderers.
type ExportConfig struct {
	// FontPath is the Unicode-capable TTF used by the paginated renderer.
	FontPath string `yaml:"font-path"`
}

// ArtifactStoreConfig configures optional S3-compatible artifact mirroring.
type ArtifactStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access-key"`
	SecretKey string `yaml:"secret-key"`
	UseSSL    bool   `yaml:"use-ssl"`
	// Compression is "none", "gzip" or "brotli".
	Compression string `yaml:"compression"`
}

// HooksConfig configures the automation hook system.
type HooksConfig struct {
	Enabled bool `yaml:"enabled"`
	// Dir contains the YAML hook definitions.
	Dir string `yaml:"dir"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads YAML from configFile. If optional is true and the
// file is missing or empty, it returns a default Config instead of an error.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && (os.IsNotExist(err) || errors.Is(err, syscall.EISDIR)) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if optional && len(strings.TrimSpace(string(data))) == 0 {
		return defaultConfig(), nil
	}

	cfg := defaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Hash the management key if plaintext is detected. A value is considered
	// hashed already when it carries a bcrypt prefix ($2a$, $2b$, or $2y$).
	// The hashed form is written back so the plaintext never stays on disk.
	if cfg.ManagementKey != "" && !looksLikeBcrypt(cfg.ManagementKey) {
		hashed, errHash := hashSecret(cfg.ManagementKey)
		if errHash != nil {
			return nil, fmt.Errorf("failed to hash management key: %w", errHash)
		}
		cfg.ManagementKey = hashed
		if err := writeBack(configFile, cfg); err != nil {
			log.Warnf("failed to persist hashed management key: %v", err)
		}
	}

	if cfg.LogsMaxTotalSizeMB < 0 {
		cfg.LogsMaxTotalSizeMB = 0
	}
	if cfg.Translator.MaxLength <= 0 {
		cfg.Translator.MaxLength = 512
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Port:              8317,
		DefaultSourceLang: "en",
		Detector: DetectorConfig{
			Backend:        "http",
			Model:          "papluca/xlm-roberta-base-language-detection",
			TimeoutSeconds: 120,
		},
		Translator: TranslatorConfig{
			Model:          "facebook/nllb-200-distilled-600M",
			MaxLength:      512,
			TimeoutSeconds: 120,
		},
		OCR: OCRConfig{
			LatinReader:    "latin",
			ArabicReader:   "arabic",
			TimeoutSeconds: 120,
		},
		TTS: TTSConfig{
			AudioDir:       "audio",
			TimeoutSeconds: 120,
		},
		STT: STTConfig{
			ModelDir:       "models/vosk",
			SampleRate:     16000,
			TimeoutSeconds: 120,
		},
		Chat: ChatConfig{
			Model:          "microsoft/DialoGPT-medium",
			MaxTurns:       20,
			TimeoutSeconds: 120,
		},
		History: HistoryConfig{
			Path: "history.jsonl",
		},
		Export: ExportConfig{
			FontPath: "fonts/DejaVuSans.ttf",
		},
		Hooks: HooksConfig{
			Dir: "hooks",
		},
	}
}

// Timeout converts a per-adapter timeout-seconds value into a duration,
// falling back to two minutes when unset.
func Timeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}

// VerifyManagementKey checks a presented key against the stored bcrypt hash.
// An empty configured key disables authentication entirely.
func (c *Config) VerifyManagementKey(presented string) bool {
	if c.ManagementKey == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(c.ManagementKey), []byte(presented)) == nil
}

// LangTable builds the effective language table from defaults plus config.
func (c *Config) LangTable() *lang.Table {
	return lang.NewTable(c.Languages...)
}

// writeBack persists the config atomically, preserving the original file
// permissions when the file already exists.
func writeBack(configFile string, cfg *Config) error {
	perm := os.FileMode(0o600)
	if info, err := os.Stat(configFile); err == nil {
		perm = info.Mode().Perm()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return util.SecureWrite(configFile, data, perm)
}

func looksLikeBcrypt(v string) bool {
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}

func hashSecret(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

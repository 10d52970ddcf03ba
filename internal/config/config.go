package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  string          `json:"log_level" yaml:"log_level"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Generator GeneratorConfig `json:"generator" yaml:"generator"`
	Report    ReportConfig    `json:"report" yaml:"report"`
	API       APIConfig       `json:"api" yaml:"api"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Stats     StatsConfig     `json:"stats" yaml:"stats"`
	Anomalies AnomaliesConfig `json:"anomalies" yaml:"anomalies"`
}

type IngestConfig struct {
	ChannelBuffer int             `json:"channel_buffer" yaml:"channel_buffer"`
	REST          RESTConfig      `json:"rest" yaml:"rest"`
	Syslog        SyslogConfig    `json:"syslog" yaml:"syslog"`
	TCPStream     TCPStreamConfig `json:"tcp_stream" yaml:"tcp_stream"`
	FileTail      FileTailConfig  `json:"file_tail" yaml:"file_tail"`
	Kafka         KafkaConfig     `json:"kafka" yaml:"kafka"`
	Parser        ParserConfig    `json:"parser" yaml:"parser"`
}

type RESTConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type SyslogConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	UDPAddr string `json:"udp_addr" yaml:"udp_addr"`
	TCPAddr string `json:"tcp_addr" yaml:"tcp_addr"`
}

type TCPStreamConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type FileTailConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	StartAtEnd bool     `json:"start_at_end" yaml:"start_at_end"`
	Files      []string `json:"files" yaml:"files"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

type ParserConfig struct {
	Timezone        string `json:"timezone" yaml:"timezone"`
	DefaultStreamID string `json:"default_stream_id" yaml:"default_stream_id"`
}

type DetectionConfig struct {
	WindowSize int     `json:"window_size" yaml:"window_size"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
}

type GeneratorConfig struct {
	Enabled          bool          `json:"enabled" yaml:"enabled"`
	StreamID         string        `json:"stream_id" yaml:"stream_id"`
	Interval         time.Duration `json:"interval" yaml:"interval"`
	Length           int           `json:"length" yaml:"length"`
	Amplitude        float64       `json:"amplitude" yaml:"amplitude"`
	SeasonalPeriod   int           `json:"seasonal_period" yaml:"seasonal_period"`
	NoiseLevel       float64       `json:"noise_level" yaml:"noise_level"`
	Drift            float64       `json:"drift" yaml:"drift"`
	OutlierRate      float64       `json:"outlier_rate" yaml:"outlier_rate"`
	OutlierMagnitude float64       `json:"outlier_magnitude" yaml:"outlier_magnitude"`
	Seed             int64         `json:"seed" yaml:"seed"`
}

type ReportConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Color   bool `json:"color" yaml:"color"`
}

type APIConfig struct {
	Enabled bool       `json:"enabled" yaml:"enabled"`
	Addr    string     `json:"addr" yaml:"addr"`
	Live    LiveConfig `json:"live" yaml:"live"`
}

type LiveConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	BufferSize int  `json:"buffer_size" yaml:"buffer_size"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type StatsConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

type AnomaliesConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Ingest: IngestConfig{
			ChannelBuffer: 10000,
			REST:          RESTConfig{Enabled: true, Addr: ":8080"},
			Syslog:        SyslogConfig{Enabled: false, UDPAddr: ":5514", TCPAddr: ":5514"},
			TCPStream:     TCPStreamConfig{Enabled: false, Addr: ":9000"},
			FileTail:      FileTailConfig{Enabled: false, StartAtEnd: true},
			Kafka:         KafkaConfig{Enabled: false},
			Parser:        ParserConfig{Timezone: "UTC", DefaultStreamID: "default"},
		},
		Detection: DetectionConfig{
			WindowSize: 50,
			Threshold:  2.5,
		},
		Generator: GeneratorConfig{
			Enabled:          true,
			StreamID:         "synthetic",
			Interval:         50 * time.Millisecond,
			Length:           1000,
			Amplitude:        1.0,
			SeasonalPeriod:   50,
			NoiseLevel:       0.5,
			Drift:            0.001,
			OutlierRate:      0.02,
			OutlierMagnitude: 10,
			Seed:             42,
		},
		Report:    ReportConfig{Enabled: true, Color: true},
		API:       APIConfig{Enabled: true, Addr: ":8081", Live: LiveConfig{Enabled: true, BufferSize: 256}},
		Storage:   StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:driftwatch.db?_pragma=busy_timeout(5000)"},
		Stats:     StatsConfig{StoreLimit: 5000},
		Anomalies: AnomaliesConfig{StoreLimit: 1000},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Ingest.ChannelBuffer <= 0 {
		cfg.Ingest.ChannelBuffer = 10000
	}
	if cfg.Ingest.Parser.Timezone == "" {
		cfg.Ingest.Parser.Timezone = "UTC"
	}
	if cfg.Ingest.Parser.DefaultStreamID == "" {
		cfg.Ingest.Parser.DefaultStreamID = "default"
	}
	if cfg.Generator.StreamID == "" {
		cfg.Generator.StreamID = "synthetic"
	}
	if cfg.Generator.Interval <= 0 {
		cfg.Generator.Interval = 50 * time.Millisecond
	}
	if cfg.Generator.SeasonalPeriod <= 0 {
		cfg.Generator.SeasonalPeriod = 50
	}
	if cfg.API.Live.BufferSize <= 0 {
		cfg.API.Live.BufferSize = 256
	}
	if cfg.Stats.StoreLimit <= 0 {
		cfg.Stats.StoreLimit = 5000
	}
	if cfg.Anomalies.StoreLimit <= 0 {
		cfg.Anomalies.StoreLimit = 1000
	}
}

func Validate(cfg *Config) error {
	if cfg.Detection.WindowSize <= 0 {
		return fmt.Errorf("detection.window_size must be a positive integer, got %d", cfg.Detection.WindowSize)
	}
	if math.IsNaN(cfg.Detection.Threshold) || math.IsInf(cfg.Detection.Threshold, 0) || cfg.Detection.Threshold <= 0 {
		return fmt.Errorf("detection.threshold must be a positive finite number, got %v", cfg.Detection.Threshold)
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Ingest.REST.Enabled && cfg.Ingest.REST.Addr == "" {
		return errors.New("ingest.rest.addr required when ingest.rest.enabled is true")
	}
	if cfg.Ingest.Syslog.Enabled && cfg.Ingest.Syslog.UDPAddr == "" && cfg.Ingest.Syslog.TCPAddr == "" {
		return errors.New("ingest.syslog.udp_addr or tcp_addr required when ingest.syslog.enabled is true")
	}
	if cfg.Ingest.TCPStream.Enabled && cfg.Ingest.TCPStream.Addr == "" {
		return errors.New("ingest.tcp_stream.addr required when ingest.tcp_stream.enabled is true")
	}
	if cfg.Ingest.FileTail.Enabled && len(cfg.Ingest.FileTail.Files) == 0 {
		return errors.New("ingest.file_tail.files required when ingest.file_tail.enabled is true")
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			return errors.New("ingest.kafka requires brokers, topic, group_id")
		}
	}
	if cfg.Generator.Enabled {
		if cfg.Generator.Length < 0 {
			return fmt.Errorf("generator.length must be >= 0, got %d", cfg.Generator.Length)
		}
		if cfg.Generator.NoiseLevel < 0 {
			return fmt.Errorf("generator.noise_level must be >= 0, got %v", cfg.Generator.NoiseLevel)
		}
		if cfg.Generator.OutlierRate < 0 || cfg.Generator.OutlierRate > 1 {
			return fmt.Errorf("generator.outlier_rate must be in [0, 1], got %v", cfg.Generator.OutlierRate)
		}
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

// NewStaticManager wraps an in-memory config without a backing file. Reload
// and Update become no-ops; Watch never fires.
func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return m.Get(), nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	if m.path != "" {
		if err := Save(m.path, cfg); err != nil {
			return err
		}
		if info, err := os.Stat(m.path); err == nil {
			m.modTime = info.ModTime()
		}
	}
	m.cfg.Store(cfg)
	return nil
}

func (m *Manager) NeedsReload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if m.path == "" {
		return
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}

package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Root        string        `yaml:"root" validate:"required"`
	HistoryFile string        `yaml:"historyFile" validate:"required"`
	MaxRecords  int           `yaml:"maxRecords" validate:"required|int|min:1"`
	Retention   time.Duration `yaml:"retention" validate:"required|min:1"`
	LockTimeout time.Duration `yaml:"lockTimeout" validate:"required|min:1"`
}

type ArchiveConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Workers  int           `yaml:"workers"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CorsConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Storage   StorageConfig   `yaml:"storage"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Cors      CorsConfig      `yaml:"cors"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

// Route is one API endpoint. Url is a net/http ServeMux pattern path.
type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}

func (r Route) Pattern() string {
	return r.Method + " " + r.Url
}

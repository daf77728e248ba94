package providers

import (
	"fmt"
	"medhistory/internal/structures"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8503)
	v.SetDefault("storage.root", "uploads")
	v.SetDefault("storage.historyFile", "medical_history.json")
	v.SetDefault("storage.maxRecords", 100)
	v.SetDefault("storage.retention", 7*24*time.Hour)
	v.SetDefault("storage.lockTimeout", 2*time.Second)
	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.ttl", 30*24*time.Hour)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", time.Hour)
	v.SetDefault("scheduler.workers", 4)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("cors.allowedOrigins", []string{"*"})
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("logger.level", "MH_LOG_LEVEL")
	v.BindEnv("storage.root", "MH_STORAGE_ROOT")
	v.BindEnv("storage.maxRecords", "MH_MAX_RECORDS")
	v.BindEnv("storage.retention", "MH_RETENTION")
	v.BindEnv("cache.enabled", "MH_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "MedicalHistoryDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

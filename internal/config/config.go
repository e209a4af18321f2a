package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"hire-oracle/internal/simulation"
)

// engineConfigName is looked up in DATA_PATH when ORACLE_CONFIG is unset.
const engineConfigName = "oracle.yaml"

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	ReportDir           string
	EngineConfigPath    string
	Forecast            simulation.ForecastConfig
	EnableMermaidCharts bool
}

// Load loads the configuration from .env files, an optional YAML engine
// config and environment variables, in increasing priority.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	reportDir := filepath.Join(dataPath, "reports")

	if err := os.MkdirAll(reportDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", reportDir).Msg("Failed to create report directory")
	}

	// 4. Engine settings: defaults < YAML file < environment
	forecast := simulation.DefaultForecastConfig()

	enginePath := getEnv("ORACLE_CONFIG", filepath.Join(dataPath, engineConfigName))
	fileCfg, err := loadEngineConfig(enginePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		enginePath = ""
	case err != nil:
		return nil, err
	default:
		forecast = forecast.Merge(fileCfg)
		log.Debug().Str("path", enginePath).Msg("Loaded engine configuration")
	}

	forecast = forecast.Merge(envForecastConfig())
	forecast, err = forecast.Normalize()
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		ReportDir:           reportDir,
		EngineConfigPath:    enginePath,
		Forecast:            forecast,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}, nil
}

// loadEngineConfig reads a YAML ForecastConfig. A missing file is reported
// as os.ErrNotExist.
func loadEngineConfig(path string) (simulation.ForecastConfig, error) {
	var cfg simulation.ForecastConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	return cfg, nil
}

func envForecastConfig() simulation.ForecastConfig {
	return simulation.ForecastConfig{
		Iterations:       getEnvInt("ORACLE_ITERATIONS", 0),
		BootstrapSamples: getEnvInt("ORACLE_BOOTSTRAP_SAMPLES", 0),
		PriorStrength:    getEnvFloat("ORACLE_PRIOR_STRENGTH", 0),
		MinSampleSize:    getEnvInt("ORACLE_MIN_SAMPLE_SIZE", 0),
		Seed:             getEnv("ORACLE_SEED", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric environment value")
	}
	return fallback
}

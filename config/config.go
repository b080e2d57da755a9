package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	DBPath        string

	CurveSamples     int
	SimplifyEpsilon  float64
	ProximityEpsilon float64
	SnapRadius       float64

	TechnicianName    string
	ProjectName       string
	RDMSProjectNumber string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		DBPath:            getEnv("DB_PATH", "oring.db"),
		TechnicianName:    os.Getenv("TECHNICIAN_NAME"),
		ProjectName:       os.Getenv("PROJECT_NAME"),
		RDMSProjectNumber: os.Getenv("RDMS_NUMBER"),
	}

	var err error
	if cfg.CurveSamples, err = getInt("CURVE_SAMPLES", 1000); err != nil {
		return nil, err
	}
	if cfg.SimplifyEpsilon, err = getFloat("SIMPLIFY_EPSILON", 1.0); err != nil {
		return nil, err
	}
	if cfg.ProximityEpsilon, err = getFloat("PROXIMITY_EPSILON", 3.0); err != nil {
		return nil, err
	}
	if cfg.SnapRadius, err = getFloat("SNAP_RADIUS", 5.0); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("parse %s: negative value %v", key, f)
	}
	return f, nil
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Rules holds the placement constraints shared by the validator, the mutators and the ops tooling.
type Rules struct {
	MinSegmentHeight float64
	MaxSegmentHeight float64
	MaxFaceCount     int
	OverlapTolerance float64
	// LockSegments serializes writes per segment with a row lock on the segment.
	LockSegments bool
}

// DefaultRules returns the stock placement constraints.
func DefaultRules() Rules {
	return Rules{
		MinSegmentHeight: 15,
		MaxSegmentHeight: 60,
		MaxFaceCount:     20,
		OverlapTolerance: 0.05,
	}
}

type Config struct {
	Env          string
	Host         string
	DSN          string
	JWTSecret    string
	Seed         bool
	DisplayScale float64
	CORSOrigins  []string
	Rules        Rules
	Redis        Redis
}

// Redis is optional. With an address set, layout cache invalidations are shared
// between server processes.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the process environment (and a .env file when present) into a Config.
// Malformed numeric values are logged and replaced by their defaults.
func Load(log *zap.Logger) *Config {
	// .env is optional, the environment wins either way
	_ = godotenv.Load()

	def := DefaultRules()
	return &Config{
		Env:          os.Getenv("ENV"),
		Host:         getEnv("SERVER_HOST", ":8080"),
		DSN:          os.Getenv("DB_DSN"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		Seed:         getBool("SEED", false, log),
		DisplayScale: getFloat("DISPLAY_SCALE", 2.5, log),
		CORSOrigins:  splitAndTrim(os.Getenv("CORS_ORIGINS")),
		Rules: Rules{
			MinSegmentHeight: getFloat("MIN_SEGMENT_HEIGHT", def.MinSegmentHeight, log),
			MaxSegmentHeight: getFloat("MAX_SEGMENT_HEIGHT", def.MaxSegmentHeight, log),
			MaxFaceCount:     getInt("MAX_FACE_COUNT", def.MaxFaceCount, log),
			OverlapTolerance: getFloat("OVERLAP_TOLERANCE", def.OverlapTolerance, log),
			LockSegments:     getBool("LOCK_SEGMENTS", false, log),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIndex("REDIS_DB", log),
		},
	}
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func getFloat(key string, def float64, log *zap.Logger) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 {
		log.Warn("invalid numeric setting, using default", zap.String("key", key), zap.String("value", raw), zap.Float64("default", def))
		return def
	}
	return v
}

func getInt(key string, def int, log *zap.Logger) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		log.Warn("invalid integer setting, using default", zap.String("key", key), zap.String("value", raw), zap.Int("default", def))
		return def
	}
	return v
}

// getIndex is getInt for settings where zero is valid.
func getIndex(key string, log *zap.Logger) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		log.Warn("invalid integer setting, using default", zap.String("key", key), zap.String("value", raw), zap.Int("default", 0))
		return 0
	}
	return v
}

func getBool(key string, def bool, log *zap.Logger) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid boolean setting, using default", zap.String("key", key), zap.String("value", raw), zap.Bool("default", def))
		return def
	}
	return v
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}

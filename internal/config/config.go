package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/salesday/backend/internal/models"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`

	AzureMapsKey string `mapstructure:"AZURE_MAPS_KEY"`
	AzureMapsURL string `mapstructure:"AZURE_MAPS_URL"`

	NominatimURL       string `mapstructure:"NOMINATIM_URL"`
	NominatimUserAgent string `mapstructure:"NOMINATIM_USER_AGENT"`
	GeocodeRegion      string `mapstructure:"GEOCODE_REGION"`

	OfficeName    string  `mapstructure:"OFFICE_NAME"`
	OfficeAddress string  `mapstructure:"OFFICE_ADDRESS"`
	OfficeLat     float64 `mapstructure:"OFFICE_LAT"`
	OfficeLon     float64 `mapstructure:"OFFICE_LON"`

	RosterSize         int           `mapstructure:"ROSTER_SIZE"`
	MapCacheTTL        time.Duration `mapstructure:"MAP_CACHE_TTL"`
	GeocodeConcurrency int           `mapstructure:"GEOCODE_CONCURRENCY"`
	AverageSpeedKmh    float64       `mapstructure:"AVERAGE_SPEED_KMH"`
}

// Office is the configured start location for routes computed "from office".
func (c Config) Office() models.StartLocation {
	loc := models.StartLocation{Address: c.OfficeAddress}
	if c.OfficeLat != 0 || c.OfficeLon != 0 {
		loc.Coordinates = &models.Coordinates{Lat: c.OfficeLat, Lon: c.OfficeLon}
	}
	return loc
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("AZURE_MAPS_KEY", "")
	v.SetDefault("AZURE_MAPS_URL", "https://atlas.microsoft.com")
	v.SetDefault("NOMINATIM_URL", "")
	v.SetDefault("NOMINATIM_USER_AGENT", "salesday-backend/1.0")
	v.SetDefault("GEOCODE_REGION", "Switzerland")
	v.SetDefault("OFFICE_NAME", "Head Office")
	v.SetDefault("OFFICE_ADDRESS", "Stockerstrasse 9, 8002 Zürich")
	v.SetDefault("OFFICE_LAT", 47.366374)
	v.SetDefault("OFFICE_LON", 8.536213)
	v.SetDefault("ROSTER_SIZE", 4)
	v.SetDefault("MAP_CACHE_TTL", "10m")
	v.SetDefault("GEOCODE_CONCURRENCY", 4)
	v.SetDefault("AVERAGE_SPEED_KMH", 40)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.GeocodeConcurrency < 1 {
		return Config{}, fmt.Errorf("GEOCODE_CONCURRENCY must be positive, got %d", cfg.GeocodeConcurrency)
	}
	if cfg.AverageSpeedKmh <= 0 {
		return Config{}, fmt.Errorf("AVERAGE_SPEED_KMH must be positive, got %v", cfg.AverageSpeedKmh)
	}
	return cfg, nil
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
	"github.com/dmitrijs2005/taskboard/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "72h" style
// strings or integer nanoseconds. Absent keys leave the current value alone.
type JsonConfig struct {
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             *string         `json:"database_dsn"`
	RedisURL                *string         `json:"redis_url"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	InvitationRetention     *timex.Duration `json:"invitation_retention"`
	ProfileCacheTTL         *timex.Duration `json:"profile_cache_ttl"`
	LogLevel                *string         `json:"log_level"`
	OTelEndpoint            *string         `json:"otel_endpoint"`
	AdminEmail              *string         `json:"admin_email"`
	AdminPassword           *string         `json:"admin_password"`
}

// parseJson loads the file named by -c / -config into config. Nothing
// happens when neither flag is given; an unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.OTelEndpoint, c.OTelEndpoint)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPassword, c.AdminPassword)

	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.InvitationRetention != nil {
		config.InvitationRetention = c.InvitationRetention.Duration
	}
	if c.ProfileCacheTTL != nil {
		config.ProfileCacheTTL = c.ProfileCacheTTL.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

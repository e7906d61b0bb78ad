package geoip

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location describes where a login originated from, as far as the GeoIP
// database can tell.
type Location struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Resolver maps a client address to a location. A nil result means the
// address could not be resolved; callers treat that as "unknown", never as
// an error.
type Resolver interface {
	Lookup(ip string) *Location
}

// MaxMindResolver resolves addresses against a local MaxMind City database.
type MaxMindResolver struct {
	reader *geoip2.Reader
	logger *slog.Logger
}

func NewMaxMindResolver(databasePath string, logger *slog.Logger) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &MaxMindResolver{reader: reader, logger: logger}, nil
}

func (r *MaxMindResolver) Lookup(ip string) *Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		r.logger.Debug("geoip lookup failed", slog.String("ip", ip), slog.String("error", err.Error()))
		return nil
	}

	loc := &Location{
		City:      record.City.Names["en"],
		Country:   record.Country.Names["en"],
		Timezone:  record.Location.TimeZone,
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}

	if loc.City == "" && loc.Country == "" {
		return nil
	}
	return loc
}

func (r *MaxMindResolver) Close() error {
	return r.reader.Close()
}

// NoopResolver is used when no GeoIP database is configured.
type NoopResolver struct{}

func (NoopResolver) Lookup(string) *Location { return nil }

var (
	_ Resolver = (*MaxMindResolver)(nil)
	_ Resolver = NoopResolver{}
)

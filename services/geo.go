package services

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoResolver maps a public IP to a country code and city name. Empty strings
// mean the location is unknown.
type GeoResolver interface {
	Lookup(ip net.IP) (country, city string, err error)
}

// MaxMindGeo resolves locations from a local GeoLite2/GeoIP2 City database.
type MaxMindGeo struct {
	reader *geoip2.Reader
}

func OpenMaxMindGeo(path string) (*MaxMindGeo, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MaxMindGeo{reader: reader}, nil
}

func (g *MaxMindGeo) Lookup(ip net.IP) (string, string, error) {
	record, err := g.reader.City(ip)
	if err != nil {
		return "", "", err
	}
	return record.Country.IsoCode, record.City.Names["en"], nil
}

func (g *MaxMindGeo) Close() error {
	return g.reader.Close()
}

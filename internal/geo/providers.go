package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// IPAPI queries ip-api.com. A response is usable only when status is
// "success".
type IPAPI struct {
	BaseURL string
	HTTP    *http.Client
}

func (p *IPAPI) Name() string { return "ip-api" }

func (p *IPAPI) Lookup(ctx context.Context, ip string) (Location, error) {
	var body struct {
		Status     string  `json:"status"`
		Country    string  `json:"country"`
		RegionName string  `json:"regionName"`
		City       string  `json:"city"`
		Lat        float64 `json:"lat"`
		Lon        float64 `json:"lon"`
	}
	u := p.BaseURL + "/json/" + url.PathEscape(ip) + "?fields=status,country,countryCode,region,regionName,city,lat,lon"
	if err := getJSON(ctx, p.HTTP, u, &body); err != nil {
		return Location{}, err
	}
	if body.Status != "success" {
		return Location{}, fmt.Errorf("ip-api status %q", body.Status)
	}
	return located(body.City, body.RegionName, body.Country, body.Lat, body.Lon)
}

// IPAPICo queries ipapi.co, which reports failures through an error field.
type IPAPICo struct {
	BaseURL string
	HTTP    *http.Client
}

func (p *IPAPICo) Name() string { return "ipapi.co" }

func (p *IPAPICo) Lookup(ctx context.Context, ip string) (Location, error) {
	var body struct {
		Error       bool    `json:"error"`
		Reason      string  `json:"reason"`
		City        string  `json:"city"`
		Region      string  `json:"region"`
		CountryName string  `json:"country_name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	}
	u := p.BaseURL + "/json/"
	if ip != "" {
		u = p.BaseURL + "/" + url.PathEscape(ip) + "/json/"
	}
	if err := getJSON(ctx, p.HTTP, u, &body); err != nil {
		return Location{}, err
	}
	if body.Error {
		return Location{}, fmt.Errorf("ipapi.co error: %s", body.Reason)
	}
	return located(body.City, body.Region, body.CountryName, body.Latitude, body.Longitude)
}

// FreeIPAPI resolves the caller's public IP through ipify when none is given,
// then queries freeipapi.com for it.
type FreeIPAPI struct {
	IPifyURL string
	BaseURL  string
	HTTP     *http.Client
}

func (p *FreeIPAPI) Name() string { return "freeipapi" }

func (p *FreeIPAPI) Lookup(ctx context.Context, ip string) (Location, error) {
	if ip == "" {
		var who struct {
			IP string `json:"ip"`
		}
		if err := getJSON(ctx, p.HTTP, p.IPifyURL+"?format=json", &who); err != nil {
			return Location{}, err
		}
		ip = strings.TrimSpace(who.IP)
		if ip == "" {
			return Location{}, fmt.Errorf("ipify returned no ip")
		}
	}
	var body struct {
		CityName    string  `json:"cityName"`
		RegionName  string  `json:"regionName"`
		CountryName string  `json:"countryName"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	}
	if err := getJSON(ctx, p.HTTP, p.BaseURL+"/api/json/"+url.PathEscape(ip), &body); err != nil {
		return Location{}, err
	}
	return located(body.CityName, body.RegionName, body.CountryName, body.Latitude, body.Longitude)
}

package models

import (
	"fmt"
	"strings"
)

// RiskLevel is a coarse hazard classification
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel accepts a level in any letter case
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// Risk is the flood/landslide pair shown for a city
type Risk struct {
	FloodRisk     RiskLevel `json:"floodRisk"`
	LandslideRisk RiskLevel `json:"landslideRisk"`
}

// RiskRecord is a static risk classification for a city
type RiskRecord struct {
	City          string    `json:"city"` // "City, CC"
	FloodRisk     RiskLevel `json:"floodRisk"`
	LandslideRisk RiskLevel `json:"landslideRisk"`
	Coordinates   string    `json:"coordinates"` // "lat lon"
}

// Risk returns the risk pair of the record
func (r RiskRecord) Risk() Risk {
	return Risk{FloodRisk: r.FloodRisk, LandslideRisk: r.LandslideRisk}
}

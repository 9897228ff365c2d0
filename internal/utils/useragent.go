package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"deviceType"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browserVersion,omitempty"`
	IsBot      bool   `json:"isBot"`
}

var tabletIndicators = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)
	browser, version := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         osName(parser),
		Browser:    browser,
		BrowserVer: version,
		IsBot:      parser.Bot(),
	}

	lower := strings.ToLower(userAgent)
	for _, indicator := range tabletIndicators {
		if strings.Contains(lower, indicator) {
			info.DeviceType = "tablet"
			return info
		}
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
	}

	return info
}

func osName(parser *ua.UserAgent) string {
	osInfo := parser.OSInfo()
	if osInfo.Name == "" {
		return "Unknown"
	}
	if osInfo.Version != "" {
		return osInfo.Name + " " + osInfo.Version
	}
	return osInfo.Name
}

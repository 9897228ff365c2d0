package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealIP extracts the client IP address from the request.
//
// Priority order:
//  1. X-Real-IP header when it holds a public address
//  2. the first public address in X-Forwarded-For, else its first valid entry
//  3. gin's ClientIP()
func GetRealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); isPublicIP(realIP) {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		for _, candidate := range ips {
			if candidate = strings.TrimSpace(candidate); isPublicIP(candidate) {
				return candidate
			}
		}
		if first := strings.TrimSpace(ips[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if ua == "" {
		return "Unknown"
	}
	return ua
}

func isPublicIP(value string) bool {
	ip := net.ParseIP(value)
	if ip == nil {
		return false
	}
	return !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsUnspecified()
}

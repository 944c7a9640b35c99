package deviceident

import (
	"strings"

	"github.com/mssola/user_agent"
)

// Device type classifications.
const (
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeDesktop = "desktop"
	TypeUnknown = "unknown"
)

// Fallbacks when the user agent matches nothing known.
const (
	UnknownDeviceName = "Unknown Device"
	OtherBrowser      = "Other"
	OtherOS           = "Other"
)

// Info is the classification of one user-agent string.
type Info struct {
	Name      string // e.g. "Windows PC", "iOS Device"
	Type      string // mobile, tablet, desktop, unknown
	Browser   string // e.g. "Chrome", "Safari"
	OS        string // e.g. "Windows", "iOS"
	UserAgent string // raw string, kept for diagnostics
}

// Label returns the device name with the browser, e.g. "Windows PC (Chrome)".
// This is the form shown to users in device lists and denial messages.
func (i Info) Label() string {
	return i.Name + " (" + i.Browser + ")"
}

// Classify derives device name, type, browser, and OS from a user-agent
// string. Pure function of its input: matching is substring-based in a fixed
// priority order, and anything unrecognized falls back to the unknown values,
// so it is safe to call with an empty string.
func Classify(ua string) Info {
	return Info{
		Name:      DeviceName(ua),
		Type:      DeviceType(ua),
		Browser:   BrowserName(ua),
		OS:        OSName(ua),
		UserAgent: ua,
	}
}

// DeviceType classifies the user agent as mobile, tablet, desktop, or unknown.
// Tablet keywords win over mobile ones: Android tablet UAs also say "Android".
func DeviceType(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case s == "":
		return TypeUnknown
	case strings.Contains(s, "ipad") || strings.Contains(s, "tablet"):
		return TypeTablet
	case strings.Contains(s, "iphone") || strings.Contains(s, "android") || strings.Contains(s, "mobile"):
		return TypeMobile
	case strings.Contains(s, "windows") || strings.Contains(s, "macintosh") ||
		strings.Contains(s, "mac os") || strings.Contains(s, "linux") || strings.Contains(s, "x11"):
		return TypeDesktop
	default:
		return TypeUnknown
	}
}

// DeviceName returns a coarse human-readable device class.
// Mobile platforms are checked before desktop ones: iPhone UAs contain
// "like Mac OS X" and Android UAs contain "Linux".
func DeviceName(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "iphone") || strings.Contains(s, "ipad"):
		return "iOS Device"
	case strings.Contains(s, "android"):
		return "Android Device"
	case strings.Contains(s, "windows"):
		return "Windows PC"
	case strings.Contains(s, "macintosh") || strings.Contains(s, "mac os"):
		return "Mac"
	case strings.Contains(s, "linux") || strings.Contains(s, "x11"):
		return "Linux PC"
	default:
		return UnknownDeviceName
	}
}

// BrowserName returns the browser family, using user-agent parsing with a
// fallback to "Other" when nothing is recognized.
func BrowserName(ua string) string {
	if ua == "" {
		return OtherBrowser
	}
	name, _ := user_agent.New(ua).Browser()
	if name == "" {
		return OtherBrowser
	}
	return name
}

// OSName returns the coarse operating system family.
func OSName(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "iphone") || strings.Contains(s, "ipad"):
		return "iOS"
	case strings.Contains(s, "android"):
		return "Android"
	case strings.Contains(s, "windows"):
		return "Windows"
	case strings.Contains(s, "macintosh") || strings.Contains(s, "mac os"):
		return "macOS"
	case strings.Contains(s, "linux") || strings.Contains(s, "x11"):
		return "Linux"
	default:
		return OtherOS
	}
}

package clientip

import "strings"

// Header names checked when deriving the client origin, in precedence order.
const (
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderRealIP         = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"
)

// FallbackOrigin is returned when no proxy header identifies the client.
const FallbackOrigin = "127.0.0.1"

// HeaderGetter is the minimal request-header accessor needed to derive the
// client origin. *fiber.Ctx satisfies it via Get.
type HeaderGetter interface {
	Get(key string, defaultValue ...string) string
}

// FromHeaders derives a best-effort client origin from proxy headers.
// X-Forwarded-For wins (first comma-separated hop, trimmed), then X-Real-IP,
// then CF-Connecting-IP. Always returns a value.
func FromHeaders(h HeaderGetter) string {
	if xff := h.Get(HeaderForwardedFor); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(h.Get(HeaderRealIP)); ip != "" {
		return ip
	}

	if ip := strings.TrimSpace(h.Get(HeaderCFConnectingIP)); ip != "" {
		return ip
	}

	return FallbackOrigin
}

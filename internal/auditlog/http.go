package auditlog

import (
	"net"
	"net/http"
	"strings"
)

// ActorFromRequest resolves the acting identity from request headers.
// The ownership surface is fronted by an authenticating proxy that
// injects these headers; the signing surface overrides the result with
// the token's recipient.
func ActorFromRequest(r *http.Request) Actor {
	return Actor{
		Name:  r.Header.Get("X-Actor-Name"),
		Email: r.Header.Get("X-Actor-Email"),
	}
}

// MetadataFromRequest captures the compliance metadata of a request.
// X-Forwarded-For wins over the socket address when present.
func MetadataFromRequest(r *http.Request) RequestMetadata {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}

	return RequestMetadata{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

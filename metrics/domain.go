package metrics

import (
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

const unknownDomain = "unknown"

// ExtractEffectiveTLDPlusOne extracts the "effective TLD+1" (eTLD+1) from a given URL.
// Example: "https://alpha-mainnet.starknet.io" → "starknet.io"
// Returns an error if the URL is malformed or the domain is not derivable.
func ExtractEffectiveTLDPlusOne(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	host := parsedURL.Hostname()
	if host == "" {
		return "", fmt.Errorf("empty host in %q", rawURL)
	}

	return publicsuffix.EffectiveTLDPlusOne(host)
}

// GatewayDomainLabel returns a low-cardinality label for the gateway host:
// its eTLD+1, "localhost" for loopback hosts and the bare host for other IPs.
func GatewayDomainLabel(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return unknownDomain
	}

	host := parsedURL.Hostname()
	switch {
	case host == "":
		return unknownDomain
	case host == "localhost":
		return "localhost"
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() {
			return "localhost"
		}
		return host
	}

	if domain, err := ExtractEffectiveTLDPlusOne(rawURL); err == nil {
		return domain
	}
	return host
}

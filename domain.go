package wdk

import (
	"regexp"

	"golang.org/x/net/publicsuffix"
)

var domainPattern = regexp.MustCompile(`http(s)?://(([a-zA-Z0-9-]+(\.)?)+)`)

// Domain returns the host part of an http(s) URI, or uri itself if it does
// not look like one.
func Domain(uri string) string {
	m := domainPattern.FindStringSubmatch(uri)
	if m == nil {
		return uri
	}
	return m[2]
}

// PayLevelDomain returns the registrable domain of host, e.g. "example.co.uk"
// for "www.example.co.uk". Hosts without a known public suffix are returned
// unchanged.
func PayLevelDomain(host string) string {
	pld, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return pld
}

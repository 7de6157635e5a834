// Package util holds the HTTP plumbing shared by outbound clients.
package util

import (
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient builds a client with the given timeout. Explicit proxy URLs
// win over the environment; with none set, HTTP(S)_PROXY is honoured.
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(httpProxy, httpsProxy)
	return &http.Client{Timeout: timeout, Transport: transport}
}

func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		switch {
		case req.URL.Scheme == "https" && httpsProxy != "":
			return url.Parse(httpsProxy)
		case httpProxy != "":
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

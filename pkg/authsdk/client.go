package authsdk

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Default cookie names, matching the service defaults.
const (
	DefaultAccessCookieName  = "docuchat_access"
	DefaultRefreshCookieName = "docuchat_refresh"
	DefaultCSRFCookieName    = "docuchat_csrf"
)

// SDKClient talks to the identity service and keeps the session cookies in
// its jar. It is safe for concurrent use, but refreshing from two goroutines
// at once presents the same refresh token twice.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CSRFCookieName is the cookie echoed into X-CSRF-Token.
	CSRFCookieName string

	base *url.URL
}

// NewSDKClient creates a client with its own cookie jar.
func NewSDKClient(baseURL string) (*SDKClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return NewSDKClientWithHTTP(baseURL, &http.Client{Jar: jar, Timeout: 10 * time.Second})
}

// NewSDKClientWithHTTP uses hc as is. hc must have a cookie jar for the
// session endpoints to work.
func NewSDKClientWithHTTP(baseURL string, hc *http.Client) (*SDKClient, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &SDKClient{
		BaseURL:        baseURL,
		HTTPClient:     hc,
		CSRFCookieName: DefaultCSRFCookieName,
		base:           u,
	}, nil
}

// Cookie returns the value of the named cookie held for the service, or "".
func (c *SDKClient) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// CSRFToken is the current double-submit value.
func (c *SDKClient) CSRFToken() string {
	return c.Cookie(c.CSRFCookieName)
}

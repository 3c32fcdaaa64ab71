package mapper

import (
	"fmt"
	"net/http"
	"sync"
)

// Provider abstracts over mapping-service API formats. Implementations
// translate a prompt into a provider-specific HTTP request and extract the
// completion text from the provider-specific response body.
type Provider interface {
	// Name returns the provider identifier used in configuration.
	Name() string

	// BuildURL returns the full endpoint URL for a completion request.
	BuildURL(baseURL string) string

	// SetHeaders sets provider-specific headers (auth, content type).
	SetHeaders(req *http.Request, apiKey string)

	// BuildRequestBody serializes a completion request.
	BuildRequestBody(model, prompt string, temperature float64, maxTokens int) ([]byte, error)

	// ParseResponse extracts the completion text from a response body.
	ParseResponse(body []byte) (string, error)
}

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

// RegisterProvider makes a provider available by name. Called from provider
// package init functions.
func RegisterProvider(p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[p.Name()] = p
}

// GetProvider looks up a registered provider by name.
func GetProvider(name string) (Provider, error) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown mapping provider %q", name)
	}
	return p, nil
}

// Package googleauth builds authenticated HTTP clients from a Google
// service-account key file. All Google engines (Search Console, Indexing,
// GA4) share the same JWT flow and differ only in scope.
package googleauth

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
)

const (
	ScopeWebmasters = "https://www.googleapis.com/auth/webmasters"
	ScopeIndexing   = "https://www.googleapis.com/auth/indexing"
	ScopeAnalytics  = "https://www.googleapis.com/auth/analytics.readonly"
)

// Client returns an HTTP client whose requests carry service-account
// credentials for the given scopes. Tokens refresh automatically.
func Client(ctx context.Context, serviceAccountFile string, scopes ...string) (*http.Client, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account file: %w", err)
	}
	return conf.Client(ctx), nil
}

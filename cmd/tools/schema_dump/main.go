package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"time"

	"upwork-proposals/internal/config"
	"upwork-proposals/internal/storage"
	"upwork-proposals/internal/upwork"
	httpclient "upwork-proposals/pkg/http"
)

// schema_dump lists the fields of an Upwork GraphQL type. Useful when the
// upstream schema drifts and the search or submission queries start failing.
//
//	go run ./cmd/tools/schema_dump -type MarketplaceJobPosting
func main() {
	var typeName, token string
	var timeout time.Duration
	flag.StringVar(&typeName, "type", "MarketplaceJobPostingSearchResult", "GraphQL type to introspect")
	flag.StringVar(&token, "token", "", "Access token to use instead of the stored one")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	httpClient := httpclient.NewClient(timeout).Standard()
	if token == "" {
		token, err = storedToken(ctx, cfg, httpClient)
		if err != nil {
			log.Fatalf("access token: %v", err)
		}
	}

	const introspect = `query($name: String!) {
  __type(name: $name) {
    name
    kind
    fields { name type { name kind ofType { name kind } } }
  }
}`
	var out struct {
		Type *struct {
			Name   string `json:"name"`
			Kind   string `json:"kind"`
			Fields []struct {
				Name string `json:"name"`
				Type struct {
					Name   string `json:"name"`
					Kind   string `json:"kind"`
					OfType *struct {
						Name string `json:"name"`
						Kind string `json:"kind"`
					} `json:"ofType"`
				} `json:"type"`
			} `json:"fields"`
		} `json:"__type"`
	}
	client := upwork.NewClient(cfg.UpworkGraphQLURL, httpClient)
	if err := client.Query(ctx, token, introspect, map[string]any{"name": typeName}, &out); err != nil {
		log.Fatalf("introspection failed: %v", err)
	}
	if out.Type == nil {
		fmt.Fprintf(os.Stderr, "type %q not found\n", typeName)
		os.Exit(1)
	}

	sort.Slice(out.Type.Fields, func(i, j int) bool { return out.Type.Fields[i].Name < out.Type.Fields[j].Name })
	fmt.Printf("%s (%s)\n", out.Type.Name, out.Type.Kind)
	for _, f := range out.Type.Fields {
		t := f.Type.Name
		if t == "" && f.Type.OfType != nil {
			t = f.Type.OfType.Name
		}
		fmt.Printf("  %-32s %s\n", f.Name, t)
	}
}

// storedToken reads the installation user's token, refreshing it if needed.
func storedToken(ctx context.Context, cfg *config.Config, httpClient *http.Client) (string, error) {
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is required without -token")
	}
	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	user, err := db.FirstUser(ctx)
	if err != nil {
		return "", fmt.Errorf("no user found: %w", err)
	}

	var codes upwork.CodeExchanger
	if cfg.UpworkConfigured() {
		codes = upwork.NewExchanger(upwork.OAuthConfig{
			ClientID:     cfg.UpworkClientID,
			ClientSecret: cfg.UpworkClientSecret,
			RedirectURI:  cfg.UpworkRedirectURI,
			AuthURL:      cfg.UpworkAuthURL,
			TokenURL:     cfg.UpworkTokenURL,
			Scopes:       cfg.UpworkScopes,
		}, httpClient)
	}
	tokens := upwork.NewTokenManager(db, codes, cfg.UpstreamTimeout)
	log.Printf("Using Upwork connection of %s", user.Email)
	return tokens.AccessToken(ctx, user.ID)
}

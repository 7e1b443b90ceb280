package matcher

import "strings"

// DefaultKnownServices returns the built-in digital service aliases.
// Order matters: the first service with a matching alias wins.
func DefaultKnownServices() []KnownService {
	return []KnownService{
		{Name: "google", Aliases: []string{"google", "google cloud", "google storage", "google *"}},
		{Name: "github", Aliases: []string{"github", "github.com", "github *"}},
		{Name: "slack", Aliases: []string{"slack", "slack.com", "slack technologies"}},
		{Name: "microsoft", Aliases: []string{"microsoft", "ms *", "azure", "microsoft *"}},
		{Name: "aws", Aliases: []string{"aws", "amazon web services", "amazon aws"}},
		{Name: "digitalocean", Aliases: []string{"digitalocean", "digital ocean"}},
		{Name: "heroku", Aliases: []string{"heroku", "salesforce heroku"}},
		{Name: "openai", Aliases: []string{"openai", "chat.openai.com"}},
		{Name: "fiverr", Aliases: []string{"fiverr", "fiverr.com", "fiverr international"}},
		{Name: "cursor", Aliases: []string{"cursor", "cursor pro", "anysphere"}},
	}
}

// MatchKnownService returns the first service with an alias contained in
// any of the given texts. Comparison is case-insensitive.
func MatchKnownService(services []KnownService, texts ...string) (string, bool) {
	lowered := make([]string, len(texts))
	for i, t := range texts {
		lowered[i] = lower(t)
	}

	for _, svc := range services {
		for _, alias := range svc.Aliases {
			alias = lower(alias)
			if alias == "" {
				continue
			}
			for _, t := range lowered {
				if strings.Contains(t, alias) {
					return svc.Name, true
				}
			}
		}
	}
	return "", false
}

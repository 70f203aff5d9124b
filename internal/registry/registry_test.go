package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/newsgrid/internal/registry"
	"github.com/shanehull/newsgrid/internal/types"
)

func TestDefaultRegistry(t *testing.T) {
	sources, err := registry.Default()
	require.NoError(t, err)
	require.Len(t, sources, 22)
	assert.Equal(t, types.FeedSource{Name: "AWS Security Blog", URL: "https://aws.amazon.com/blogs/security/feed/"}, sources[0])
	assert.Equal(t, "CISA Bulletins", sources[len(sources)-1].Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sources []types.FeedSource
		wantErr error
	}{
		{
			name:    "unique",
			sources: []types.FeedSource{{Name: "A", URL: "https://a.example/feed"}, {Name: "B", URL: "https://b.example/feed"}},
		},
		{
			name:    "name differs only in case",
			sources: []types.FeedSource{{Name: "Krebs", URL: "https://a.example/feed"}, {Name: "KREBS", URL: "https://b.example/feed"}},
			wantErr: registry.ErrDuplicateName,
		},
		{
			name:    "url differs only in case",
			sources: []types.FeedSource{{Name: "A", URL: "https://a.example/feed"}, {Name: "B", URL: "HTTPS://A.EXAMPLE/FEED"}},
			wantErr: registry.ErrDuplicateURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Validate(tt.sources)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Error(t, registry.Validate([]types.FeedSource{{Name: "", URL: "https://a.example"}}))
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.toml")
	content := `
[[feeds]]
name = "One"
url = "https://one.example/feed"

[[feeds]]
name = "one"
url = "https://two.example/feed"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := registry.Load(path)
	assert.ErrorIs(t, err, registry.ErrDuplicateName)
}

func TestAppendPreservesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.toml")
	original := `# my feeds
[[feeds]]
name = "One"
url = "https://one.example/feed"`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	err := registry.Append(path, types.FeedSource{Name: " Two ", URL: "https://two.example/feed"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data[:len(original)]))

	sources, err := registry.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []types.FeedSource{
		{Name: "One", URL: "https://one.example/feed"},
		{Name: "Two", URL: "https://two.example/feed"},
	}, sources)
}

func TestAppendRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.toml")
	require.NoError(t, registry.Append(path, types.FeedSource{Name: "New", URL: "https://new.example/feed"}))

	sources, err := registry.Load(path)
	require.NoError(t, err)
	assert.Len(t, sources, 23, "missing file is seeded from the default registry")
	assert.Equal(t, "New", sources[22].Name)

	err = registry.Append(path, types.FeedSource{Name: "aws security blog", URL: "https://other.example/feed"})
	assert.ErrorIs(t, err, registry.ErrDuplicateName)

	err = registry.Append(path, types.FeedSource{Name: "Other", URL: "HTTPS://NEW.EXAMPLE/FEED"})
	assert.ErrorIs(t, err, registry.ErrDuplicateURL)
}

func TestLooksLikeFeed(t *testing.T) {
	assert.True(t, registry.LooksLikeFeed(`<?xml version="1.0"?><RSS version="2.0"></RSS>`))
	assert.True(t, registry.LooksLikeFeed(`<feed xmlns="http://www.w3.org/2005/Atom"/>`))
	assert.True(t, registry.LooksLikeFeed(`<rdf:RDF></rdf:RDF>`))
	assert.False(t, registry.LooksLikeFeed(`<html><body>hello</body></html>`))
}

func TestInspect(t *testing.T) {
	rss := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Example Feed</title>
<item><title>One</title><link>https://example.com/1</link></item>
<item><title>Two</title><link>https://example.com/2</link></item>
</channel></rss>`

	info, err := registry.Inspect(rss)
	require.NoError(t, err)
	assert.Equal(t, "rss", info.Type)
	assert.Equal(t, "Example Feed", info.Title)
	assert.Equal(t, 2, info.Items)

	_, err = registry.Inspect("<html><body>not a feed</body></html>")
	assert.Error(t, err)
}

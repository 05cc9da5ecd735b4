package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSiteFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	site, err := LoadSite(Config{})
	require.NoError(t, err)

	defaults := DefaultSiteConfig()
	assert.Equal(t, defaults.Header, site.Header)
	assert.Equal(t, defaults.IndexTitle, site.IndexTitle)
	assert.True(t, site.Entity(EntitySubmission).AllowsFilter("status"))
	assert.False(t, site.Entity(EntitySubmission).AllowsFilter("contact_email"))
}

func TestLoadSiteReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yml")
	content := []byte("site:\n  header: Custom Admin\n  entities:\n    contacts:\n      listFilter: [email]\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	site, err := LoadSite(Config{SiteConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "Custom Admin", site.Header)
	assert.Equal(t, DefaultSiteConfig().Title, site.Title)
	assert.Equal(t, DefaultSiteConfig().IndexTitle, site.IndexTitle)
	assert.True(t, site.Entity(EntityContact).AllowsFilter("email"))
	assert.True(t, site.Entity(EntityTool).AllowsFilter("category"))
}

func TestLoadSiteKeepsTitlesWhenOnlyEntitiesAreSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yml")
	content := []byte("site:\n  entities:\n    submissions:\n      listFilter: [status]\n      ordering: tool_name\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	site, err := LoadSite(Config{SiteConfigPath: path})
	require.NoError(t, err)

	defaults := DefaultSiteConfig()
	assert.Equal(t, defaults.Header, site.Header)
	assert.Equal(t, defaults.Title, site.Title)
	assert.Equal(t, defaults.IndexTitle, site.IndexTitle)
	assert.Equal(t, "tool_name", site.Entity(EntitySubmission).Ordering)
	assert.False(t, site.Entity(EntitySubmission).AllowsFilter("tool_category"))
}

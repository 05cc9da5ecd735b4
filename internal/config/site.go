package config

import (
	"strings"

	"github.com/spf13/viper"
)

// SiteConfig is the static admin-site configuration. It is read once at startup
// and passed by value; nothing mutates it afterwards.
type SiteConfig struct {
	Header     string                  `mapstructure:"header" json:"header"`
	Title      string                  `mapstructure:"title" json:"title"`
	IndexTitle string                  `mapstructure:"indexTitle" json:"index_title"`
	Entities   map[string]EntityConfig `mapstructure:"entities" json:"entities"`
}

// EntityConfig declares how an admin list endpoint filters, searches and orders one entity.
type EntityConfig struct {
	ListDisplay  []string `mapstructure:"listDisplay" json:"list_display"`
	ListFilter   []string `mapstructure:"listFilter" json:"list_filter"`
	SearchFields []string `mapstructure:"searchFields" json:"search_fields"`
	Ordering     string   `mapstructure:"ordering" json:"ordering"`
}

const (
	EntityTool           = "tools"
	EntitySubmission     = "submissions"
	EntityRemovalRequest = "removal_requests"
	EntityContact        = "contacts"
)

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Header:     "Obtain.AI Admin",
		Title:      "Obtain.AI Admin Portal",
		IndexTitle: "Welcome to Obtain.AI Administration",
		Entities: map[string]EntityConfig{
			EntityTool: {
				ListDisplay:  []string{"name", "category", "pricing", "listing_type", "rating", "is_active", "date_added"},
				ListFilter:   []string{"category", "pricing", "listing_type", "is_active", "is_verified"},
				SearchFields: []string{"name", "description", "website_url"},
				Ordering:     "-date_added",
			},
			EntitySubmission: {
				ListDisplay:  []string{"tool_name", "tool_category", "tool_pricing", "listing_type", "contact_name", "status", "submission_date"},
				ListFilter:   []string{"status", "tool_category", "tool_pricing", "listing_type"},
				SearchFields: []string{"tool_name", "tool_website", "contact_name", "contact_email"},
				Ordering:     "-submission_date",
			},
			EntityRemovalRequest: {
				ListDisplay:  []string{"tool_name", "tool_website", "owner_name", "removal_reason", "status", "request_date"},
				ListFilter:   []string{"status", "removal_reason", "verification_method"},
				SearchFields: []string{"tool_name", "tool_website", "owner_name", "owner_email"},
				Ordering:     "-request_date",
			},
			EntityContact: {
				ListDisplay:  []string{"name", "email", "country"},
				ListFilter:   []string{"country"},
				SearchFields: []string{"name", "email", "country"},
				Ordering:     "-contact_date",
			},
		},
	}
}

// LoadSite reads site.yml (when present) on top of the defaults.
func LoadSite(cfg Config) (SiteConfig, error) {
	v := viper.New()

	v.SetConfigName("site")
	v.SetConfigType("yml")
	if cfg.SiteConfigPath != "" {
		v.SetConfigFile(cfg.SiteConfigPath)
	}
	v.AddConfigPath("/etc/obtain")
	v.AddConfigPath(".")

	v.SetEnvPrefix("OBTAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return SiteConfig{}, err
		}
	}

	var site SiteConfig
	if err := v.UnmarshalKey("site", &site); err != nil {
		return SiteConfig{}, err
	}

	defaults := DefaultSiteConfig()
	if strings.TrimSpace(site.Header) == "" {
		site.Header = defaults.Header
	}
	if strings.TrimSpace(site.Title) == "" {
		site.Title = defaults.Title
	}
	if strings.TrimSpace(site.IndexTitle) == "" {
		site.IndexTitle = defaults.IndexTitle
	}
	if site.Entities == nil {
		site.Entities = map[string]EntityConfig{}
	}
	for name, entity := range defaults.Entities {
		if _, ok := site.Entities[name]; !ok {
			site.Entities[name] = entity
		}
	}
	return site, nil
}

// Entity returns the list configuration for an entity, or an empty one.
func (s SiteConfig) Entity(name string) EntityConfig {
	return s.Entities[name]
}

// AllowsFilter reports whether key is a declared list filter.
func (e EntityConfig) AllowsFilter(key string) bool {
	for _, f := range e.ListFilter {
		if f == key {
			return true
		}
	}
	return false
}

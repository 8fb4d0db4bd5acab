package config

// SiteConfig holds the textual page metadata. Values are read on every render so a
// changed environment is picked up without a rebuild of the templates.
type SiteConfig interface {
	GetSiteDescription() string
	GetOGImageURL() string
}

type Site struct{}

var _ SiteConfig = Site{}

func (Site) GetSiteDescription() string {
	return GetEnv("SITE_DESCRIPTION", "Manage organisations, projects and resources")
}

func (Site) GetOGImageURL() string {
	return GetEnv("OG_IMAGE_URL", "")
}

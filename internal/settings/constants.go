package settings

// DB config keys and defaults for site settings.
const (
	// SiteNameKey is the DB config key for the public site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback site name.
	DefaultSiteName = "Inkpress"
	// SiteDescriptionKey is the DB config key for the site tagline.
	SiteDescriptionKey = "SITE_DESCRIPTION"
	// DefaultSiteDescription is the fallback site tagline.
	DefaultSiteDescription = "Notes on software and everything around it"
	// PostsPerPageKey controls how many posts public listings return.
	PostsPerPageKey = "POSTS_PER_PAGE"
	// DefaultPostsPerPage is the fallback listing size.
	DefaultPostsPerPage = 10
	// FeaturedLimitKey controls how many featured posts the landing page shows.
	FeaturedLimitKey = "FEATURED_LIMIT"
	// DefaultFeaturedLimit is the fallback featured post count.
	DefaultFeaturedLimit = 3
)

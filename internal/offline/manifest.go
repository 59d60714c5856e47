package offline

// DefaultGeneration is the cache generation name shipped with this build.
// Bump it whenever the shell changes so clients drop the old copy.
const DefaultGeneration = "energy-ui-v1"

// DefaultManifest lists the dashboard shell resources pre-fetched on install.
// Relative entries are resolved against the dashboard base URL.
var DefaultManifest = []string{
	"/",
	"/index.html",
	"/css/styles.css",
	"/js/app.js",
	"/js/config.js",
	"/manifest.webmanifest",
	"/sw.js",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
	"https://cdn.jsdelivr.net/npm/chart.js",
}

// NetworkFirstPrefixes are the dynamic endpoints that must never be answered
// from the shell cache.
var NetworkFirstPrefixes = []string{
	"/status",
	"/control",
	"/alerts",
}

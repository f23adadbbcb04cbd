package version

// Set at build time via -ldflags "-X github.com/animalscode/actracker/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

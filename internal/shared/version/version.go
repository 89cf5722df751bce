package version

// Version is stamped at build time via -ldflags "-X exportlint/internal/shared/version.Version=...".
var Version = "dev"

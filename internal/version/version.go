package version

import "runtime/debug"

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// Revision returns the short VCS revision stamped by the Go toolchain, if
// any.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}
	return ""
}

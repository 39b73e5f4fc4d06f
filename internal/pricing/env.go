package pricing

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	golocale "github.com/jeandeaual/go-locale"
)

// localtimePath is where the system timezone link lives.
var localtimePath = "/etc/localtime"

// DetectEnvironment reads the user's locale and timezone. Lookups that fail leave the field empty.
func DetectEnvironment() Environment {
	env := Environment{Timezone: detectTimezone()}
	if l, err := golocale.GetLocale(); err == nil {
		env.Locale = NormalizeLocale(l)
	}
	return env
}

func detectTimezone() string {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		return tz
	}
	if target, err := filepath.EvalSymlinks(localtimePath); err == nil {
		if _, name, ok := strings.Cut(target, "zoneinfo/"); ok {
			return name
		}
	}
	if name := time.Local.String(); name != "Local" && name != "UTC" {
		return name
	}
	return ""
}

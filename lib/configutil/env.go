package configutil

import (
	"github.com/kelseyhightower/envconfig"
)

// ApplyEnv overrides fields of `out` that have an `envconfig` tag with
// values from the environment, ex. prefix "GTRENDS" and tag
// `envconfig:"USERNAME"` reads GTRENDS_USERNAME. Unset variables leave the
// field as it was.
func ApplyEnv[T any](prefix string, out *T) error {
	return envconfig.Process(prefix, out)
}

package devenv

// TrendsTestConfig is read from dev/.state/trends_config.json5 by tests
// that talk to the live site.
type TrendsTestConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Term     string `json:"term"`
}

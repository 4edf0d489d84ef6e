package model

// Config is the singleton settings record stored in config.json.
type Config struct {
	PublishPassword string `json:"publishPassword"` // bcrypt hash
	AppName         string `json:"appName"`
	DefaultAuthor   string `json:"defaultAuthor"`
}

// PlaceholderPasswordHash is written on first boot. It is deliberately not a
// valid bcrypt hash so the access gate replaces it at startup.
const PlaceholderPasswordHash = "$2b$10$YourHashedPasswordHere"

// DefaultConfig returns the record created when config.json is absent.
func DefaultConfig() Config {
	return Config{
		PublishPassword: PlaceholderPasswordHash,
		AppName:         "GameHome",
		DefaultAuthor:   "Système",
	}
}

package config

type Config struct {
	ServerAddr  string   `yaml:"run_address"`
	TokenSecret string   `yaml:"token_secret"`
	CORSOrigins []string `yaml:"cors_origins"`
}

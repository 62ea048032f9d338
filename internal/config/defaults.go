package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DMS.BaseDir == "" {
		cfg.DMS.BaseDir = "ablage"
	}
	if cfg.Provider.Mode == "" {
		cfg.Provider.Mode = "auto"
	}
	if cfg.Provider.OllamaURL == "" {
		cfg.Provider.OllamaURL = "http://localhost:11434"
	}
}

// Default returns a ready-to-use configuration without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.DMS.BaseDir = expandPath(cfg.DMS.BaseDir, ".")
	return cfg
}

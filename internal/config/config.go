package config

import "time"

// Config is the collabctl configuration.
type Config struct {
	Authority AuthorityConfig `yaml:"authority"`
	Log       LogConfig       `yaml:"log"`
	Fake      FakeConfig      `yaml:"fake"`
}

// AuthorityConfig selects the remote authority and the credentials used with it.
type AuthorityConfig struct {
	Endpoint    string        `yaml:"endpoint"    env:"ENDPOINT"    env-default:"ws://localhost:8000"`
	Token       string        `yaml:"token"       env:"TOKEN"`
	Timeout     time.Duration `yaml:"timeout"     env:"TIMEOUT"     env-default:"30s"`
	Project     string        `yaml:"project"     env:"PROJECT"`
	Compression bool          `yaml:"compression" env:"COMPRESSION" env-default:"true"`
}

type LogConfig struct {
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
}

// FakeConfig configures the in-memory authority started by serve-fake.
type FakeConfig struct {
	Secret string `yaml:"secret" env:"FAKE_SECRET" env-default:"collabctl-dev-secret"`
	Addr   string `yaml:"addr"   env:"FAKE_ADDR"   env-default:"127.0.0.1:8000"`
	Admin  string `yaml:"admin"  env:"FAKE_ADMIN"  env-default:"admin"`
}

package config

import "strings"

type EnvVars struct {
	AppName  string `env:"APP_NAME" envDefault:"Service Advisor Portal"`
	Env      string `env:"ENV" envDefault:"DEV"`
	LogLevel string `env:"PORTAL_LOG_LEVEL" envDefault:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

// IsDev reports whether ENV names a development environment
func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.GetEnv(), "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.LogLevel)
}

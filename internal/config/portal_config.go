package config

import "time"

// Portal holds the settings of the one portal this client signs in to
type Portal struct {
	APIBaseURL              string        `env:"PORTAL_API_BASE_URL" envDefault:"http://localhost:5000/api"`
	ExpectedRole            string        `env:"PORTAL_ROLE" envDefault:"ServiceAdvisor"`
	RoleLabel               string        `env:"PORTAL_ROLE_LABEL" envDefault:"Service Advisor"`
	RootPath                string        `env:"PORTAL_ROOT_PATH" envDefault:"/service-advisor/dashboard"`
	TemporaryPasswordPrefix string        `env:"PORTAL_TEMP_PASSWORD_PREFIX" envDefault:"SA2025-"`
	RedirectDelay           time.Duration `env:"PORTAL_REDIRECT_DELAY" envDefault:"2s"`
	HTTPTimeout             time.Duration `env:"PORTAL_HTTP_TIMEOUT" envDefault:"30s"`
}

var _ PortalConfig = Portal{}

func (p Portal) GetAPIBaseURL() string {
	return p.APIBaseURL
}

func (p Portal) GetExpectedRole() string {
	return p.ExpectedRole
}

// GetRoleLabel falls back to the role itself when no label is set
func (p Portal) GetRoleLabel() string {
	if p.RoleLabel == "" {
		return p.ExpectedRole
	}
	return p.RoleLabel
}

func (p Portal) GetRootPath() string {
	return p.RootPath
}

func (p Portal) GetTemporaryPasswordPrefix() string {
	return p.TemporaryPasswordPrefix
}

func (p Portal) GetRedirectDelay() time.Duration {
	return p.RedirectDelay
}

func (p Portal) GetHTTPTimeout() time.Duration {
	return p.HTTPTimeout
}

package models

// Setting keys in the app_settings table.
const (
	SettingCompanyProfile = "company_profile"
	SettingAdminProfile   = "admin_profile"
	SettingSheetsURL      = "sheets_url"
	SettingLastSync       = "last_sync"
)

// CompanyProfile is the organisation shown on reports and dashboards.
type CompanyProfile struct {
	Name       string `json:"name"`
	CNPJ       string `json:"cnpj"`
	LogoURL    string `json:"logo_url"`
	FooterText string `json:"footer_text"`
}

// AdminProfile is the single administrative account. PasswordHash is a bcrypt
// digest and never leaves the server.
type AdminProfile struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
	Icon         string `json:"icon"`
}

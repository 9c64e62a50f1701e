package entity

// Settings is the singleton dashboard configuration. It lives under a single
// key in the store and is read-modify-written without versioning.
type Settings struct {
	SpaceKey           string `json:"space_key"`        // Confluence space for research pages
	JiraProjectKey     string `json:"jira_project_key"` // project for lead tracking issues
	DefaultResultCount int    `json:"default_result_count"`
	AutoSaveLeads      bool   `json:"auto_save_leads"`
}

// DefaultSettings returns the values used before the operator saves any.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultResultCount: 10,
		AutoSaveLeads:      true,
	}
}

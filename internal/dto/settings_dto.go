package dto

type UpdateSettingsRequest struct {
	SpaceKey           string `json:"space_key"`
	JiraProjectKey     string `json:"jira_project_key"`
	DefaultResultCount int    `json:"default_result_count" validate:"omitempty,min=1,max=50"`
	AutoSaveLeads      bool   `json:"auto_save_leads"`
}

package handler

// RegistrationResponse is one item of the lookup result.
type RegistrationResponse struct {
	RowIndex        int    `json:"row_index"`
	Name            string `json:"name"`
	NameFull        string `json:"name_full,omitempty"`
	CourseName      string `json:"course_name"`
	CourseDate      string `json:"course_date"`
	Status          string `json:"status"`
	StatusLabel     string `json:"status_label,omitempty"`
	StatusChangedAt string `json:"status_changed_at,omitempty"`
}

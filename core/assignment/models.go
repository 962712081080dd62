package assignment

import "github.com/darasa-tz/darasa/core"

// Template is a reusable assignment blueprint scoped to a college.
type Template struct {
	ID           string `json:"id"`
	TemplateType string `json:"template_type"`
	CollegeCode  string `json:"college_code"`
	CollegeName  string `json:"college_name"`
	IsActive     bool   `json:"is_active"`
}

// QueryFilter fields combine with AND; empty fields are ignored.
type QueryFilter struct {
	Type        string `query:"type"`
	CollegeCode string `query:"collegeCode"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Type == "" && qf.CollegeCode == ""
}

func (qf *QueryFilter) Clean() {
	qf.Type = core.CleanString(qf.Type, true)
	qf.CollegeCode = core.CleanString(qf.CollegeCode, true)
}

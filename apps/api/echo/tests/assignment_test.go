package tests

import (
	"net/http"
	"testing"

	"github.com/darasa-tz/darasa/core/assignment"
)

func Test_assignmentApi_templates(t *testing.T) {
	resetDB(t)

	udsmEssay := assignment.Template{ID: "t1", TemplateType: "essay", CollegeCode: "udsm", CollegeName: "University of Dar es Salaam", IsActive: true}
	udsmReport := assignment.Template{ID: "t2", TemplateType: "lab-report", CollegeCode: "udsm", CollegeName: "University of Dar es Salaam", IsActive: true}
	mustEssay := assignment.Template{ID: "t3", TemplateType: "essay", CollegeCode: "must", CollegeName: "Mbeya University of Science and Technology", IsActive: true}
	retired := assignment.Template{ID: "t4", TemplateType: "essay", CollegeCode: "udsm", CollegeName: "University of Dar es Salaam", IsActive: false}
	db.SeedTemplates(udsmEssay, udsmReport, mustEssay, retired)

	wrap := func(tps ...assignment.Template) []byte {
		if tps == nil {
			tps = []assignment.Template{}
		}
		return marchallObj(t, map[string][]assignment.Template{"templates": tps})
	}

	tests := []httpTest{
		{
			name: "Get all, college name order, inactive excluded", path: "/api/assignment/templates",
			wantCode: http.StatusOK, wantData: wrap(mustEssay, udsmEssay, udsmReport),
		},
		{
			name: "Filter type", path: "/api/assignment/templates?type=essay",
			wantCode: http.StatusOK, wantData: wrap(mustEssay, udsmEssay),
		},
		{
			name: "Filter college", path: "/api/assignment/templates?collegeCode=udsm",
			wantCode: http.StatusOK, wantData: wrap(udsmEssay, udsmReport),
		},
		{
			name: "Filters combine with AND", path: "/api/assignment/templates?type=lab-report&collegeCode=udsm",
			wantCode: http.StatusOK, wantData: wrap(udsmReport),
		},
		{
			name: "Filters are case-insensitive", path: "/api/assignment/templates?type=Essay&collegeCode=MUST",
			wantCode: http.StatusOK, wantData: wrap(mustEssay),
		},
		{
			name: "No match", path: "/api/assignment/templates?collegeCode=sua",
			wantCode: http.StatusOK, wantData: wrap(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

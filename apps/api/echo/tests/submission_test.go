package tests

import (
	"net/http"
	"testing"

	"github.com/darasa-tz/darasa/core/submission"
)

func intPtr(n int) *int { return &n }

func Test_submissionApi_leaderboard(t *testing.T) {
	resetDB(t)

	first := submission.Entry{UserID: "u1", Name: "Neema", RankPosition: intPtr(1), Points: 980, Submissions: 14}
	second := submission.Entry{UserID: "u2", Name: "Juma", RankPosition: intPtr(2), Points: 870, Submissions: 11}
	unranked := submission.Entry{UserID: "u3", Name: "Asha", Points: 120, Submissions: 2}
	db.SeedLeaderboard(second, unranked, first) // out of order on purpose

	wrap := func(entries ...submission.Entry) []byte {
		if entries == nil {
			entries = []submission.Entry{}
		}
		return marchallObj(t, map[string]interface{}{"success": true, "leaderboard": entries})
	}

	tests := []httpTest{
		{
			name: "Ranked first, unranked last", path: "/api/submissions/leaderboard",
			wantCode: http.StatusOK, wantData: wrap(first, second, unranked),
		},
		{
			name: "Limit", path: "/api/submissions/leaderboard?limit=2",
			wantCode: http.StatusOK, wantData: wrap(first, second),
		},
		{
			name: "Limit beyond size", path: "/api/submissions/leaderboard?limit=50",
			wantCode: http.StatusOK, wantData: wrap(first, second, unranked),
		},
		{
			name: "Negative limit falls back to the default", path: "/api/submissions/leaderboard?limit=-3",
			wantCode: http.StatusOK, wantData: wrap(first, second, unranked),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Empty board", func(t *testing.T) {
		resetDB(t)
		req, rec := newRequest(http.MethodGet, "/api/submissions/leaderboard")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: wrap()}, rec)
	})
}

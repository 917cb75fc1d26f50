package http

import (
	"net/http"
	"time"
)

type reportResponse struct {
	Project     projectResponse       `json:"project"`
	Scores      *sheetResponse        `json:"scores"`
	Summary     summaryResponse       `json:"summary"`
	MissingInfo []missingInfoResponse `json:"missing_information"`
	History     []historyResponse     `json:"history"`
	GeneratedAt time.Time             `json:"generated_at"`
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := s.uc.Project.Report(ctx, projectIDParam(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, reportResponse{
		Project:     toProjectResponse(report.Project),
		Scores:      toSheetResponse(report.Sheet),
		Summary:     toSummaryResponse(report.Summary),
		MissingInfo: toMissingInfoResponses(report.MissingInfo),
		History:     toHistoryResponses(report.History),
		GeneratedAt: report.GeneratedAt,
	})
}

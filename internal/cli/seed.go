package cli

import (
	"context"

	"incident-training-service/internal/domain"
	"incident-training-service/internal/scoring"
	transport "incident-training-service/internal/transport/http"
)

// seedDemo fills an empty in-memory deployment with a small directory and one
// scenario so the API is explorable without a database.
func seedDemo(ctx context.Context, svc transport.Services) error {
	analyst, err := svc.Directory.CreateRole(ctx, "SOC Analyst", domain.ClearanceConfidential)
	if err != nil {
		return err
	}
	lead, err := svc.Directory.CreateRole(ctx, "Incident Lead", domain.ClearanceSecret)
	if err != nil {
		return err
	}
	if _, err := svc.Directory.CreateUser(ctx, "analyst", "analyst@example.com", analyst.ID); err != nil {
		return err
	}
	if _, err := svc.Directory.CreateUser(ctx, "lead", "lead@example.com", lead.ID); err != nil {
		return err
	}

	_, err = svc.Scenarios.Create(ctx, scoring.ScenarioSpec{
		Title:       "Ransomware on a file server",
		Description: "Encrypted shares were reported by the help desk at 08:10.",
		Risk:        domain.RiskCritical,
		Questions: []scoring.QuestionSpec{
			{
				Text:     "What is the first containment step?",
				Priority: domain.PriorityCritical,
				RoleIDs:  []string{analyst.ID, lead.ID},
				AnswerOptions: []scoring.OptionSpec{
					{Text: "Isolate the file server from the network", Weight: 10, IsCorrect: true},
					{Text: "Restore from last night's backup", Weight: 3},
					{Text: "Pay the ransom"},
				},
			},
			{
				Text:     "Who must be notified within the first hour?",
				Priority: domain.PriorityHigh,
				RoleIDs:  []string{lead.ID},
				AnswerOptions: []scoring.OptionSpec{
					{Text: "Legal and the data protection officer", Weight: 5, IsCorrect: true},
					{Text: "Only the IT manager", Weight: 1},
				},
			},
		},
	})
	return err
}

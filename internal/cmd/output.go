package cmd

import (
	"fmt"
	"io"
	"strings"

	"NYCU-SDC/formbricks-challenge/internal/seed"
	"NYCU-SDC/formbricks-challenge/internal/stack"
	"NYCU-SDC/formbricks-challenge/internal/survey"
)

var rule = strings.Repeat("=", 60)

func printSummary(w io.Writer, s seed.Summary, complete bool) {
	heading := "Seeding complete!"
	if !complete {
		heading = "Seeding interrupted, partial results:"
	}
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, heading, rule)
	_, _ = fmt.Fprintf(w, "Run:       %s\n", s.RunID)
	_, _ = fmt.Fprintf(w, "Surveys:   %d/%d created\n", s.SurveyCount(), s.TotalSurveys)
	_, _ = fmt.Fprintf(w, "Responses: %d/%d created, %d skipped\n", s.ResponseCount, s.TotalResponses, s.SkippedResponses)
	_, _ = fmt.Fprintf(w, "Users:     %d/%d processed, %d invited, %d already existed\n", s.UserCount, s.TotalUsers, s.InvitedUsers, s.ExistingUsers)
}

func printGenerated(w io.Writer, path string, data survey.Data) {
	_, _ = fmt.Fprintf(w, "Data saved to: %s\n", path)
	_, _ = fmt.Fprintf(w, "Surveys:   %d\n", len(data.Surveys))
	_, _ = fmt.Fprintf(w, "Users:     %d\n", len(data.Users))
	_, _ = fmt.Fprintf(w, "Responses: %d\n", len(data.Responses))
}

func printNextSteps(w io.Writer, info stack.Info) {
	_, _ = fmt.Fprintf(w, "\n%s\nFormbricks is now running!\n%s\n", rule, rule)
	_, _ = fmt.Fprintf(w, "Access Formbricks at: %s\n", info.WebappURL)
	_, _ = fmt.Fprintf(w, "Containers: %s\n", strings.Join(info.Containers, ", "))
	_, _ = fmt.Fprintf(w, "Environment written to: %s\n\n", info.EnvFile)
	_, _ = fmt.Fprintln(w, "Next steps:")
	_, _ = fmt.Fprintf(w, "  1. Set up your account at %s\n", info.WebappURL)
	_, _ = fmt.Fprintln(w, "  2. Run: challenge formbricks generate")
	_, _ = fmt.Fprintln(w, "  3. Run: challenge formbricks seed")
	_, _ = fmt.Fprintln(w, "\nNote: save your API key from Formbricks settings for seeding")
}

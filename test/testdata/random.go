package testdata

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

func RandomName() string {
	return gofakeit.Name()
}

func RandomEmail() string {
	return strings.ToLower(gofakeit.Email())
}

func RandomSurveyName() string {
	return gofakeit.AppName() + " " + gofakeit.RandomString([]string{"Feedback", "Onboarding", "Satisfaction", "Pulse"})
}

func RandomDescription() string {
	return gofakeit.HackerPhrase()
}

func RandomHeadline() string {
	return strings.TrimSuffix(gofakeit.Question(), "?") + "?"
}

func RandomRole() string {
	return gofakeit.RandomString([]string{"Manager", "Owner"})
}

package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"NYCU-SDC/formbricks-challenge/internal/survey"
)

const surveyPromptFormat = `Generate %d unique, realistic surveys for a product feedback platform. Each survey should be well-designed with a clear purpose.

Return ONLY valid JSON (no markdown, no explanation) in this exact format:
{
  "surveys": [
    {
      "name": "Survey Name",
      "type": "app|website|link",
      "description": "Brief description",
      "questions": [
        {
          "type": "openText|multipleChoiceSingle|multipleChoiceMulti|nps|rating|cta",
          "headline": "Question text",
          "required": true|false,
          "choices": ["Option 1", "Option 2"] (only for multiple choice),
          "range": 5|7|10 (only for rating),
          "dismissButtonLabel": "Skip" (optional),
          "buttonLabel": "Next" (optional)
        }
      ]
    }
  ]
}

Survey types: "app" (in-app), "website" (website widget), "link" (shareable link)
Question types available: openText, multipleChoiceSingle, multipleChoiceMulti, nps, rating, cta

Requirements:
- Create %d diverse surveys (product feedback, NPS, feature request, user onboarding, customer satisfaction)
- Each survey should have 3-5 questions
- Mix different question types appropriately
- Make questions realistic and professionally worded
- Include relevant choice options for multiple choice questions
- Use appropriate ranges for rating questions (5, 7, or 10)`

const userPromptFormat = `Generate %d unique, realistic users for a SaaS platform team.

Return ONLY valid JSON (no markdown, no explanation) in this exact format:
{
  "users": [
    {
      "name": "Full Name",
      "email": "email@example.com",
      "role": "Manager|Owner"
    }
  ]
}

Requirements:
- Create %d users with realistic names
- Use professional email addresses
- Mix of Manager and Owner roles (at least 2 Owners, rest Managers)
- Diverse, realistic names
- Professional email format (firstname.lastname@company.com)`

const responsePromptFormat = `Generate realistic survey responses for the following survey:

Survey: %s
Questions: %s

Return ONLY valid JSON (no markdown, no explanation) with realistic, thoughtful responses:
{
  "responses": [
    {
      "questionId": "will be filled by system",
      "value": "response value - text for openText, choice label for multiple choice, number 0-10 for nps, number for rating"
    }
  ]
}

Requirements:
- Provide one response entry per question, in the order the questions are listed
- For NPS: use numbers 0-10
- For ratings: use appropriate numbers based on the question
- For multiple choice: use exact choice labels
- For open text: write 1-3 realistic sentences
- Make responses coherent and professional`

func SurveyPrompt(count int) string {
	return fmt.Sprintf(surveyPromptFormat, count, count)
}

func UserPrompt(count int) string {
	return fmt.Sprintf(userPromptFormat, count, count)
}

type promptQuestion struct {
	Headline string              `json:"headline"`
	Type     survey.QuestionType `json:"type"`
	Choices  []string            `json:"choices"`
	Range    *int                `json:"range"`
}

func ResponsePrompt(s survey.GeneratedSurvey) (string, error) {
	questions := make([]promptQuestion, len(s.Questions))
	for i, q := range s.Questions {
		choices := q.Choices
		if choices == nil {
			choices = []string{}
		}
		questions[i] = promptQuestion{
			Headline: q.Headline,
			Type:     q.Type,
			Choices:  choices,
			Range:    q.Range,
		}
	}

	listing, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(responsePromptFormat, s.Name, listing), nil
}

// StripFences removes a surrounding markdown code fence from a completion.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	lines := strings.Split(content, "\n")
	if len(lines) <= 2 {
		return content
	}

	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

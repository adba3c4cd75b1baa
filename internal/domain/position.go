package domain

import (
	"fmt"
	"strings"
)

// Position is an open role advertised on the recruitment page
type Position struct {
	Title        string   `json:"title"`
	Type         string   `json:"type"` // Full-time / Part-time
	Location     string   `json:"location"`
	Department   string   `json:"department"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

var openPositions = []Position{
	{
		Title:       "Quantitative Researcher",
		Type:        "Full-time",
		Location:    "London, UK",
		Department:  "Research",
		Description: "Join our research team to develop cutting-edge quantitative models and trading strategies.",
		Requirements: []string{
			"Strong background in mathematics, statistics, or computer science",
			"Experience with Python, R, or similar programming languages",
			"Knowledge of financial markets and derivatives",
			"Strong analytical and problem-solving skills",
		},
	},
	{
		Title:       "Algorithmic Trader",
		Type:        "Full-time",
		Location:    "London, UK",
		Department:  "Trading",
		Description: "Execute and optimize systematic trading strategies across multiple asset classes.",
		Requirements: []string{
			"Understanding of algorithmic trading and execution",
			"Experience with order management systems",
			"Knowledge of market microstructure",
			"Ability to work in fast-paced environments",
		},
	},
	{
		Title:       "Data Scientist",
		Type:        "Part-time",
		Location:    "Hybrid",
		Department:  "Analytics",
		Description: "Analyze large datasets to uncover trading signals and improve model performance.",
		Requirements: []string{
			"Strong ML/AI background",
			"Experience with big data technologies",
			"Proficiency in Python and SQL",
			"Previous experience in finance (preferred)",
		},
	},
}

// OpenPositions returns a copy of the advertised roles in display order
func OpenPositions() []Position {
	out := make([]Position, len(openPositions))
	for i, p := range openPositions {
		p.Requirements = append([]string(nil), p.Requirements...)
		out[i] = p
	}
	return out
}

// FindPosition looks a role up by title, ignoring case and surrounding spaces
func FindPosition(title string) (Position, bool) {
	title = strings.TrimSpace(title)
	for _, p := range OpenPositions() {
		if strings.EqualFold(p.Title, title) {
			return p, true
		}
	}
	return Position{}, false
}

// DialogTitle is the heading of the apply dialog
func DialogTitle(jobTitle string) string {
	if jobTitle == "" {
		return "Apply Now"
	}
	return fmt.Sprintf("Apply for %s", jobTitle)
}

// DialogDescription is the line shown under the dialog heading
func DialogDescription(jobTitle string) string {
	if jobTitle == "" {
		return "Join the Kings Quant Society and be part of our community of quantitative finance enthusiasts."
	}
	return fmt.Sprintf("Join our team as a %s and be part of the Kings Quant Society.", jobTitle)
}

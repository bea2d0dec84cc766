package quiz

// DefaultLabel is used for answers that have no entry in the career map.
const DefaultLabel = "General Career Path"

// Question is a single multiple-choice quiz step.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Questions is the fixed career assessment.
var Questions = []Question{
	{
		Prompt:  "What do you enjoy more?",
		Options: []string{"Solving math problems", "Creating art", "Helping people", "Leading teams"},
	},
	{
		Prompt:  "Which activity do you prefer?",
		Options: []string{"Writing code", "Designing posters", "Teaching kids", "Starting a business"},
	},
	{
		Prompt:  "Pick a favorite subject:",
		Options: []string{"Physics", "Painting", "Psychology", "Economics"},
	},
}

var careerMap = map[string]string{
	"Solving math problems": "Engineer",
	"Creating art":          "Graphic Designer",
	"Helping people":        "Social Worker / Psychologist",
	"Leading teams":         "Entrepreneur / Manager",
	"Writing code":          "Software Developer",
	"Designing posters":     "UI/UX Designer",
	"Teaching kids":         "Teacher / Counselor",
	"Starting a business":   "Startup Founder",
	"Physics":               "Scientist / Engineer",
	"Painting":              "Artist / Illustrator",
	"Psychology":            "Counselor / Therapist",
	"Economics":             "Economist / Business Analyst",
}

// LabelFor maps a quiz answer to its career label.
func LabelFor(answer string) string {
	if label, ok := careerMap[answer]; ok {
		return label
	}
	return DefaultLabel
}

func (q Question) hasOption(choice string) bool {
	for _, option := range q.Options {
		if option == choice {
			return true
		}
	}
	return false
}

package app

import (
	"sort"
	"time"

	"student-analyzer/internal/domain"
)

// ExamBank holds the immutable exam definitions compiled into the service.
type ExamBank struct {
	exams map[string]domain.ExamDefinition
}

// NewExamBank builds a bank from definitions; later ids replace earlier ones.
func NewExamBank(defs ...domain.ExamDefinition) *ExamBank {
	b := &ExamBank{exams: make(map[string]domain.ExamDefinition, len(defs))}
	for _, def := range defs {
		b.exams[def.ID] = def
	}
	return b
}

// DefaultExamBank returns the built-in DSA, DAA, aptitude, UI and UI tool exams.
func DefaultExamBank() *ExamBank {
	defs := []domain.ExamDefinition{dsaExam(), daaExam(), aptitudeExam(), uiExam()}
	defs = append(defs, uiToolExams()...)
	return NewExamBank(defs...)
}

// Get returns the definition with answer keys.
func (b *ExamBank) Get(id string) (domain.ExamDefinition, error) {
	def, ok := b.exams[id]
	if !ok {
		return domain.ExamDefinition{}, domain.ErrExamNotFound
	}
	return def, nil
}

// List returns catalog summaries ordered by id.
func (b *ExamBank) List() []domain.ExamSummary {
	out := make([]domain.ExamSummary, 0, len(b.exams))
	for _, def := range b.exams {
		out = append(out, domain.ExamSummary{
			ID:            def.ID,
			Subject:       def.Subject,
			Title:         def.Title,
			Tool:          def.Tool,
			Questions:     def.QuestionCount(),
			TimeLimitSecs: int(def.TimeLimit / time.Second),
			GradingRule:   def.GradingRule,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

const percentRule = "score = round(correct / total * 100); unanswered questions count as incorrect"

func dsaExam() domain.ExamDefinition {
	return domain.ExamDefinition{
		ID:          "dsa",
		Subject:     domain.SubjectDSA,
		Title:       "Data Structures & Algorithms",
		TimeLimit:   60 * time.Minute,
		GradingRule: percentRule + "; coding problems are not graded",
		Sections: []domain.Section{
			{
				Name: "mcq",
				Questions: []domain.Question{
					{ID: "dsa-1", Prompt: "What is the time complexity of binary search?", Options: []string{"O(n)", "O(log n)", "O(n log n)", "O(1)"}, Correct: 1},
					{ID: "dsa-2", Prompt: "Which data structure uses LIFO principle?", Options: []string{"Queue", "Stack", "Linked List", "Tree"}, Correct: 1},
					{ID: "dsa-3", Prompt: "Which sorting algorithm has the best average-case time complexity?", Options: []string{"Bubble Sort", "Insertion Sort", "Merge Sort", "Selection Sort"}, Correct: 2},
					{ID: "dsa-4", Prompt: "In a binary search tree (BST), the left child is always?", Options: []string{"Smaller than parent", "Larger than parent", "Same as parent", "Null"}, Correct: 0},
					{ID: "dsa-5", Prompt: "Which data structure is used to implement recursion?", Options: []string{"Queue", "Stack", "Array", "Graph"}, Correct: 1},
				},
			},
			{
				Name: "coding",
				Questions: []domain.Question{
					{ID: "dsa-code-1", Prompt: "Write a function to reverse a singly linked list.", Difficulty: "Medium", Template: "function reverseLinkedList(head) {\n  // Your code here\n}"},
					{ID: "dsa-code-2", Prompt: "Given an array of integers, return indices of the two numbers such that they add up to a specific target.", Difficulty: "Easy", Template: "function twoSum(nums, target) {\n  // Your code here\n}"},
				},
			},
		},
	}
}

func daaExam() domain.ExamDefinition {
	return domain.ExamDefinition{
		ID:          "daa",
		Subject:     domain.SubjectDAA,
		Title:       "Design & Analysis of Algorithms",
		TimeLimit:   20 * time.Minute,
		GradingRule: percentRule,
		Sections: []domain.Section{{
			Name: "mcq",
			Questions: []domain.Question{
				{ID: "daa-1", Prompt: "What is the worst-case time complexity of Merge Sort?", Options: []string{"O(n log n)", "O(n²)", "O(n)", "O(log n)"}, Correct: 0},
				{ID: "daa-2", Prompt: "Which algorithm is used to find the Shortest Path in a graph with positive edge weights?", Options: []string{"Prim's Algorithm", "Kruskal's Algorithm", "Dijkstra's Algorithm", "Bellman-Ford"}, Correct: 2},
				{ID: "daa-3", Prompt: "Dynamic Programming is best suited for problems with which property?", Options: []string{"Greedy Choice Property", "Overlapping Subproblems", "Disjoint Subproblems", "Linear Linearity"}, Correct: 1},
				{ID: "daa-4", Prompt: "What approach does the Knapsack Problem (Fractional) use?", Options: []string{"Dynamic Programming", "Divide and Conquer", "Greedy Approach", "Backtracking"}, Correct: 2},
				{ID: "daa-5", Prompt: "Master Theorem is used for?", Options: []string{"Solving recurrences", "Sorting arrays", "Searching graphs", "Memory allocation"}, Correct: 0},
			},
		}},
	}
}

func aptitudeExam() domain.ExamDefinition {
	return domain.ExamDefinition{
		ID:          "aptitude",
		Subject:     domain.SubjectAptitude,
		Title:       "Aptitude",
		TimeLimit:   45 * time.Minute,
		GradingRule: percentRule,
		Sections: []domain.Section{
			{
				Name: "quantitative",
				Questions: []domain.Question{
					{ID: "quant-1", Prompt: "If a train travels 300 km in 5 hours, what is its speed?", Options: []string{"50 km/h", "60 km/h", "65 km/h", "70 km/h"}, Correct: 1},
					{ID: "quant-2", Prompt: "What is 25% of 200?", Options: []string{"25", "50", "75", "100"}, Correct: 1},
					{ID: "quant-3", Prompt: "If x + 5 = 12, what is the value of x?", Options: []string{"5", "6", "7", "8"}, Correct: 2},
				},
			},
			{
				Name: "reasoning",
				Questions: []domain.Question{
					{ID: "reason-1", Prompt: "Complete the series: 2, 4, 8, 16, ?", Options: []string{"24", "32", "64", "128"}, Correct: 1},
					{ID: "reason-2", Prompt: "If all roses are flowers and some flowers fade quickly, which statement must be true?", Options: []string{"All roses fade quickly", "Some roses fade quickly", "No roses fade quickly", "Some flowers that fade quickly are roses"}, Correct: 3},
					{ID: "reason-3", Prompt: "A is B's sister. C is B's mother. D is C's father. How is A related to D?", Options: []string{"Granddaughter", "Grandson", "Daughter", "Sister"}, Correct: 0},
				},
			},
		},
	}
}

func uiExam() domain.ExamDefinition {
	return domain.ExamDefinition{
		ID:          "ui",
		Subject:     domain.SubjectUI,
		Title:       "UI Fundamentals",
		TimeLimit:   15 * time.Minute,
		GradingRule: percentRule,
		Sections: []domain.Section{{
			Name: "mcq",
			Questions: []domain.Question{
				{ID: "ui-1", Prompt: "Which CSS property is used to change the text color?", Options: []string{"font-color", "text-color", "color", "fg-color"}, Correct: 2},
				{ID: "ui-2", Prompt: "In Mobile UI design, what does 'Responsive Design' primarily aim to achieve?", Options: []string{"Faster loading", "Adaptability to screen sizes", "Higher SEO", "Better contrast"}, Correct: 1},
				{ID: "ui-3", Prompt: "Which unit is relative to the font-size of the root element?", Options: []string{"em", "rem", "px", "vh"}, Correct: 1},
				{ID: "ui-4", Prompt: "What does 'z-index' control?", Options: []string{"Opacity", "Horizontal alignment", "Vertical stacking order", "Zoom"}, Correct: 2},
				{ID: "ui-5", Prompt: "Which UI framework is utility-first?", Options: []string{"Bootstrap", "Material UI", "Tailwind CSS", "Foundation"}, Correct: 2},
			},
		}},
	}
}

func uiToolExams() []domain.ExamDefinition {
	tools := []struct {
		id, name  string
		questions []domain.Question
	}{
		{"figma", "Figma", []domain.Question{
			{ID: "figma-1", Prompt: "Which feature allows elements to automatically resize based on their content?", Options: []string{"Auto Layout", "Constraints", "Smart Selection", "Vector Networks"}, Correct: 0},
			{ID: "figma-2", Prompt: "What is the primary file format for saving a local copy of a Figma design?", Options: []string{".fig", ".sketch", ".psd", ".xd"}, Correct: 0},
			{ID: "figma-3", Prompt: "Figma is primarily known for being:", Options: []string{"Offline-only", "Web-based & Real-time collaborative", "Windows-only", "Raster-based"}, Correct: 1},
		}},
		{"xd", "Adobe XD", []domain.Question{
			{ID: "xd-1", Prompt: "Which feature allows you to replicate a group of elements vertically or horizontally?", Options: []string{"Content Aware Layout", "Repeat Grid", "Smart Animate", "Stacks"}, Correct: 1},
			{ID: "xd-2", Prompt: "Adobe XD integrates most seamlessly with:", Options: []string{"Sketch", "Figma", "Photoshop & Illustrator", "CorelDraw"}, Correct: 2},
			{ID: "xd-3", Prompt: "Can you preview mobile prototypes directly on a device using the XD app?", Options: []string{"Yes, via USB or Cloud", "No, only on desktop", "Yes, but only offline", "No, requires third-party tools"}, Correct: 0},
		}},
		{"sketch", "Sketch", []domain.Question{
			{ID: "sketch-1", Prompt: "Sketch is essentially native to which operating system?", Options: []string{"Windows", "macOS", "Linux", "Android"}, Correct: 1},
			{ID: "sketch-2", Prompt: "What are reusable UI components called in Sketch?", Options: []string{"Components", "Symbols", "Assets", "Prefabs"}, Correct: 1},
			{ID: "sketch-3", Prompt: "Sketch is primarily a ___ based design tool.", Options: []string{"Raster", "Vector", "3D", "Code"}, Correct: 1},
		}},
		{"invision", "InVision", []domain.Question{
			{ID: "invision-1", Prompt: "What is InVision's digital whiteboard tool called?", Options: []string{"Freehand", "Whiteboard", "Draw", "Sketchpad"}, Correct: 0},
			{ID: "invision-2", Prompt: "InVision is best known for enhancing:", Options: []string{"Photo Editing", "Prototyping & Collaboration", "3D Modeling", "Video Editing"}, Correct: 1},
			{ID: "invision-3", Prompt: "Which tool allows you to create a design system in InVision?", Options: []string{"DSM (Design System Manager)", "Library", "Style Guide", "Assets Panel"}, Correct: 0},
		}},
		{"framer", "Framer", []domain.Question{
			{ID: "framer-1", Prompt: "Framer is highly regarded for its ability to:", Options: []string{"Edit Photos", "Create Production-ready Code (React)", "Print Design", "Vector Illustration"}, Correct: 1},
			{ID: "framer-2", Prompt: "What is the feature called that creates complex animations between screens automatically?", Options: []string{"Auto Animate", "Magic Motion", "Smart Transition", "Liquid Flow"}, Correct: 1},
			{ID: "framer-3", Prompt: "Framer started as a tool that required knowledge of:", Options: []string{"Python", "CoffeeScript / JavaScript", "C++", "Swift"}, Correct: 1},
		}},
	}

	out := make([]domain.ExamDefinition, 0, len(tools))
	for _, tool := range tools {
		out = append(out, domain.ExamDefinition{
			ID:          "ui-tool-" + tool.id,
			Subject:     domain.SubjectUITool,
			Title:       tool.name + " Quiz",
			Tool:        tool.name,
			TimeLimit:   10 * time.Minute,
			GradingRule: percentRule,
			Sections:    []domain.Section{{Name: tool.id, Questions: tool.questions}},
		})
	}
	return out
}

package demo

import (
	"fmt"

	"github.com/pandalive/panda/internal/domain/entities"
)

// GenerateTasks derives a canned task set from the transcript. The demo
// backend has no language model; the set mirrors what task generation
// produces for the scripted narration.
func GenerateTasks(transcript string) []entities.Task {
	tasks := []entities.Task{
		entities.NewTask("Review AI fundamentals", "Go through the basic concepts of artificial intelligence discussed in the session", entities.PriorityMedium),
		entities.NewTask("Practice neural network exercises", "Complete hands-on exercises related to neural network architectures", entities.PriorityHigh),
		entities.NewTask("Research machine learning applications", "Explore real-world applications of machine learning in various industries", entities.PriorityLow),
	}
	return tasks
}

// Answer produces the canned assistant response for a question
func Answer(message string) string {
	return fmt.Sprintf("Based on the session content, here's what I understand about your question: '%s'. "+
		"The speaker discussed several relevant concepts that relate to this topic. "+
		"Key points include the importance of understanding fundamental principles and their practical applications.", message)
}

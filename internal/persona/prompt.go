package persona

import (
	"fmt"
	"strings"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

// Builder assembles completion prompts under an explicit character budget.
// Entries are included newest first at whole-entry granularity; whatever
// does not fit is dropped, oldest first, so the output is deterministic
// for a given input set.
type Builder struct {
	MaxContextChars int
	MaxHistory      int
}

func NewBuilder(maxContextChars, maxHistory int) *Builder {
	if maxContextChars <= 0 {
		maxContextChars = 12000
	}
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Builder{MaxContextChars: maxContextChars, MaxHistory: maxHistory}
}

// JournalContext renders entries (assumed newest first) into a context
// block no longer than the budget.
func (b *Builder) JournalContext(entries []model.Entry) string {
	var blocks []string
	used := 0
	for _, e := range entries {
		block := fmt.Sprintf("[%s] %s:\n%s", e.Date, e.Title, e.Content)
		if used+len(block) > b.MaxContextChars {
			break
		}
		blocks = append(blocks, block)
		used += len(block)
	}
	return strings.Join(blocks, "\n\n")
}

// EntrySummaries renders up to n "- title: content" lines, budgeted.
func (b *Builder) EntrySummaries(entries []model.Entry, n int) string {
	if len(entries) > n {
		entries = entries[:n]
	}
	var lines []string
	used := 0
	for _, e := range entries {
		line := fmt.Sprintf("- %s: %s", e.Title, e.Content)
		if used+len(line) > b.MaxContextChars {
			break
		}
		lines = append(lines, line)
		used += len(line)
	}
	return strings.Join(lines, "\n")
}

// AnalysisPrompt builds the single user-role prompt for session analysis.
func (b *Builder) AnalysisPrompt(personaID, transcript string, entries []model.Entry) string {
	if transcript == "" {
		transcript = "No transcript available."
	}
	return fmt.Sprintf(`%s

Analyze the following user session and journal entries.
Provide a deep, insightful analysis of their current state of mind, recurring themes, and potential areas for growth.

Session Transcript:
%s

Recent Journal Entries:
%s

Return the analysis as a plain text string (markdown is okay).`,
		Prompt(personaID), b.clip(transcript), b.EntrySummaries(entries, len(entries)))
}

// SummaryPrompt asks the model to merge the existing profile with the new
// session into one narrative rather than appending.
func (b *Builder) SummaryPrompt(currentSummary, analysis, transcript string, entries []model.Entry) string {
	if currentSummary == "" {
		currentSummary = "No summary yet."
	}
	const transcriptExcerpt = 2000
	if len(transcript) > transcriptExcerpt {
		transcript = transcript[:transcriptExcerpt] + "..."
	}
	return fmt.Sprintf(`You are an expert psychologist building a cumulative profile of a user.

Current User Summary:
"%s"

New Information from latest session (Transcript & Analysis):
Analysis: %s

Transcript Excerpt: %s

Recent Journal Entries:
%s

Task:
Update the "User Summary" to incorporate insights from this new session and recent entries.
The summary should be a concise but comprehensive psychological profile (2-3 paragraphs).
It should describe who they are, their core values, recurring struggles, communication style, and what they enjoy.
Do NOT just append the new info. Integrate it into a cohesive narrative.
If the current summary is "No summary yet.", create a fresh one.`,
		currentSummary, b.clip(analysis), transcript, b.EntrySummaries(entries, 5))
}

// ChatMessages builds the system prompt plus capped history for a session
// conversation.
func (b *Builder) ChatMessages(personaID, userSummary string, entries []model.Entry, history []model.Message) []Turn {
	system := Prompt(personaID)
	if userSummary != "" {
		system += "\n\nUSER PROFILE / CONTEXT:\n" + b.clip(userSummary)
	}
	if context := b.JournalContext(entries); context != "" {
		system += "\n\nHere is the user's journal for context:\n\n" + context
	}

	if len(history) > b.MaxHistory {
		history = history[len(history)-b.MaxHistory:]
	}

	turns := []Turn{{Role: "system", Content: system}}
	for _, m := range history {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// DailyChatMessages is the same pattern scoped to one entry.
func (b *Builder) DailyChatMessages(personaID, userSummary string, entry *model.Entry, history []model.DailyChatMessage) []Turn {
	system := Prompt(personaID)
	if userSummary != "" {
		system += "\n\nUSER PROFILE / CONTEXT:\n" + b.clip(userSummary)
	}
	if entry != nil {
		system += fmt.Sprintf("\n\nToday's journal entry (day %d):\n[%s] %s:\n%s",
			entry.DayNumber, entry.Date, entry.Title, b.clip(entry.Content))
	}

	if len(history) > b.MaxHistory {
		history = history[len(history)-b.MaxHistory:]
	}

	turns := []Turn{{Role: "system", Content: system}}
	for _, m := range history {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// Turn mirrors the chat-completion wire shape without importing the ai
// package here.
type Turn struct {
	Role    string
	Content string
}

func (b *Builder) clip(s string) string {
	if len(s) > b.MaxContextChars {
		return s[:b.MaxContextChars]
	}
	return s
}

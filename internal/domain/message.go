package domain

// Chat roles understood by the completion service.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one turn of a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemPrompt builds the two-message request every completion in the bot
// uses: a persona and one user message.
func SystemPrompt(system, user string) []ChatMessage {
	return []ChatMessage{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

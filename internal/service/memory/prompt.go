package memory

import (
	"fmt"
	"strings"

	"github.com/sandevgo/recall/internal/core"
)

// buildExtractionInstruction renders the system turn sent with every
// extraction request. The taxonomy is listed from core.Categories so the
// generator never sees a category the parser would reject.
func buildExtractionInstruction() string {
	var cats strings.Builder
	for _, c := range core.Categories() {
		fmt.Fprintf(&cats, "- %s: %s\n", c, c.Describe())
	}

	return fmt.Sprintf(`You are a memory extraction system. Read the user's message and extract durable facts about the user.
Output only valid JSON with this exact shape:
{"memories":[{"content":"<fact>","category":"<category>"}],"hasMemories":<true|false>}

Categories:
%s
Rules:
1. Ignore greetings, small talk and questions that reveal nothing about the user.
2. Each fact must be self-contained and refer to the user as "User".
3. Use only the categories listed above.
4. If there is nothing worth remembering, answer {"memories":[],"hasMemories":false}.`, cats.String())
}

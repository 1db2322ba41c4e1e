package core

const (
	AppName          = "recall"
	AppUserAgent     = "recall/0.1"
	AppRepositoryURL = "https://github.com/sandevgo/recall"
	AppVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

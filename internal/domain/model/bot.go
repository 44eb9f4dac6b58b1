package model

// BotUpdate is an inbound event from the chat platform.
type BotUpdate struct {
	Message  *BotMessage
	Callback *BotCallback
}

// BotMessage is a plain text message sent to the bot.
type BotMessage struct {
	ChatID    int64
	FirstName string
	Text      string
}

// BotCallback is an inline button press.
type BotCallback struct {
	ID     string
	ChatID int64
	Data   string
}

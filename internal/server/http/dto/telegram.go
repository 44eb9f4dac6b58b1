package dto

import "github.com/polkiloo/digistore/internal/domain/model"

// TelegramUpdate is the subset of a bot API update the store reacts to.
type TelegramUpdate struct {
	UpdateID      int64                  `json:"update_id"`
	Message       *TelegramMessage       `json:"message"`
	CallbackQuery *TelegramCallbackQuery `json:"callback_query"`
}

type TelegramMessage struct {
	Chat TelegramChat  `json:"chat"`
	From *TelegramUser `json:"from"`
	Text string        `json:"text"`
}

type TelegramChat struct {
	ID int64 `json:"id"`
}

type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type TelegramCallbackQuery struct {
	ID      string           `json:"id"`
	Data    string           `json:"data"`
	From    *TelegramUser    `json:"from"`
	Message *TelegramMessage `json:"message"`
}

// ToModel converts the wire update into the bot domain update.
func (u TelegramUpdate) ToModel() model.BotUpdate {
	var out model.BotUpdate
	if cb := u.CallbackQuery; cb != nil {
		callback := &model.BotCallback{ID: cb.ID, Data: cb.Data}
		switch {
		case cb.Message != nil:
			callback.ChatID = cb.Message.Chat.ID
		case cb.From != nil:
			callback.ChatID = cb.From.ID
		}
		out.Callback = callback
	}
	if msg := u.Message; msg != nil {
		message := &model.BotMessage{ChatID: msg.Chat.ID, Text: msg.Text}
		if msg.From != nil {
			message.FirstName = msg.From.FirstName
		}
		out.Message = message
	}
	return out
}

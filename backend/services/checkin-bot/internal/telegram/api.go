// Package telegram connects the chat router to the Telegram Bot API.
package telegram

import (
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// requestMargin is added on top of the long-poll timeout so getUpdates is not cut short.
const requestMargin = 15 * time.Second

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// NewAPI logs in with token. Every HTTP request is bounded by pollTimeout plus a margin.
func NewAPI(token string, pollTimeout time.Duration) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: pollTimeout + requestMargin}
	return tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
}

package telegram

import (
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{TelegramAPIURL: "https://api.telegram.org", TelegramBotToken: testToken, TelegramAdminChatID: "42"}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.adminChatID != "42" || client.endpoint("getMe") != "https://api.telegram.org/bot"+testToken+"/getMe" {
		t.Fatalf("client not configured from config: %+v", client)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	cfg := &config.Config{TelegramAPIURL: "relative"}
	if _, err := newClient(clientParams{Config: cfg, Logger: testLogger()}); err == nil {
		t.Fatal("expected error")
	}
}

func TestModuleProvidesBothPorts(t *testing.T) {
	var (
		messenger usecase.Messenger
		commander usecase.BotCommander
	)
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(&config.Config{TelegramAPIURL: "https://api.telegram.org"}, testLogger()),
		Module,
		fx.Populate(&messenger, &commander),
	)
	app.RequireStart().RequireStop()

	if _, ok := messenger.(*Client); !ok {
		t.Fatalf("expected *Client messenger, got %T", messenger)
	}
	if any(commander) != any(messenger) {
		t.Fatal("expected one client to serve both ports")
	}
}

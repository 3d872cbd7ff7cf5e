package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/shopbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fakeCommandSetter struct {
	calls [][]interface{}
	err   error
}

func (f *fakeCommandSetter) SetCommands(opts ...interface{}) error {
	f.calls = append(f.calls, opts)
	return f.err
}

func noopHandler(tele.Context) error { return nil }

func TestSetupCommandsPublishesVisibleCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     noopHandler,
		Description: "Open the shop",
	})
	reg.RegisterCommand("/debug", commands.Command{
		Handler:     noopHandler,
		Description: "Internal diagnostics",
		Hidden:      true,
	})

	bot := &fakeCommandSetter{}
	SetupCommands(bot, reg)

	if len(bot.calls) != 1 {
		t.Fatalf("expected one SetCommands call, got %d", len(bot.calls))
	}
	if len(bot.calls[0]) != 1 {
		t.Fatalf("unexpected argument count: %d", len(bot.calls[0]))
	}
	list, ok := bot.calls[0][0].([]tele.Command)
	if !ok {
		t.Fatalf("unexpected argument type %T", bot.calls[0][0])
	}
	if len(list) != 1 {
		t.Fatalf("expected only visible commands, got %v", list)
	}
	if list[0].Text != "/start" || list[0].Description != "Open the shop" {
		t.Fatalf("unexpected command published: %+v", list[0])
	}
}

func TestSetupCommandsToleratesSetFailure(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     noopHandler,
		Description: "Open the shop",
	})

	bot := &fakeCommandSetter{err: errors.New("api unreachable")}
	SetupCommands(bot, reg)

	if len(bot.calls) != 1 {
		t.Fatalf("expected SetCommands to be attempted, got %d calls", len(bot.calls))
	}
}

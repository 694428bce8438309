package main

import (
	"github.com/blixt/go-switchboard/announce"
	"github.com/blixt/go-switchboard/proxy"
)

// Sent by players.

type ChatMessage struct {
	From    string `json:"from"`
	Content string `json:"content"`
}

func (m ChatMessage) Type() string {
	return "chat"
}

type SwitchMessage struct {
	Server string `json:"server"`
}

func (m SwitchMessage) Type() string {
	return "switch"
}

// Sent by the proxy.

type WelcomeMessage struct {
	Server  string   `json:"server"`
	Players []string `json:"players"`
}

func (m WelcomeMessage) Type() string {
	return "welcome"
}

type AnnouncementMessage struct {
	Text  string         `json:"text"`
	Color announce.Color `json:"color"`
}

func (m AnnouncementMessage) Type() string {
	return "announcement"
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func (m ErrorMessage) Type() string {
	return "error"
}

var messageRegistry = proxy.MessageRegistry[proxy.Message]{}

func init() {
	messageRegistry.Register(
		&ChatMessage{},
		&SwitchMessage{},
		&WelcomeMessage{},
		&AnnouncementMessage{},
		&ErrorMessage{},
	)
}

package api

import (
	"github.com/fitly-app/stylist/storage"
	"github.com/fitly-app/stylist/stylist"
)

// Package-level dependencies wired once from main.
var (
	profiles   *storage.ProfileStore
	media      *storage.MediaStore
	dispatcher *stylist.Dispatcher
	machine    *stylist.StateMachine
	logic      *stylist.Logic
)

// Setup injects the handlers' dependencies.
func Setup(p *storage.ProfileStore, m *storage.MediaStore, d *stylist.Dispatcher, sm *stylist.StateMachine, l *stylist.Logic) {
	profiles = p
	media = m
	dispatcher = d
	machine = sm
	logic = l
}

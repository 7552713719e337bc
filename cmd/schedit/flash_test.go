package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

// TestFlashPhase verifies the normal/inverted phases of a flashing message.
func TestFlashPhase(t *testing.T) {
	tests := []struct {
		elapsed      int64
		wantInverted bool
		description  string
	}{
		{-1, false, "negative elapsed - normal"},
		{0, false, "start of flash - normal"},
		{124, false, "end of phase 0 - normal"},
		{125, true, "start of phase 1 - inverted"},
		{249, true, "end of phase 1 - inverted"},
		{250, false, "start of phase 2 - normal"},
		{374, false, "end of phase 2 - normal"},
		{375, true, "start of phase 3 - inverted"},
		{499, true, "end of phase 3 - inverted"},
		{500, false, "after flash period - normal"},
		{1000, false, "long after flash - normal"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := flashInverted(tt.elapsed); got != tt.wantInverted {
				t.Errorf("elapsed=%d: got inverted=%v, want %v", tt.elapsed, got, tt.wantInverted)
			}
		})
	}
}

// TestFlashMessageTypes verifies which message types flash.
func TestFlashMessageTypes(t *testing.T) {
	tests := []struct {
		msgType     MessageType
		shouldFlash bool
	}{
		{MsgInfo, false},
		{MsgError, true},
		{MsgSuccess, true},
		{MsgWarning, true},
		{MessageType(99), false},
	}

	for _, tt := range tests {
		if got := flashes(tt.msgType); got != tt.shouldFlash {
			t.Errorf("msgType=%v: got flashes=%v, want %v", tt.msgType, got, tt.shouldFlash)
		}
	}
}

// TestShowMessageRestartsFlash verifies each message starts its own cycle.
func TestShowMessageRestartsFlash(t *testing.T) {
	a, _ := newTestApp(t)

	a.showMessage("First error", MsgError)
	first := a.messageFlashStart
	if first == 0 {
		t.Fatal("flash start not recorded")
	}

	a.messageFlashStart = first - 1000
	a.showMessage("Second error", MsgError)
	if a.messageFlashStart <= first-1000 {
		t.Error("second message did not restart the flash")
	}
	if a.message != "Second error" || a.messageType != MsgError {
		t.Errorf("message = %q/%v", a.message, a.messageType)
	}
}

// TestStatusBarShowsMessage verifies the message lands on the last row.
func TestStatusBarShowsMessage(t *testing.T) {
	a, screen := newTestApp(t)
	a.showMessage("Saved drawing", MsgSuccess)
	a.messageFlashStart = 1 // long past, drawn normal
	a.draw()

	w, h := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, h-1)
		sb.WriteRune(r)
	}
	_, _, style, _ := screen.GetContent(w-3, h-1)
	if _, bg, _ := style.Decompose(); bg != tcell.ColorNavy {
		t.Errorf("message background = %v, want navy", bg)
	}
	if !strings.Contains(sb.String(), "Saved drawing") {
		t.Errorf("status bar = %q", sb.String())
	}
}

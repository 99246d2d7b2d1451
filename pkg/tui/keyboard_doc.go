package tui

/*
Package tui runs numeric entry forms in a terminal.

Architecture

An App owns a goterm screen and a single event loop. Three sources feed the
loop: key events parsed from raw terminal bytes, a render ticker, and tasks
posted through App.Dispatch. Field repeat ticks are dispatched that way, so
stepping, key handling and rendering never run concurrently.

Key Components

1. KeyEvent: one decoded key press:
   - Regular characters, including multi-byte UTF-8
   - Special keys (Enter, Escape, Tab, arrows, Home, End, Delete)
   - Modifiers (Ctrl, Shift, Alt)

2. KeyboardHandler: app-level bindings such as focus movement and quit.
   Keys without a binding go to the view.

3. FormView: lays out a form's fields as labelled input boxes, shows its
   computed values and a status bar with the focused field's bounds.

Key Input

ParseKeyInput decodes what a terminal in raw mode sends: CSI and SS3 escape
sequences, ESC-prefixed Alt keys and control characters. A single read may
hold several keys; unknown sequences decode to an empty event.

Terminals report presses but not releases, so a held arrow arrives as a
stream of auto-repeated presses. The input component treats the hold as
released once no arrow press arrived for components.ReleaseDelay.

Key Scripts

ParseKeyScript reads space separated key names ("Up", "Shift-Tab",
"Backspace") and literal text, which is typed one character at a time:

	events, err := ParseKeyScript("-12.5 Left Backspace")

Usage

	screen, err := goterm.Init()
	if err != nil {
		return err
	}
	app, err := tui.NewApp(screen)
	if err != nil {
		return err
	}
	defer app.Close()

	view, err := tui.NewFormView(def, app.Dispatch, logger)
	if err != nil {
		return err
	}
	defer view.Close()

	if err := app.SetView(view); err != nil {
		return err
	}
	return app.Run()
*/

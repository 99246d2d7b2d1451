package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dshills/goterm"
)

// frameInterval is the render tick, about 60 frames per second
const frameInterval = 16 * time.Millisecond

// View is what the App shows and feeds keys to
type View interface {
	HandleKey(event KeyEvent) error
	Render(screen *goterm.Screen) error
	Tick(now time.Time)
}

// bindingRegistrar is implemented by views with their own keybindings
type bindingRegistrar interface {
	RegisterBindings(kh *KeyboardHandler) error
}

// AppOption configures an App
type AppOption func(*App)

// WithInput replaces stdin as the source of terminal bytes
func WithInput(r io.Reader) AppOption {
	return func(a *App) {
		a.input = r
	}
}

// App represents the TUI application root. Keys, render ticks and tasks
// posted through Dispatch are all handled on the Run goroutine.
type App struct {
	screen    *goterm.Screen
	view      View
	keyboard  *KeyboardHandler
	running   bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	inputChan chan KeyEvent
	tasks     chan func()
	input     io.Reader
}

// NewApp creates an application drawing to screen, usually the screen
// returned by goterm.Init. Ctrl-c quits.
func NewApp(screen *goterm.Screen, opts ...AppOption) (*App, error) {
	if screen == nil {
		return nil, errors.New("screen cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		screen:    screen,
		keyboard:  NewKeyboardHandler(),
		ctx:       ctx,
		cancel:    cancel,
		inputChan: make(chan KeyEvent, 100),
		tasks:     make(chan func(), 16),
		input:     os.Stdin,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.keyboard.RegisterBinding(
		KeyEvent{Key: 'c', Ctrl: true},
		func(KeyEvent) error {
			app.cancel()
			return nil
		},
		"quit",
	); err != nil {
		cancel()
		return nil, err
	}

	return app, nil
}

// SetView sets the view and registers its bindings
func (a *App) SetView(v View) error {
	if r, ok := v.(bindingRegistrar); ok {
		if err := r.RegisterBindings(a.keyboard); err != nil {
			return fmt.Errorf("failed to register keybindings: %w", err)
		}
	}
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
	return nil
}

// Keyboard returns the keyboard handler
func (a *App) Keyboard() *KeyboardHandler {
	return a.keyboard
}

// Dispatch queues fn to run on the Run goroutine. It is a numfield
// Dispatcher: field repeat ticks go through it so they never race with key
// handling or rendering. After Stop it drops fn.
func (a *App) Dispatch(fn func()) {
	select {
	case a.tasks <- fn:
	case <-a.ctx.Done():
	}
}

// Stop ends Run
func (a *App) Stop() {
	a.cancel()
}

// Running reports whether Run is active
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Run starts the TUI application main loop
func (a *App) Run() error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go a.readKeyboardInput()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	if err := a.render(); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}

	for {
		select {
		case <-a.ctx.Done():
			return nil

		case <-sigChan:
			a.cancel()
			return nil

		case event := <-a.inputChan:
			if err := a.handleKeyEvent(event); err != nil {
				return err
			}
			if err := a.render(); err != nil {
				return err
			}

		case fn := <-a.tasks:
			fn()
			if err := a.render(); err != nil {
				return err
			}

		case now := <-ticker.C:
			a.tick(now)
			if err := a.render(); err != nil {
				return err
			}
		}
	}
}

// handleKeyEvent runs a bound handler or passes the key to the view
func (a *App) handleKeyEvent(event KeyEvent) error {
	handled, err := a.keyboard.HandleKey(event)
	if err != nil {
		return fmt.Errorf("keyboard handler error: %w", err)
	}
	if handled {
		return nil
	}

	if v := a.currentView(); v != nil {
		if err := v.HandleKey(event); err != nil {
			return fmt.Errorf("view key handler error: %w", err)
		}
	}
	return nil
}

// runPending runs queued tasks without blocking
func (a *App) runPending() {
	for {
		select {
		case fn := <-a.tasks:
			fn()
		default:
			return
		}
	}
}

func (a *App) tick(now time.Time) {
	if v := a.currentView(); v != nil {
		v.Tick(now)
	}
}

func (a *App) currentView() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// draw renders the view into the screen buffer
func (a *App) draw() error {
	a.screen.Clear()
	if v := a.currentView(); v != nil {
		if err := v.Render(a.screen); err != nil {
			return fmt.Errorf("view render failed: %w", err)
		}
	}
	return nil
}

// render draws the current view and shows the screen
func (a *App) render() error {
	if err := a.draw(); err != nil {
		return err
	}
	if err := a.screen.Show(); err != nil {
		return fmt.Errorf("screen show failed: %w", err)
	}
	return nil
}

// readKeyboardInput reads keyboard input in a background goroutine
func (a *App) readKeyboardInput() {
	buf := make([]byte, 64)

	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		// Blocking read - terminal is already in raw mode from goterm
		n, err := a.input.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.cancel()
				return
			}
			continue
		}

		for _, event := range ParseKeyInput(buf[:n]) {
			select {
			case a.inputChan <- event:
			case <-a.ctx.Done():
				return
			}
		}
	}
}

// Close stops the loop and restores the terminal
func (a *App) Close() error {
	a.cancel()
	if err := a.screen.Close(); err != nil {
		return fmt.Errorf("failed to close screen: %w", err)
	}
	return nil
}

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wavetermdev/guiml/pkg/engine"
)

type tickMsg time.Time

type Options struct {
	Tick time.Duration
	// QuitKeys end the program, default ctrl+c
	QuitKeys []string
}

type model struct {
	engine   *engine.Engine
	term     *Terminal
	opts     Options
	lastTick time.Time
	frameErr error
}

func newModel(e *engine.Engine, t *Terminal, opts Options) *model {
	if opts.Tick <= 0 {
		tickSecs := float64(engine.DefaultTick)
		opts.Tick = time.Duration(tickSecs * float64(time.Second))
	}
	if len(opts.QuitKeys) == 0 {
		opts.QuitKeys = []string{"ctrl+c"}
	}
	return &model{engine: e, term: t, opts: opts}
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(m.opts.Tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Init() tea.Cmd {
	return m.tick()
}

// frame runs one engine frame. Frame errors are logged once per distinct
// message and the program keeps going with the previous drawing.
func (m *model) frame(now time.Time) {
	dt := engine.DefaultTick
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now
	err := m.engine.Frame(dt)
	if err != nil && (m.frameErr == nil || err.Error() != m.frameErr.Error()) {
		log.Printf("[termui] frame %d: %v\n", m.engine.FrameNum(), err)
	}
	m.frameErr = err
}

func (m *model) isQuit(key string) bool {
	for _, q := range m.opts.QuitKeys {
		if key == q {
			return true
		}
	}
	return false
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.frame(time.Time(msg))
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.term.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if m.isQuit(msg.String()) {
			return m, tea.Quit
		}
		if sink := m.term.Sink(); sink != nil {
			dispatchKey(sink, msg)
		}
	case tea.MouseMsg:
		if sink := m.term.Sink(); sink != nil {
			dispatchMouse(sink, msg)
		}
	}
	return m, nil
}

func (m *model) View() string {
	return m.term.View()
}

// Run drives e in the terminal until a quit key is pressed or ctx ends.
// The engine's tree is destroyed before Run returns.
func Run(ctx context.Context, e *engine.Engine, t *Terminal, opts Options) error {
	defer e.Shutdown()
	p := tea.NewProgram(newModel(e, t, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

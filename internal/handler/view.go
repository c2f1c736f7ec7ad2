package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/game"
)

// Editor edits a previously sent message. *tele.Bot implements it.
type Editor interface {
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// frame is one rendered message.
type frame struct {
	text   string
	markup *tele.ReplyMarkup
}

// View is the Telegram renderer of one player's host. Render only records
// the latest snapshot; a background loop edits the player's dashboard
// message, dropping intermediate frames when edits fall behind.
type View struct {
	editor  Editor
	total   func() int64
	limiter *rate.Limiter

	mu      sync.Mutex
	target  tele.Editable
	pending *frame
	snap    *game.Snapshot
	last    string

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewView creates a view and starts its edit loop. editsPerSecond bounds
// how often the message is edited; zero means unlimited.
func NewView(editor Editor, total func() int64, editsPerSecond float64) *View {
	limit := rate.Inf
	if editsPerSecond > 0 {
		limit = rate.Limit(editsPerSecond)
	}
	if total == nil {
		total = func() int64 { return 0 }
	}
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		editor:  editor,
		total:   total,
		limiter: rate.NewLimiter(limit, 1),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go v.run()
	return v
}

// SetTarget points the view at the message it edits.
func (v *View) SetTarget(msg tele.Editable) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.target != nil {
		oldID, oldChat := v.target.MessageSig()
		newID, newChat := msg.MessageSig()
		if oldID == newID && oldChat == newChat {
			return
		}
	}
	v.target = msg
	v.last = ""
}

// Render implements host.Renderer.
func (v *View) Render(_ context.Context, snap game.Snapshot, _ game.Result) {
	v.mu.Lock()
	v.snap = &snap
	v.mu.Unlock()
	v.signal()
}

// ShowMenu replaces any pending game frame with the catalogue.
func (v *View) ShowMenu(text string, markup *tele.ReplyMarkup) {
	v.mu.Lock()
	v.snap = nil
	v.pending = &frame{text: text, markup: markup}
	v.mu.Unlock()
	v.signal()
}

// Close stops the edit loop. Pending frames are dropped.
func (v *View) Close() {
	v.cancel()
	<-v.done
}

func (v *View) signal() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

func (v *View) run() {
	defer close(v.done)
	for {
		select {
		case <-v.ctx.Done():
			return
		case <-v.wake:
		}
		if err := v.limiter.Wait(v.ctx); err != nil {
			return
		}
		v.flush()
	}
}

// next takes the frame to draw, if any.
func (v *View) next() (tele.Editable, *frame) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var f *frame
	switch {
	case v.snap != nil:
		snap := *v.snap
		v.snap = nil
		f = &frame{text: FormatSnapshot(snap, v.total()), markup: BuildBoard(snap)}
	case v.pending != nil:
		f = v.pending
	}
	v.pending = nil
	if f == nil || v.target == nil {
		return nil, nil
	}

	key := f.text + "\x00" + markupKey(f.markup)
	if key == v.last {
		return nil, nil
	}
	v.last = key
	return v.target, f
}

func (v *View) flush() {
	target, f := v.next()
	if f == nil {
		return
	}
	_, err := v.editor.Edit(target, f.text, f.markup)
	if err != nil && !errors.Is(err, tele.ErrSameMessageContent) {
		log.Warn().Err(err).Msg("Failed to update dashboard message")
	}
}

func markupKey(m *tele.ReplyMarkup) string {
	if m == nil {
		return ""
	}
	var key []byte
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			key = append(key, b.Text...)
			key = append(key, '|')
			key = append(key, b.Data...)
			key = append(key, ';')
		}
		key = append(key, '\n')
	}
	return string(key)
}

package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/game"
)

type edit struct {
	target tele.Editable
	text   string
	markup *tele.ReplyMarkup
}

// fakeMessenger records sends and edits.
type fakeMessenger struct {
	mu     sync.Mutex
	nextID int
	sent   []string
	edits  []edit
}

func (f *fakeMessenger) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, fmt.Sprint(what))
	return &tele.Message{ID: f.nextID, Chat: &tele.Chat{ID: 1}}, nil
}

func (f *fakeMessenger) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edit{target: msg, text: fmt.Sprint(what)}
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			e.markup = m
		}
	}
	f.edits = append(f.edits, e)
	return nil, nil
}

func (f *fakeMessenger) Edits() []edit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]edit(nil), f.edits...)
}

func snapWithStatus(status string) game.Snapshot {
	return game.Snapshot{Kind: game.KindDice, Title: "🎲 Dice Roll", Status: status}
}

func TestView_RendersToTarget(t *testing.T) {
	ed := &fakeMessenger{}
	v := NewView(ed, func() int64 { return 7 }, 0)
	defer v.Close()

	msg := &tele.Message{ID: 3, Chat: &tele.Chat{ID: 1}}
	v.SetTarget(msg)
	v.Render(context.Background(), snapWithStatus("rolling"), game.Apply())

	require.Eventually(t, func() bool { return len(ed.Edits()) == 1 }, time.Second, 5*time.Millisecond)
	e := ed.Edits()[0]
	assert.Equal(t, msg, e.target)
	assert.Contains(t, e.text, "rolling")
	assert.Contains(t, e.text, "🏅 Dashboard score: 7")
	require.NotNil(t, e.markup)
}

func TestView_NoTargetNoEdit(t *testing.T) {
	ed := &fakeMessenger{}
	v := NewView(ed, nil, 0)
	v.Render(context.Background(), snapWithStatus("a"), game.Apply())
	time.Sleep(30 * time.Millisecond)
	v.Close()
	assert.Empty(t, ed.Edits())
}

func TestView_SkipsIdenticalFrames(t *testing.T) {
	ed := &fakeMessenger{}
	v := NewView(ed, nil, 0)
	defer v.Close()
	v.SetTarget(&tele.Message{ID: 3, Chat: &tele.Chat{ID: 1}})

	v.Render(context.Background(), snapWithStatus("same"), game.Apply())
	require.Eventually(t, func() bool { return len(ed.Edits()) == 1 }, time.Second, 5*time.Millisecond)

	v.Render(context.Background(), snapWithStatus("same"), game.Apply())
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, ed.Edits(), 1)

	// A new target message is always drawn
	v.SetTarget(&tele.Message{ID: 4, Chat: &tele.Chat{ID: 1}})
	v.Render(context.Background(), snapWithStatus("same"), game.Apply())
	require.Eventually(t, func() bool { return len(ed.Edits()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestView_CoalescesUnderRateLimit(t *testing.T) {
	ed := &fakeMessenger{}
	v := NewView(ed, nil, 10)
	defer v.Close()
	v.SetTarget(&tele.Message{ID: 3, Chat: &tele.Chat{ID: 1}})

	for i := 0; i < 20; i++ {
		v.Render(context.Background(), snapWithStatus(fmt.Sprintf("frame %d", i)), game.Apply())
	}

	require.Eventually(t, func() bool {
		edits := ed.Edits()
		return len(edits) > 0 && strings.Contains(edits[len(edits)-1].text, "frame 19")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Less(t, len(ed.Edits()), 20)
}

func TestView_ShowMenuReplacesFrame(t *testing.T) {
	ed := &fakeMessenger{}
	v := NewView(ed, nil, 0)
	defer v.Close()
	v.SetTarget(&tele.Message{ID: 3, Chat: &tele.Chat{ID: 1}})

	markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{{Text: "x", Data: "arc_noop"}}}}
	v.ShowMenu("Choose a game:", markup)

	require.Eventually(t, func() bool { return len(ed.Edits()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Choose a game:", ed.Edits()[0].text)
	assert.Same(t, markup, ed.Edits()[0].markup)
}

package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
)

func TestEveryStateHasTemplate(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	for _, st := range chat.States() {
		out, err := r.Render(ctx, st, Vars{})
		if err != nil {
			t.Fatalf("Render(%s) err: %v", st, err)
		}
		if out == "" {
			t.Fatalf("Render(%s) produced empty text", st)
		}
	}
	if _, err := r.RenderKey(ctx, SessionEnded, Vars{}); err != nil {
		t.Fatalf("session ended template err: %v", err)
	}
}

func TestBookingPromptsFollowSlots(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	cases := []struct {
		slots map[string]string
		want  string
	}{
		{map[string]string{"city": "Delhi"}, "book a table in Delhi! Which date"},
		{map[string]string{"date": "tomorrow"}, "Got it, tomorrow. What time"},
		{map[string]string{"date": "tomorrow", "time": "7pm"}, "tomorrow at 7pm it is. How many guests"},
		{map[string]string{"date": "tomorrow", "time": "7pm", "guests": "4"}, "4 guests on tomorrow at 7pm. Shall I confirm"},
	}
	for _, tc := range cases {
		out, err := r.Render(ctx, chat.StateBooking, Vars{Context: tc.slots, Intent: chat.IntentBooking})
		if err != nil {
			t.Fatalf("Render err: %v", err)
		}
		if !strings.Contains(out, tc.want) {
			t.Fatalf("booking prompt %q does not contain %q", out, tc.want)
		}
	}
}

func TestFallbackQuotesQuery(t *testing.T) {
	r := New(nil)
	out, err := r.Render(context.Background(), chat.StateFallback, Vars{Query: "sing a song"})
	if err != nil {
		t.Fatalf("Render err: %v", err)
	}
	if !strings.Contains(out, `"sing a song"`) {
		t.Fatalf("fallback should echo query, got %q", out)
	}
}

func TestOverridesAndMissingTemplate(t *testing.T) {
	r := New(map[string]string{"goodbye": "See you, {{index .context \"city\"}}!"})
	ctx := context.Background()

	out, err := r.Render(ctx, chat.StateGoodbye, Vars{Context: map[string]string{"city": "Delhi"}})
	if err != nil || out != "See you, Delhi!" {
		t.Fatalf("override render = %q, %v", out, err)
	}

	if _, err := r.RenderKey(ctx, "nope", Vars{}); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

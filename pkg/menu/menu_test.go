package menu

import (
	"fmt"
	"testing"

	ui "github.com/gizak/termui/v3"
)

type testItem struct {
	key string
}

func (i *testItem) KeyLen() int {
	return len(i.key)
}

func (i *testItem) Line(keyLen int) string {
	return fmt.Sprintf("%-*s|", keyLen, i.key)
}

func TestNewParagraph(t *testing.T) {
	testText := "newParagraph test"
	p := newParagraph(testText, false, 0, 50, 3)
	if testText != p.Text {
		t.Errorf("Incorrect value for p.Text. got: %v, want: %v", p.Text, testText)
	}
}

func TestLines(t *testing.T) {
	items := []Item{&testItem{"a"}, &testItem{"abcd"}, &testItem{""}}
	want := []string{"a   |", "abcd|", "    |"}
	got := Lines(items)
	if len(got) != len(want) {
		t.Fatalf("Lines returned %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func pressKey(ch chan ui.Event, input []string) {
	var key ui.Event
	for _, id := range input {
		key = ui.Event{
			Type: ui.KeyboardEvent,
			ID:   id,
		}
		ch <- key
	}
}

func TestDisplayMenu(t *testing.T) {
	var items []Item
	for i := 1; i <= 12; i++ {
		items = append(items, &testItem{key: fmt.Sprintf("item %d", i)})
	}
	three := items[:3]

	for _, tt := range []struct {
		name      string
		items     []Item
		userInput []string
		want      int
		wantOK    bool
	}{
		{
			name:      "hit_0",
			items:     three,
			userInput: []string{"0", "<Enter>"},
			want:      0,
			wantOK:    true,
		},
		{
			name:      "hit_2",
			items:     three,
			userInput: []string{"2", "<Enter>"},
			want:      2,
			wantOK:    true,
		},
		{
			name:      "error_input_then_right_input",
			items:     three,
			userInput: []string{"0", "a", "<Enter>", "1", "<Enter>"},
			want:      1,
			wantOK:    true,
		},
		{
			name:      "exceed_the_bound_then_right_input",
			items:     three,
			userInput: []string{"4", "<Enter>", "0", "<Enter>"},
			want:      0,
			wantOK:    true,
		},
		{
			name:      "right_input_with_backspace",
			items:     three,
			userInput: []string{"2", "a", "<Backspace>", "<Enter>"},
			want:      2,
			wantOK:    true,
		},
		{
			name:      "escape",
			items:     three,
			userInput: []string{"1", "<Escape>"},
			wantOK:    false,
		},
		{
			name:  "<pageDown>_<pageUp>_<pageDown>_hit_11",
			items: items,
			// hit <pageDown> -> <pageUp> -> <pageDown> current page is : 10~11
			userInput: []string{"<PageDown>", "<pageUp>", "<PageDown>", "1", "1", "<Enter>"},
			want:      11,
			wantOK:    true,
		},
		{
			name:  "<Down>_<End>_then_right_input",
			items: items,
			// hit <Down> -> <End> current page is : 2~11 because the <End> will move to the last page
			userInput: []string{"<Down>", "<End>", "4", "<Enter>"},
			want:      4,
			wantOK:    true,
		},
		{
			name:  "<Down>_<Home>_then_right_input",
			items: items,
			// hit <Down> -> <Home> current page is : 0~9
			userInput: []string{"<Down>", "<Home>", "0", "<Enter>"},
			want:      0,
			wantOK:    true,
		},
		{
			name:  "<MouseWheelDown>_<MouseWheelDown>_<MouseWheelUp>_then_right_input",
			items: items,
			// current page is : 1~10
			userInput: []string{"<MouseWheelDown>", "<MouseWheelDown>", "<MouseWheelUp>", "10", "<Enter>"},
			want:      10,
			wantOK:    true,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			uiEvents := make(chan ui.Event)
			go pressKey(uiEvents, tt.userInput)

			got, ok, err := DisplayMenu("test menu title", tt.name, tt.items, uiEvents)

			if err != nil {
				t.Errorf("Error: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("Incorrect ok. got %v, want %v", ok, tt.wantOK)
			}
			if ok && tt.want != got {
				t.Errorf("Incorrect choice. Choose %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTermSelectEmpty(t *testing.T) {
	_, ok, err := Term{}.Select("", nil)
	if err != nil || ok {
		t.Errorf("Select on no items = %v, %v; want false, nil", ok, err)
	}
}

package menu

import (
	"fmt"
	"io"
	"strconv"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

const menuWidth = 80
const menuHeight = 12
const pageSize = 10

// Item is anything that can be listed in a menu.
type Item interface {
	// KeyLen is the display width of the item's key column.
	KeyLen() int
	// Line renders the item with its key column padded to keyLen.
	Line(keyLen int) string
}

// Lines renders items with their key columns aligned to the widest key.
func Lines(items []Item) []string {
	keyLen := 0
	for _, it := range items {
		keyLen = max(keyLen, it.KeyLen())
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.Line(keyLen)
	}
	return lines
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func Init() error {
	return ui.Init()
}

func Close() {
	ui.Close()
}

// newParagraph returns a widgets.Paragraph struct with given initial text.
func newParagraph(initText string, border bool, location int, wid int, ht int) *widgets.Paragraph {
	p := widgets.NewParagraph()
	p.Text = initText
	p.Border = border
	p.SetRect(0, location, wid, location+ht)
	p.TextStyle.Fg = ui.ColorWhite
	return p
}

// readKey reads a key from input stream.
func readKey(uiEvents <-chan ui.Event) string {
	for {
		e := <-uiEvents
		if e.Type == ui.KeyboardEvent || e.Type == ui.MouseEvent {
			return e.ID
		}
	}
}

// showPage renders labels[first:last] into the menu.
func showPage(menu *widgets.List, title string, labels []string, first, last int) {
	menu.Rows = labels[first:last]
	menu.Title = fmt.Sprintf(title, first, len(labels))
	ui.Render(menu)
}

// parsingMenuOption parses the user's operation in the menu page, such as
// page up, page down, selection. It returns -1 if the user backed out.
func parsingMenuOption(labels []string, menu *widgets.List, input, warning *widgets.Paragraph, uiEvents <-chan ui.Event) (int, error) {
	if len(labels) == 0 {
		return 0, fmt.Errorf("No Entry in the menu")
	}

	menuTitle := menu.Title + "---%v/%v"

	// first, last always point to the first and last entry in current menu page
	first := 0
	last := min(pageSize, len(labels))
	showPage(menu, menuTitle, labels, first, last)

	// keep tracking all input from user
	for {
		k := readKey(uiEvents)
		switch k {
		case "<C-d>":
			return 0, io.EOF
		case "<Escape>", "<C-c>":
			return -1, nil
		case "<Enter>":
			choose := input.Text
			input.Text = ""
			ui.Render(input)
			c, err := strconv.Atoi(choose)
			// input is valid when it is a number inside the current page.
			if err == nil && c >= first && c < last {
				return c, nil
			}
			warning.Text = "Please enter a valid entry number."
			ui.Render(warning)
		case "<Backspace>":
			if len(input.Text) > 0 {
				input.Text = input.Text[:len(input.Text)-1]
				ui.Render(input)
			}
		case "<Left>", "<PageUp>":
			first = max(0, first-pageSize)
			last = min(first+pageSize, len(labels))
			showPage(menu, menuTitle, labels, first, last)
		case "<Right>", "<PageDown>":
			if first+pageSize >= len(labels) {
				continue
			}
			first = first + pageSize
			last = min(first+pageSize, len(labels))
			showPage(menu, menuTitle, labels, first, last)
		case "<Up>", "<MouseWheelUp>":
			first = max(0, first-1)
			last = min(first+pageSize, len(labels))
			showPage(menu, menuTitle, labels, first, last)
		case "<Down>", "<MouseWheelDown>":
			last = min(last+1, len(labels))
			first = max(0, last-pageSize)
			showPage(menu, menuTitle, labels, first, last)
		case "<Home>":
			first = 0
			last = min(first+pageSize, len(labels))
			showPage(menu, menuTitle, labels, first, last)
		case "<End>":
			last = len(labels)
			first = max(0, last-pageSize)
			showPage(menu, menuTitle, labels, first, last)
		default:
			// the termui use a string begin at '<' to represent some special keys
			// for example the 'F1' key will be parsed to "<F1>" string .
			// we only care about digits here.
			if k[0:1] != "<" {
				input.Text += k
				ui.Render(input)
			}
		}
	}
}

// DisplayMenu presents all items in a numbered menu and lets the user pick
// one by number. ok is false if the user backed out with <Escape>.
func DisplayMenu(menuTitle string, introwords string, items []Item, uiEvents <-chan ui.Event) (n int, ok bool, err error) {
	defer ui.Clear()

	listData := []string{}
	for i, l := range Lines(items) {
		listData = append(listData, fmt.Sprintf("[%d] %s", i, l))
	}

	location := 0
	menu := widgets.NewList()
	menu.Title = menuTitle
	// menus's hight always be 12, which could diplay 10 entrys in one page
	menu.SetRect(0, location, menuWidth, location+menuHeight)
	location += menuHeight
	menu.TextStyle.Fg = ui.ColorWhite

	intro := newParagraph(introwords, false, location, len(introwords)+4, 3)
	location += 2
	input := newParagraph("", true, location, menuWidth, 3)
	location += 3
	warning := newParagraph("", false, location, menuWidth, 3)

	ui.Render(intro)
	ui.Render(input)
	ui.Render(warning)

	n, err = parsingMenuOption(listData, menu, input, warning, uiEvents)
	if err != nil {
		return 0, false, fmt.Errorf("Fail to get the choose from menu: %+v", err)
	}
	if n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}

// Term selects from a full screen termui menu.
type Term struct {
	Title string
}

// Select takes over the terminal for the duration of one choice.
func (t Term) Select(prompt string, items []Item) (int, bool, error) {
	if len(items) == 0 {
		return 0, false, nil
	}
	if err := Init(); err != nil {
		return 0, false, err
	}
	defer Close()
	if prompt == "" {
		prompt = "Choose an option"
	}
	return DisplayMenu(t.Title, prompt, items, ui.PollEvents())
}

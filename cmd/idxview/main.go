// idxview is a terminal browser over one index's ordered key space,
// backed by a Badger database holding its B-tree nodes.
//
// Usage:
//
//	idxview <badger-dir> <scope>           # interactive mode
//	idxview -l <badger-dir> <scope>        # list mode (print all)
//	idxview -l -n 20 <badger-dir> <scope>  # list first 20 items
//
// Interactive mode:
//
//	j/↓    scroll down
//	k/↑    scroll up
//	g      jump to first
//	G      jump to last
//	/      jump to the first key >= the typed text
//	q/Esc  quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/btree"
	"github.com/dacapoday/idxkv/index"
	"github.com/dacapoday/idxkv/kvtx/badgerkv"
	"github.com/dgraph-io/badger/v4"
	"golang.org/x/term"
)

type scope []byte

func (s scope) Scope() []byte { return s }

func main() {
	listFlag := flag.Bool("l", false, "list mode (non-interactive)")
	countFlag := flag.Int("n", 0, "number of items (0 = all)")
	orderFlag := flag.Uint("order", btree.DefaultOrder, "B-tree order, if the index is being created fresh")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: idxview [-l] [-n count] <badger-dir> <scope>")
		os.Exit(1)
	}
	dir, scopeName := flag.Arg(0), flag.Arg(1)

	items, err := loadItems(dir, scopeName, uint32(*orderFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *listFlag {
		runList(items, *countFlag)
		return
	}
	runInteractive(items)
}

type item struct {
	key     []byte
	payload bkeys.Payload
}

// loadItems opens db read-only, walks the whole index in order, and
// returns it as a slice. The B-tree engine here exposes a whole-tree
// ordered walk rather than a persistent cursor object, so — unlike the
// teacher's DBIter-driven loader — browsing works over one eagerly
// materialized snapshot instead of paging a live cursor.
func loadItems(dir, scopeName string, order uint32) ([]item, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithReadOnly(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx := context.Background()
	var items []item
	err = db.View(func(txn *badger.Txn) error {
		tx := badgerkv.Wrap(txn, false)
		idx := index.Open(scope(scopeName), btree.Options{Order: order})
		seq, err := idx.IterOrdered(ctx, tx)
		if err != nil {
			return err
		}
		for k, p := range seq {
			items = append(items, item{key: append([]byte(nil), k...), payload: p})
		}
		return nil
	})
	return items, err
}

func runList(items []item, count int) {
	n := 0
	for _, it := range items {
		if count > 0 && n >= count {
			break
		}
		fmt.Printf("%s: %d\n", display(it.key, 40), it.payload)
		n++
	}
}

func runInteractive(items []item) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	v := &viewer{all: items}
	v.updateSize()
	v.clampAndWindow()

	fmt.Print("\033[?25l\033[2J")              // hide cursor, clear screen once
	defer fmt.Print("\033[?25h\033[2J\033[H")  // show cursor, clear screen

	reader := bufio.NewReader(os.Stdin)

	for {
		if v.updateSize() {
			v.clampAndWindow()
		}
		v.render()

		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		v.status = ""

		switch b {
		case 'q', 3, 27: // q, Ctrl+C, Esc
			if b == 27 && reader.Buffered() > 0 {
				b2, _ := reader.ReadByte()
				if b2 == '[' {
					b3, _ := reader.ReadByte()
					switch b3 {
					case 'A':
						v.up()
					case 'B':
						v.down()
					case '5':
						reader.ReadByte()
						v.pageUp()
					case '6':
						reader.ReadByte()
						v.pageDown()
					}
				}
				continue
			}
			return
		case 'j':
			v.down()
		case 'k':
			v.up()
		case 'g':
			v.first()
		case 'G':
			v.last()
		case '/':
			v.search(reader)
		}
	}
}

// viewer pages a fixed, already-sorted slice of items — the in-memory
// analogue of the teacher's cursor-driven viewer over a live DBIter.
type viewer struct {
	all    []item
	top    int // index into all of the first visible row
	width  int
	height int
	status string
}

func (v *viewer) updateSize() bool {
	w, h, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		w, h = 80, 24
	}
	if w == v.width && h == v.height {
		return false
	}
	v.width, v.height = w, h
	return true
}

func (v *viewer) lines() int {
	n := v.height - 4
	if n < 1 {
		n = 1
	}
	return n
}

func (v *viewer) clampAndWindow() {
	if v.top > len(v.all)-1 {
		v.top = len(v.all) - 1
	}
	if v.top < 0 {
		v.top = 0
	}
}

func (v *viewer) window() []item {
	end := v.top + v.lines()
	if end > len(v.all) {
		end = len(v.all)
	}
	return v.all[v.top:end]
}

func (v *viewer) down() {
	if v.top+v.lines() < len(v.all) {
		v.top++
	}
}

func (v *viewer) up() {
	if v.top > 0 {
		v.top--
	}
}

func (v *viewer) pageDown() {
	for i := 0; i < v.lines()-1; i++ {
		v.down()
	}
}

func (v *viewer) pageUp() {
	for i := 0; i < v.lines()-1; i++ {
		v.up()
	}
}

func (v *viewer) first() { v.top = 0 }

func (v *viewer) last() {
	v.top = len(v.all) - v.lines()
	v.clampAndWindow()
}

func (v *viewer) search(reader *bufio.Reader) {
	fmt.Print("\033[?25h")
	fmt.Printf("\033[%d;1H\033[K/", v.height)

	var input []byte
	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if b == 27 || b == 3 {
			fmt.Print("\033[?25l")
			v.status = ""
			return
		}
		if b == 13 || b == 10 {
			break
		}
		if b == 127 || b == 8 {
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Print("\b \b")
			}
			continue
		}
		if b >= 32 && b < 127 {
			input = append(input, b)
			fmt.Print(string(b))
		}
	}
	fmt.Print("\033[?25l")

	if len(input) == 0 {
		v.status = ""
		return
	}

	key := string(input)
	idx := 0
	for ; idx < len(v.all); idx++ {
		if string(v.all[idx].key) >= key {
			break
		}
	}
	if idx < len(v.all) {
		v.top = idx
		v.clampAndWindow()
		v.status = fmt.Sprintf("jumped to: %s", display([]byte(key), 20))
	} else {
		v.status = "not found"
	}
}

func (v *viewer) render() {
	var b strings.Builder
	b.WriteString("\033[H")
	b.WriteString("[ idxview ]\033[K\r\n")
	b.WriteString(strings.Repeat("─", v.width))
	b.WriteString("\033[K\r\n")

	keyWidth := 40
	valWidth := v.width - keyWidth - 4
	if valWidth < 10 {
		valWidth = 10
	}

	win := v.window()
	lines := v.lines()
	for i := 0; i < lines; i++ {
		if i < len(win) {
			it := win[i]
			b.WriteString(display(it.key, keyWidth))
			b.WriteString(": ")
			fmt.Fprintf(&b, "%*d", valWidth, it.payload)
		} else {
			b.WriteString("~")
		}
		b.WriteString("\033[K\r\n")
	}

	b.WriteString(strings.Repeat("─", v.width))
	b.WriteString("\033[K\r\n")

	pos := fmt.Sprintf("[%d/%d]", v.top, len(v.all))
	if v.status != "" {
		b.WriteString(" ")
		b.WriteString(v.status)
		b.WriteString(" ")
		b.WriteString(pos)
	} else {
		b.WriteString(" j/k:scroll g/G:jump /:search q:quit ")
		b.WriteString(pos)
	}
	b.WriteString("\033[K")

	fmt.Print(b.String())
}

// display formats bytes for display, truncating if needed. Tries to show
// as a string if printable, otherwise hex.
func display(b []byte, maxLen int) string {
	if len(b) == 0 {
		return "(empty)"
	}
	if utf8.Valid(b) && isPrintable(b) {
		runes := []rune(string(b))
		if len(runes) > maxLen-3 {
			return string(runes[:maxLen-3]) + "..."
		}
		return string(runes)
	}
	hex := fmt.Sprintf("%x", b)
	if len(hex) > maxLen-3 {
		return hex[:maxLen-3] + "..."
	}
	return hex
}

func isPrintable(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

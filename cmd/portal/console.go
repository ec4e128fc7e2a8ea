package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/go-portal-auth/credentials"
	"github.com/jrsteele09/go-portal-auth/internal/errors"
	"github.com/jrsteele09/go-portal-auth/portal"
)

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var strengthColours = map[credentials.StrengthLabel]string{
	credentials.StrengthWeak:   Red,
	credentials.StrengthFair:   Yellow,
	credentials.StrengthGood:   Cyan,
	credentials.StrengthStrong: Green,
}

var (
	_ portal.View      = (*console)(nil)
	_ portal.Navigator = (*console)(nil)
)

// console renders the portal's view signals as terminal lines and records
// where the portal would navigate next
type console struct {
	mu       sync.Mutex
	out      io.Writer
	colour   bool
	location string
}

func newConsole(out io.Writer, colour bool) *console {
	return &console{out: out, colour: colour}
}

func (c *console) paint(colour, text string) string {
	if !c.colour {
		return text
	}
	return colour + text + ResetColor
}

func (c *console) println(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) SetBusy(form portal.Form, busy bool) {
	if busy {
		c.println("%s", c.paint(Gray, fmt.Sprintf("[%s] please wait...", form)))
	}
}

func (c *console) ShowError(form portal.Form, message string) {
	c.println("%s", c.paint(Red, fmt.Sprintf("[%s] %s", form, message)))
}

func (c *console) ShowSuccess(form portal.Form, message string) {
	c.println("%s", c.paint(Green, fmt.Sprintf("[%s] %s", form, message)))
}

func (c *console) ShowPasswordChange() {
	c.println("%s", c.paint(Yellow, "You signed in with a temporary password. Choose a new password to continue."))
}

func (c *console) Navigate(path string) {
	c.mu.Lock()
	c.location = path
	c.mu.Unlock()
	c.println("%s", c.paint(Cyan, "-> "+path))
}

// Location is the last path navigated to
func (c *console) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

func (c *console) strength(password string) string {
	score := credentials.Score(password)
	label := credentials.Strength(score)
	return c.paint(strengthColours[label], fmt.Sprintf("%s (%d/100)", label, score))
}

// prompter reads answers one line at a time
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label and returns the next line without its line ending
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", errors.ErrInputClosed
		}
		return "", errors.Wrapf(err, "reading %s", strings.ToLower(label))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

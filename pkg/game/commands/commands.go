// Package commands implements the console's built-in command set and the
// configuration variable (cvar) store. The registry also feeds the
// autocomplete engine its candidate list.
package commands

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"

	"darkconsole/pkg/engine/console"
)

// cvarMap stores configuration variables
var cvarMap = make(map[string]string)
var cvarMutex sync.RWMutex

// Scrollback categories used by command output.
const (
	CategoryInfo  = "info"
	CategoryError = "error"
	CategoryCvar  = "cvar"
)

// Output colors. Frontends may restyle these via the colors.* cvars.
var (
	ColorText  = color.RGBA{R: 200, G: 210, B: 245, A: 255}
	ColorError = color.RGBA{R: 255, G: 100, B: 100, A: 255}
	ColorCvar  = color.RGBA{R: 100, G: 150, B: 255, A: 255}
)

// initCvars populates the default configuration variables.
func initCvars() {
	cvarMutex.Lock()
	defer cvarMutex.Unlock()
	cvarMap["colors.text"] = "200,210,245,255"
	cvarMap["colors.error"] = "255,100,100,255"
	cvarMap["colors.cvar"] = "100,150,255,255"
	cvarMap["colors.echo"] = "200,210,245,255"
	cvarMap["colors.match"] = "255,220,100,255"
	cvarMap["colors.match_current"] = "255,150,50,255"
	cvarMap["console.prompt"] = "> "
}

// ParseColorRGBA parses "R,G,B,A" into color.RGBA. Values 0-255.
func ParseColorRGBA(s string) (color.RGBA, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return color.RGBA{}, false
	}
	var vals [4]uint8
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return color.RGBA{}, false
		}
		vals[i] = uint8(n)
	}
	return color.RGBA{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, true
}

// GetCvar retrieves a configuration variable value.
func GetCvar(name string) (string, bool) {
	cvarMutex.RLock()
	defer cvarMutex.RUnlock()
	value, exists := cvarMap[name]
	return value, exists
}

// SetCvar sets a configuration variable value.
func SetCvar(name, value string) {
	cvarMutex.Lock()
	defer cvarMutex.Unlock()
	cvarMap[name] = value
}

// CvarNames returns all cvar names in alphabetical order.
func CvarNames() []string {
	cvarMutex.RLock()
	names := make([]string, 0, len(cvarMap))
	for name := range cvarMap {
		names = append(names, name)
	}
	cvarMutex.RUnlock()
	sort.Strings(names)
	return names
}

// loadColorsFromCvars reads colors.* back into the output color variables.
func loadColorsFromCvars() {
	assign := func(key string, dst *color.RGBA) {
		if s, ok := GetCvar(key); ok {
			if c, ok := ParseColorRGBA(s); ok {
				*dst = c
			}
		}
	}
	assign("colors.text", &ColorText)
	assign("colors.error", &ColorError)
	assign("colors.cvar", &ColorCvar)
}

// Handler executes one command against the console session.
type Handler func(con *console.Console, args []string)

// Command is one console command with its usage line for help and
// autocomplete detail.
type Command struct {
	Name    string
	Usage   string
	Handler Handler
}

// Registry holds the command table in registration order.
type Registry struct {
	commands map[string]Command
	order    []string
}

// NewRegistry returns a registry preloaded with the built-in commands.
func NewRegistry() *Registry {
	initCvars()
	r := &Registry{commands: make(map[string]Command)}
	r.Register(Command{Name: "help", Usage: gotext.Get("help - Show available commands"), Handler: r.cmdHelp})
	r.Register(Command{Name: "get", Usage: gotext.Get("get <cvar> - Get a configuration variable"), Handler: cmdGet})
	r.Register(Command{Name: "set", Usage: gotext.Get("set <cvar> <value> - Set a configuration variable"), Handler: cmdSet})
	r.Register(Command{Name: "list", Usage: gotext.Get("list - List all cvars"), Handler: cmdList})
	r.Register(Command{Name: "clear", Usage: gotext.Get("clear - Clear console output"), Handler: cmdClear})
	r.Register(Command{Name: "fold", Usage: gotext.Get("fold <line> - Toggle folding of the section at line"), Handler: cmdFold})
	r.Register(Command{Name: "filter", Usage: gotext.Get("filter <category>|off - Show only one output category"), Handler: cmdFilter})
	r.Register(Command{Name: "history", Usage: gotext.Get("history - Show submitted commands"), Handler: cmdHistory})
	r.Register(Command{Name: "color_update", Usage: gotext.Get("color_update - Reload colors from cvars"), Handler: cmdColorUpdate})
	return r
}

// Register adds or replaces a command.
func (r *Registry) Register(cmd Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Candidates returns autocomplete entries: every command plus every cvar
// name, with usage strings as inline detail.
func (r *Registry) Candidates() []console.Candidate {
	out := make([]console.Candidate, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, console.Candidate{Text: name, Detail: r.commands[name].Usage, Payload: name})
	}
	for _, name := range CvarNames() {
		value, _ := GetCvar(name)
		out = append(out, console.Candidate{Text: name, Detail: value, Payload: name})
	}
	return out
}

// Execute parses and runs a submitted line, writing output into the
// console's scrollback. Unknown commands report an error-colored line.
func (r *Registry) Execute(con *console.Console, line string) {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return
	}
	name := strings.ToLower(parts[0])
	cmd, ok := r.commands[name]
	if !ok {
		errorf(con, gotext.Get("Unknown command: %s (type 'help' for commands)"), name)
		return
	}
	cmd.Handler(con, parts[1:])
}

func printf(con *console.Console, format string, a ...any) {
	con.Print(fmt.Sprintf(format, a...), ColorText, CategoryInfo)
}

func errorf(con *console.Console, format string, a ...any) {
	con.Print(fmt.Sprintf(format, a...), ColorError, CategoryError)
}

func (r *Registry) cmdHelp(con *console.Console, args []string) {
	printf(con, gotext.Get("Commands:"))
	for _, name := range r.order {
		printf(con, "  %s", r.commands[name].Usage)
	}
}

func cmdGet(con *console.Console, args []string) {
	if len(args) < 1 {
		errorf(con, gotext.Get("Usage: get <cvar>"))
		return
	}
	name := strings.ToLower(args[0])
	if value, exists := GetCvar(name); exists {
		con.Print(fmt.Sprintf("%s = %q", name, value), ColorCvar, CategoryCvar)
	} else {
		errorf(con, gotext.Get("Unknown cvar: %s"), name)
	}
}

func cmdSet(con *console.Console, args []string) {
	if len(args) < 2 {
		errorf(con, gotext.Get("Usage: set <cvar> <value>"))
		return
	}
	name := strings.ToLower(args[0])
	value := strings.Join(args[1:], " ")
	SetCvar(name, value)
	con.Print(fmt.Sprintf("%s = %q", name, value), ColorCvar, CategoryCvar)
}

func cmdList(con *console.Console, args []string) {
	names := CvarNames()
	if len(names) == 0 {
		printf(con, gotext.Get("No cvars defined"))
		return
	}
	printf(con, gotext.Get("Cvars (%d):"), len(names))
	for _, name := range names {
		value, _ := GetCvar(name)
		con.Print(fmt.Sprintf("  %s = %q", name, value), ColorCvar, CategoryCvar)
	}
}

func cmdClear(con *console.Console, args []string) {
	con.Scrollback.Clear()
}

func cmdFold(con *console.Console, args []string) {
	if len(args) < 1 {
		errorf(con, gotext.Get("Usage: fold <line>"))
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		errorf(con, gotext.Get("Not a line number: %s"), args[0])
		return
	}
	if !con.Scrollback.ToggleSection(n) {
		errorf(con, gotext.Get("No section starts at line %d"), n)
	}
}

func cmdFilter(con *console.Console, args []string) {
	if len(args) < 1 {
		errorf(con, gotext.Get("Usage: filter <category>|off"))
		return
	}
	if strings.EqualFold(args[0], "off") {
		con.Scrollback.ClearCategoryFilter()
		printf(con, gotext.Get("Category filter cleared"))
		return
	}
	con.Scrollback.EnableCategory(args[0])
	printf(con, gotext.Get("Showing category: %s"), args[0])
}

func cmdHistory(con *console.Console, args []string) {
	entries := con.History.Entries()
	for i, e := range entries {
		printf(con, "%4d  %s", i+1, e)
	}
}

func cmdColorUpdate(con *console.Console, args []string) {
	loadColorsFromCvars()
	printf(con, gotext.Get("Colors reloaded from cvars"))
}

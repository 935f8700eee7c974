// Command synmacro is a small REPL demonstrating the syntax engine's
// public surface: parse, serialize, macroexpand and configure. It never
// evaluates host code — there is no interpreter behind it, only the
// engine's lex/parse/match/macro/compile machinery (package synmacro).
//
// Grounded on daios-ai-msg/cmd/msg/main.go's repl command: liner for
// history-backed line editing, Ctrl+C/Ctrl+D handling, and a colorized
// prompt loop.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"

	"github.com/daios-ai/synmacro"
)

const (
	appName     = "synmacro"
	historyFile = ".synmacro_history"
	promptMain  = "==> "
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	packs := flag.String("packs", "", "comma-separated bundled macro packs to activate (e.g. std, qs,fn)")
	flag.Parse()

	eng := synmacro.NewEngine()
	if *packs != "" {
		names := strings.Split(*packs, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		if err := eng.Configure(names...); err != nil {
			log.Fatal(err)
		}
	}

	os.Exit(runRepl(eng))
}

// historyPath returns where the REPL persists liner's line history
// between runs, under the user's home directory.
func historyPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, historyFile)
}

func loadHistory(ln *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = ln.ReadHistory(f)
}

func saveHistory(ln *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = ln.WriteHistory(f)
}

// watchInterruptSignals closes ln and exits with the conventional
// SIGINT/SIGTERM exit status (128+signal) the moment one arrives, so a
// pending liner.Prompt read doesn't linger. Returns a stop func the
// caller defers to release the underlying signal.Notify channel.
func watchInterruptSignals(ln *liner.State) (stop func()) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if sig, ok := <-sigc; ok {
			ln.Close()
			code := 130
			if s, isSys := sig.(syscall.Signal); isSys {
				code = 128 + int(s)
			}
			os.Exit(code)
		}
	}()
	return func() { signal.Stop(sigc); close(sigc) }
}

func runRepl(eng *synmacro.Engine) int {
	fmt.Println(appName + " — parse/serialize/macroexpand demo. Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")

	histPath := historyPath()

	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	defer ln.Close()
	defer saveHistory(ln, histPath)

	defer watchInterruptSignals(ln)()

	loadHistory(ln, histPath)

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			break
		}

		if err := evalOne(eng, trimmed); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		ln.AppendHistory(line)
	}

	return 0
}

// evalOne parses, macroexpands, and re-serializes one line of input,
// printing the round-tripped source — never evaluating it (§1).
func evalOne(eng *synmacro.Engine, src string) error {
	tree, err := eng.Parse(src)
	if err != nil {
		return synmacro.WrapErrorWithSource(err, src)
	}
	expanded := eng.MacroExpand(tree)
	fmt.Println(blue(eng.Serialize(expanded)))
	fmt.Println(green(fmt.Sprintf("# tree root: %s", treeShape(expanded))))
	return nil
}

func treeShape(n *synmacro.Node) string {
	return fmt.Sprintf("%q (%d children)", n.Data, len(n.Children))
}

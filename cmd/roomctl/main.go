// Command roomctl queries the classroom availability server from a terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"classfinder/client"
	"classfinder/models"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const maxLoginAttempts = 3

func main() {
	apiURL := flag.String("api", "http://localhost:8000", "availability server base URL")
	week := flag.String("week", "", "academic week; empty for the current week")
	format := flag.String("format", "text", "output format: text, html or json")
	fallback := flag.String("fallback", "", "demo data URL or file used when the server is unreachable")
	interactive := flag.BoolP("interactive", "i", false, "keep prompting for weeks")
	username := flag.StringP("user", "u", "", "portal username for the login prompt")
	timeout := flag.Duration("timeout", 60*time.Second, "per-request timeout")
	verbose := flag.BoolP("verbose", "v", false, "log request failures")
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()
	sugar := logger.Sugar()

	view, err := newView(*format, os.Stdout)
	if err != nil {
		sugar.Fatal(err)
	}
	api, err := client.NewAPIClient(*apiURL, *fallback, *timeout)
	if err != nil {
		sugar.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := client.NewController(api, view, logger)
	in := bufio.NewReader(os.Stdin)
	p := &prompter{in: in, out: os.Stderr, username: *username}

	// The first query of an interactive session stands in for a page load.
	outcome := ctrl.SubmitQuery(ctx, client.ParseWeek(*week), *interactive && *week == "")
	outcome = p.loginIfRequired(ctx, ctrl, outcome)
	flush(view, sugar)

	if !*interactive {
		if outcome == client.Failed || outcome == client.LoginRequired {
			os.Exit(1)
		}
		return
	}

	for ctx.Err() == nil {
		fmt.Fprint(os.Stderr, "周次 (回车为本周, q 退出)> ")
		line, err := in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "q" || line == "quit" || (err != nil && line == "") {
			return
		}
		outcome = ctrl.SubmitQuery(ctx, client.ParseWeek(line), false)
		p.loginIfRequired(ctx, ctrl, outcome)
		flush(view, sugar)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newView(format string, w io.Writer) (client.View, error) {
	switch format {
	case "text":
		return client.NewTextView(w), nil
	case "html":
		return client.NewHTMLView(w), nil
	case "json":
		return client.NewJSONView(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text, html or json)", format)
	}
}

func flush(view client.View, sugar *zap.SugaredLogger) {
	if f, ok := view.(client.Flusher); ok {
		if err := f.Flush(); err != nil {
			sugar.Errorf("failed to write output: %v", err)
		}
	}
}

// prompter asks for portal credentials on the terminal.
type prompter struct {
	in       *bufio.Reader
	out      io.Writer
	username string
}

// loginIfRequired prompts until the login succeeds, the attempts run out or
// stdin cannot be prompted. The returned outcome is that of the re-issued query.
func (p *prompter) loginIfRequired(ctx context.Context, ctrl *client.Controller, outcome client.Outcome) client.Outcome {
	if outcome != client.LoginRequired {
		return outcome
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintln(p.out, "login required but stdin is not a terminal")
		return outcome
	}

	for attempt := 0; attempt < maxLoginAttempts && ctx.Err() == nil; attempt++ {
		creds, err := p.read(fd)
		if err != nil {
			return outcome
		}
		if next, err := ctrl.SubmitLogin(ctx, creds); err == nil {
			return next
		}
	}
	return outcome
}

func (p *prompter) read(fd int) (models.Credentials, error) {
	user := p.username
	if user == "" {
		fmt.Fprint(p.out, "学号: ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return models.Credentials{}, err
		}
		user = strings.TrimSpace(line)
	}
	fmt.Fprint(p.out, "密码: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return models.Credentials{}, err
	}
	return models.Credentials{Username: user, Password: string(pw)}, nil
}

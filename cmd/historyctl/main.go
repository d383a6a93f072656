package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/historyGames/internal/client"
)

const usage = `usage: historyctl [flags] analyze <file>
       historyctl [flags] history`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("historyctl", pflag.ContinueOnError)
	server := flags.String("server", "http://localhost:8080", "history games server url")
	apiKey := flags.String("api-key", os.Getenv("GEMINI_API_KEY"), "Gemini API key for the session")
	model := flags.String("model", "", "preferred model")
	if err := flags.Parse(args); err != nil {
		return err
	}

	c := client.NewHTTPClient(*server)
	ctx := context.Background()

	switch flags.Arg(0) {
	case "analyze":
		if flags.NArg() != 2 {
			return errors.New(usage)
		}
		return analyze(ctx, c, out, flags.Arg(1), *apiKey, *model)
	case "history":
		return listHistory(ctx, c, out)
	default:
		return errors.New(usage)
	}
}

func analyze(ctx context.Context, c client.Client, out io.Writer, path, apiKey, model string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	snap, err := c.CreateSession(ctx)
	if err != nil {
		return err
	}
	if apiKey != "" || model != "" {
		if _, err = c.SetCredentials(ctx, snap.ID, apiKey, model); err != nil {
			return err
		}
	}

	snap, err = c.AnalyzeFile(ctx, snap.ID, filepath.Base(path), data)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, color.HiBlueString(snap.Data.Title))
	fmt.Fprintf(out, "session:    %s\n", snap.ID)
	fmt.Fprintf(out, "events:     %d\n", len(snap.Data.Events))
	fmt.Fprintf(out, "questions:  %d\n", len(snap.Data.Questions))
	fmt.Fprintf(out, "characters: %d\n", len(snap.Data.Characters))
	return nil
}

func listHistory(ctx context.Context, c client.Client, out io.Writer) error {
	entries, err := c.History(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s  %s (%d/%d/%d)\n",
			color.GreenString(e.Date), e.ID, e.Title, e.Events, e.Questions, e.Characters)
	}
	return nil
}

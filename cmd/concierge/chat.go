package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/ranking"
	"github.com/poiesic/concierge/session"
)

const maxShown = 5

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	replyColor  = color.New(color.FgWhite)
	errorColor  = color.New(color.FgRed)
	badgeColors = map[core.BadgeTier]*color.Color{
		core.BadgeGold:    color.New(color.FgYellow, color.Bold),
		core.BadgeSilver:  color.New(color.FgWhite, color.Bold),
		core.BadgeBronze:  color.New(color.FgRed),
		core.BadgeClassic: color.New(color.FgBlue),
	}
)

func chatCommand(c *cli.Context) error {
	var opts []concierge.Option
	aiConfig, err := aiConfigFrom(c)
	if err != nil {
		return err
	}
	if aiConfig != nil {
		opts = append(opts, concierge.WithAIConfig(aiConfig))
	}

	app, err := concierge.New(c.Context, c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer app.Close()

	return runChat(c.Context, app.Sessions(), c.App.Reader, c.App.Writer)
}

// runChat reads messages from in until EOF or /quit and prints each reply to out.
func runChat(ctx context.Context, manager *session.Manager, in io.Reader, out io.Writer) error {
	s, err := manager.Create(ctx, map[string]string{"channel": "cli"})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Tell me about the residence you're looking for. Type /quit to leave.")

	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			_, err := manager.End(ctx, s.Id)
			return err
		}

		result, err := manager.QueryWithRetry(ctx, s.Id, line, 3, 500*time.Millisecond)
		if err != nil {
			errorColor.Fprintf(out, "error: %v\n", err)
			if core.KindOf(err) == core.KindSessionExpired {
				return err
			}
			continue
		}
		printResult(out, result)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	_, err = manager.End(ctx, s.Id)
	return err
}

func printResult(out io.Writer, result *session.QueryResult) {
	replyColor.Fprintln(out, result.FriendlyResponse)
	for i, r := range result.Residences {
		if i == maxShown {
			break
		}
		res := r.Residence
		fmt.Fprintf(out, "  %d. %s, %s (%d%%)", i+1, res.Name, res.City, int(math.Round(r.MatchScore*100)))
		for _, b := range ranking.Badges(res) {
			if b.Tier == core.BadgeNone {
				continue
			}
			fmt.Fprintf(out, " %s", renderBadge(b.Tier, b.Category.Title))
		}
		fmt.Fprintln(out)
	}
}

// renderBadge formats a tier for the terminal. label may be empty.
func renderBadge(tier core.BadgeTier, label string) string {
	text := "[" + strings.ToUpper(tier.String())
	if label != "" {
		text += " " + label
	}
	text += "]"
	if c, ok := badgeColors[tier]; ok {
		return c.Sprint(text)
	}
	return text
}

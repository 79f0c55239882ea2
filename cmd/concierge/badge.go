package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/concierge/ranking"
)

func badgeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one POSITION is required")
	}
	for _, arg := range c.Args().Slice() {
		position, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid position %q", arg)
		}
		fmt.Fprintf(c.App.Writer, "%d: %s\n", position, renderBadge(ranking.AssignBadge(position), ""))
	}
	return nil
}

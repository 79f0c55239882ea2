// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/ranking"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	app, err := concierge.New(context.Background(), "./concierge_db")
	if err != nil {
		panic(err)
	}
	defer app.Close()
	sessions := app.Sessions()

	ctx := context.Background()
	s, err := sessions.Create(ctx, map[string]string{"channel": "matcher"})
	if err != nil {
		panic(err)
	}
	defer sessions.End(ctx, s.Id)

	message := "a residence in Dubai with a private pool"
	if len(os.Args) > 1 {
		message = strings.Join(os.Args[1:], " ")
	}
	result, err := sessions.Query(ctx, s.Id, message)
	if err != nil {
		panic(err)
	}

	fmt.Println(result.FriendlyResponse)
	if result.Relaxed {
		fmt.Printf("Relaxed: %v\n", result.RelaxedFields)
	}
	fmt.Printf("Found %d hits\n", len(result.Residences))
	for i, hit := range result.Residences {
		fmt.Printf("%d: '%s' (%s)[%0.3f]", i, hit.Residence.Name, hit.Residence.Id, hit.MatchScore)
		for _, b := range ranking.Badges(hit.Residence) {
			fmt.Printf(" %s#%d:%s", b.Category.Slug, b.Position, b.Tier)
		}
		fmt.Println()
	}
}

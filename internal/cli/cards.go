package cli

import (
	"context"
	"encoding/json"
	"io"
	"rivals-scout/internal/aggregate"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"rivals-scout/internal/report"

	"golang.org/x/sync/errgroup"
)

type cardResult struct {
	Username string          `json:"username"`
	PlayerID domain.PlayerID `json:"playerId,omitempty"`
	Card     *aggregate.Card `json:"card,omitempty"`
	Error    string          `json:"error,omitempty"`
	err      error
}

// fetchCards loads one card per username. Each fetch is independent; a
// failure only marks its own result.
func (d *deps) fetchCards(ctx context.Context, mapping domain.UsernameMapping) []cardResult {
	usernames := mapping.Usernames()
	results := make([]cardResult, len(usernames))

	g := new(errgroup.Group)
	for i, username := range usernames {
		results[i].Username = username
		id, ok := mapping.Get(username)
		if !ok {
			continue
		}
		results[i].PlayerID = id
		g.Go(func() error {
			ps, err := d.stats.Fetch(ctx, id)
			if err != nil {
				results[i].err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Card = aggregate.BuildCard(id, username, ps, mapping, d.catalog)
			return nil
		})
	}
	g.Wait()
	return results
}

func printResults(w io.Writer, results []cardResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	byName := make(map[string]cardResult, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		byName[r.Username] = r
		names[i] = r.Username
	}

	lobbies := aggregate.Lobbies(names, constants.LobbySize)
	for i, lobby := range lobbies {
		if len(lobbies) > 1 {
			report.PrintLobbyHeader(w, i+1, len(lobbies))
		}
		for _, name := range lobby {
			r := byName[name]
			if r.Card == nil {
				report.PrintUnresolved(w, name, r.err)
				continue
			}
			report.PrintCard(w, r.Card)
		}
	}
	return nil
}

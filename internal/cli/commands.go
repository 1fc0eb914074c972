package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"rivals-scout/internal/domain"
	"strings"

	"github.com/spf13/cobra"
)

func newImageCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "image <file>",
		Short: "Scout every player in a lobby screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(o)
			if err != nil {
				return err
			}

			image, err := readImage(args[0])
			if err != nil {
				return err
			}
			apiKey := o.apiKey
			if apiKey == "" {
				apiKey = d.cfg.VisionAPIKey
			}

			usernames, err := d.extractor.Extract(cmd.Context(), apiKey, image)
			if errors.Is(err, domain.ErrMissingCredential) {
				return fmt.Errorf("no API key: pass --api-key or set VISION_API_KEY")
			}
			if err != nil {
				return err
			}

			mapping, err := d.batch.ResolveAll(cmd.Context(), usernames)
			if err != nil {
				return err
			}
			return printResults(out(cmd), d.fetchCards(cmd.Context(), mapping), o.json)
		},
	}
}

func newPlayerCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "player <username>",
		Short: "Scout a single player by exact username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(o)
			if err != nil {
				return err
			}

			mapping := domain.NewUsernameMapping()
			id, err := d.resolver.Resolve(cmd.Context(), args[0])
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			mapping.Set(args[0], id)
			return printResults(out(cmd), d.fetchCards(cmd.Context(), mapping), o.json)
		},
	}
}

func newStatsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <player-id>",
		Short: "Print the card for a rivalsmeta player id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(o)
			if err != nil {
				return err
			}

			mapping := domain.NewUsernameMapping()
			mapping.Set(args[0], domain.PlayerID(args[0]))
			results := d.fetchCards(cmd.Context(), mapping)
			if results[0].Card != nil {
				results[0].Card.Username = ""
			}
			if err := printResults(out(cmd), results, o.json); err != nil {
				return err
			}
			return results[0].err
		},
	}
}

// readImage loads path and returns it as a data URL.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image %s is empty", path)
	}
	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%s does not look like an image (%s)", path, mediaType)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

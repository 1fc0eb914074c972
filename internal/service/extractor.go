package service

import (
	"context"
	"errors"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const extractionPrompt = "Extract all player usernames from this Marvel Rivals screenshot. " +
	"Return them as an array of strings. The usernames are listed on a slanted surface, " +
	"first their level, followed by their username and an optional title (ignore the title), " +
	"and there are always 6 usernames in each picture, so always return 6 usernames! " +
	"Make sure to read their names closely, as they are not always spelled logically."

var errEmptyImage = errors.New("image is required")

type VisionClient interface {
	Provider() string
	Model() string
	ExtractUsernames(ctx context.Context, apiKey, imageDataURL, prompt string) ([]string, error)
}

type Extractor struct {
	vision VisionClient
	logger zerolog.Logger
}

func NewExtractor(vision VisionClient, logger zerolog.Logger) *Extractor {
	return &Extractor{vision: vision, logger: logger}
}

func (e *Extractor) Provider() string { return e.vision.Provider() }

func (e *Extractor) Model() string { return e.vision.Model() }

// Extract reads usernames from image, a data URL or bare base64 payload. The
// result length is whatever the model returned.
func (e *Extractor) Extract(ctx context.Context, apiKey, image string) ([]string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrMissingCredential
	}
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, &domain.ExtractionError{Err: errEmptyImage}
	}
	if !strings.HasPrefix(image, "data:") {
		image = "data:image/png;base64," + image
	}

	ctx, cancel := context.WithTimeout(ctx, constants.VisionAPITimeout)
	defer cancel()

	start := time.Now()
	raw, err := e.vision.ExtractUsernames(ctx, apiKey, image, extractionPrompt)
	if err != nil {
		e.logger.Error().Err(err).Str("provider", e.vision.Provider()).Msg("username extraction failed")
		return nil, &domain.ExtractionError{Err: err}
	}

	usernames := make([]string, 0, len(raw))
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			usernames = append(usernames, name)
		}
	}

	ev := e.logger.Info()
	if len(usernames) != constants.LobbySize {
		ev = e.logger.Warn()
	}
	ev.Strs("usernames", usernames).
		Int("count", len(usernames)).
		Dur("duration", time.Since(start)).
		Msg("usernames extracted")
	return usernames, nil
}
